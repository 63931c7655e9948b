package handlers

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

const ServiceName = "textract-api"

type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
}

func Health(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return jsonResp(http.StatusOK, HealthResponse{OK: true, Service: ServiceName}), nil
}
