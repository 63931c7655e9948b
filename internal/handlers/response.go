package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/document"
)

const (
	ErrorTypeInput    = "InputError"
	ErrorTypeInternal = "InternalError"
)

type BlocksResponse struct {
	Blocks []types.Block `json:"Blocks"`
}

type ErrorResponse struct {
	Error     string `json:"Error"`
	ErrorType string `json:"ErrorType"`
}

func jsonResp(status int, v any) events.APIGatewayProxyResponse {
	b, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		b, _ = json.Marshal(ErrorResponse{Error: "encode response: " + err.Error(), ErrorType: ErrorTypeInternal})
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(b),
	}
}

// errResp always answers 500; input problems are told apart only by ErrorType.
func errResp(err error) events.APIGatewayProxyResponse {
	kind := ErrorTypeInternal
	if document.IsInputError(err) {
		kind = ErrorTypeInput
	}
	return jsonResp(http.StatusInternalServerError, ErrorResponse{
		Error:     err.Error(),
		ErrorType: kind,
	})
}
