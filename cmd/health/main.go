package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/handlers"
)

func main() {
	lambda.Start(handlers.Health)
}
