package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"

	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/config"
	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/logging"
	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/partitions"
)

func main() {
	ctx := context.Background()
	cfg := config.FromEnv()
	log := logging.New("repair-partitions", cfg.LogLevel)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load aws config")
	}
	ath := athena.NewFromConfig(awsCfg)

	// Triggered by an EventBridge schedule.
	lambda.Start(func(ctx context.Context, _ events.CloudWatchEvent) (partitions.Result, error) {
		return partitions.Repair(ctx, ath, logging.ForRequest(ctx, log), partitions.Options{
			Database:  cfg.AthenaDatabase,
			Table:     cfg.AthenaTable,
			Workgroup: cfg.AthenaWorkgroup,
			Output:    cfg.AthenaOutput,
		})
	})
}
