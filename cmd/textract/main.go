package main

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/textract"

	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/cache"
	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/config"
	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/detect"
	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/export"
	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/handlers"
	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/logging"
	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/notify"
)

func main() {
	ctx := context.Background()
	cfg := config.FromEnv()
	log := logging.New("textract", cfg.LogLevel)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load aws config")
	}

	// One Textract call per request; failures go straight back to the caller.
	tx := textract.NewFromConfig(awsCfg, func(o *textract.Options) {
		o.RetryMaxAttempts = 1
	})
	log.Info().Str("region", awsCfg.Region).Msg("initialized textract client")

	h := handlers.NewTextractHandler(detect.NewDetector(tx, log), log)

	if cfg.CacheTable != "" {
		ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
		h.Cache = cache.New(dynamodb.NewFromConfig(awsCfg), cfg.CacheTable, ttl)
		log.Info().Str("table", cfg.CacheTable).Dur("ttl", ttl).Msg("detection cache enabled")
	}
	if cfg.ExportBucket != "" {
		h.Exporter = export.NewExporter(s3.NewFromConfig(awsCfg), cfg.ExportBucket, cfg.ExportPrefix)
		log.Info().Str("bucket", cfg.ExportBucket).Str("prefix", cfg.ExportPrefix).Msg("block export enabled")
	}
	if cfg.TopicArn != "" {
		h.Notifier = notify.NewNotifier(sns.NewFromConfig(awsCfg), cfg.TopicArn)
		log.Info().Str("topic", cfg.TopicArn).Msg("notifications enabled")
	}

	lambda.Start(h.Handle)
}
