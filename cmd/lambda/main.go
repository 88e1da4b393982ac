package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/veloflow/service-template/internal/config"
	"github.com/veloflow/service-template/internal/event"
	"github.com/veloflow/service-template/internal/handler"
	"github.com/veloflow/service-template/internal/notify"
	"github.com/veloflow/service-template/internal/processor"
	"github.com/veloflow/service-template/internal/response"
	"github.com/veloflow/service-template/internal/storage"
	"github.com/veloflow/service-template/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.Service.LogLvl)

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Storage.Region))
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load AWS config")
	}

	store := storage.NewS3Client(awsCfg)

	var pub notify.Publisher
	if cfg.Bus.EventBusName != "" {
		pub, err = notify.NewEventBridgePublisher(awsCfg, cfg.Bus.EventBusName)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to create event publisher")
		}
	} else {
		logger.Log.Warn().Msg("EVENT_BUS_NAME not set, progress events disabled")
		pub = notify.NewNoopPublisher()
	}

	h := handler.New(cfg.Service, cfg.Storage.TmpDir, store, pub, processor.NewTemplate())

	lambda.Start(func(ctx context.Context, req event.Request) (response.Result, error) {
		// Failures are encoded in the result; the platform never sees a
		// handler error, so it never retries on our behalf.
		return h.Handle(ctx, req), nil
	})
}
