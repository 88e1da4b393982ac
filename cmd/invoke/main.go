package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/veloflow/service-template/internal/config"
	"github.com/veloflow/service-template/internal/event"
	"github.com/veloflow/service-template/internal/handler"
	"github.com/veloflow/service-template/internal/notify"
	"github.com/veloflow/service-template/internal/processor"
	"github.com/veloflow/service-template/internal/storage"
	"github.com/veloflow/service-template/pkg/logger"
)

// invoke runs the handler locally against an event JSON file, with the same
// wiring options the deployed function has plus local backends (MinIO for
// storage, Redis for the bus).
func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "invoke",
		Usage: "Run the service handler locally against an event JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "event",
				Usage:    "Path to the invocation event JSON file",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "storage",
				Usage:   "Object storage backend: s3 or minio",
				Value:   "minio",
				EnvVars: []string{"STORAGE_BACKEND"},
			},
			&cli.StringFlag{
				Name:    "bus",
				Usage:   "Event bus backend: eventbridge, redis or none",
				Value:   "none",
				EnvVars: []string{"BUS_BACKEND"},
			},
		},
		Action: runInvoke,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("invoke failed")
	}
}

func runInvoke(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Service.LogLvl)

	data, err := os.ReadFile(c.String("event"))
	if err != nil {
		return fmt.Errorf("read event file: %w", err)
	}

	var req event.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse event file: %w", err)
	}

	store, err := buildStorage(c.Context, c.String("storage"), cfg)
	if err != nil {
		return err
	}

	pub, err := buildPublisher(c.Context, c.String("bus"), cfg)
	if err != nil {
		return err
	}

	h := handler.New(cfg.Service, cfg.Storage.TmpDir, store, pub, processor.NewTemplate())
	res := h.Handle(c.Context, req)

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func buildStorage(ctx context.Context, backend string, cfg *config.Config) (storage.ObjectStorage, error) {
	switch backend {
	case "s3":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.Region))
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		return storage.NewS3Client(awsCfg), nil
	case "minio":
		return storage.NewMinioClient(storage.MinioConfig{
			Endpoint:  cfg.Storage.MinioEndpoint,
			AccessKey: cfg.Storage.MinioAccessKey,
			SecretKey: cfg.Storage.MinioSecretKey,
			UseSSL:    cfg.Storage.MinioUseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q (use s3 or minio)", backend)
	}
}

func buildPublisher(ctx context.Context, backend string, cfg *config.Config) (notify.Publisher, error) {
	switch backend {
	case "eventbridge":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.Region))
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		return notify.NewEventBridgePublisher(awsCfg, cfg.Bus.EventBusName)
	case "redis":
		return notify.NewRedisPublisher(cfg.Bus)
	case "none":
		return notify.NewNoopPublisher(), nil
	default:
		return nil, fmt.Errorf("unknown bus backend %q (use eventbridge, redis or none)", backend)
	}
}
