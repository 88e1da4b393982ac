package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gin-gonic/gin"

	"github.com/veloflow/service-template/internal/config"
	"github.com/veloflow/service-template/internal/event"
	"github.com/veloflow/service-template/internal/fault"
	"github.com/veloflow/service-template/internal/handler"
	"github.com/veloflow/service-template/internal/notify"
	"github.com/veloflow/service-template/internal/processor"
	"github.com/veloflow/service-template/internal/response"
	"github.com/veloflow/service-template/internal/storage"
	"github.com/veloflow/service-template/pkg/logger"
)

// devserver exposes the handler over HTTP for local development, so the
// orchestrator's dev stack (or plain curl) can invoke the service without a
// Lambda runtime.
func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.Service.LogLvl)

	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	h, err := buildHandler(cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to wire handler")
	}

	router := setupRouter(h)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting dev server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start dev server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down dev server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Dev server forced to shutdown")
	}

	logger.Log.Info().Msg("Dev server exiting")
}

func buildHandler(cfg *config.Config) (*handler.Handler, error) {
	var store storage.ObjectStorage
	var err error

	switch cfg.Storage.Backend {
	case "s3":
		store = storage.NewS3Client(awsCfgOrDie(cfg))
	case "minio":
		store, err = storage.NewMinioClient(storage.MinioConfig{
			Endpoint:  cfg.Storage.MinioEndpoint,
			AccessKey: cfg.Storage.MinioAccessKey,
			SecretKey: cfg.Storage.MinioSecretKey,
			UseSSL:    cfg.Storage.MinioUseSSL,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	var pub notify.Publisher
	switch cfg.Bus.Backend {
	case "eventbridge":
		pub, err = notify.NewEventBridgePublisher(awsCfgOrDie(cfg), cfg.Bus.EventBusName)
		if err != nil {
			return nil, err
		}
	case "redis":
		pub, err = notify.NewRedisPublisher(cfg.Bus)
		if err != nil {
			return nil, err
		}
	case "none":
		pub = notify.NewNoopPublisher()
	default:
		return nil, fmt.Errorf("unknown bus backend %q", cfg.Bus.Backend)
	}

	return handler.New(cfg.Service, cfg.Storage.TmpDir, store, pub, processor.NewTemplate()), nil
}

func setupRouter(h *handler.Handler) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(), recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/invoke", func(c *gin.Context) {
		var req event.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Result{
				Status:    response.StatusError,
				Error:     fmt.Sprintf("invalid request body: %v", err),
				ErrorType: fault.KindValidation,
			})
			return
		}

		// The result encodes success and failure alike; HTTP 200 mirrors
		// how the Lambda contract reports errors in-band.
		c.JSON(http.StatusOK, h.Handle(c.Request.Context(), req))
	})

	return router
}

func awsCfgOrDie(cfg *config.Config) aws.Config {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Storage.Region))
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	return awsCfg
}
