package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Service Service
	Bus     BusConfig
	Storage StorageConfig
	Server  ServerConfig
}

// Service identifies this deployment to the orchestrator. It is passed
// explicitly to the emitter and handler instead of being read from
// package-level globals at call sites.
type Service struct {
	ID      string
	Version string
	LogLvl  string
}

type BusConfig struct {
	// Backend selects the publisher: "eventbridge", "redis" or "none".
	Backend       string
	EventBusName  string
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string
}

type StorageConfig struct {
	// Backend selects the object store: "s3" or "minio".
	Backend        string
	Region         string
	TmpDir         string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVICE_ID", "your-service-v1")
		viper.SetDefault("SERVICE_VERSION", "1.0.0")
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("BUS_BACKEND", "eventbridge")
		viper.SetDefault("EVENT_BUS_NAME", "")
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("REDIS_CHANNEL", "veloflow:service-events")
		viper.SetDefault("STORAGE_BACKEND", "s3")
		viper.SetDefault("AWS_REGION", "us-east-1")
		viper.SetDefault("TMP_DIR", os.TempDir())
		viper.SetDefault("MINIO_ENDPOINT", "127.0.0.1:9000")
		viper.SetDefault("MINIO_ACCESS_KEY", "")
		viper.SetDefault("MINIO_SECRET_KEY", "")
		viper.SetDefault("MINIO_USE_SSL", false)
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 30)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 900)

		// Read from environment variables
		viper.AutomaticEnv()

		ensureDir(viper.GetString("TMP_DIR"))

		instance = &Config{
			Service: Service{
				ID:      viper.GetString("SERVICE_ID"),
				Version: viper.GetString("SERVICE_VERSION"),
				LogLvl:  viper.GetString("LOG_LEVEL"),
			},
			Bus: BusConfig{
				Backend:       viper.GetString("BUS_BACKEND"),
				EventBusName:  viper.GetString("EVENT_BUS_NAME"),
				RedisURL:      viper.GetString("REDIS_URL"),
				RedisHost:     viper.GetString("REDIS_HOST"),
				RedisPort:     viper.GetString("REDIS_PORT"),
				RedisPassword: viper.GetString("REDIS_PASSWORD"),
				RedisDB:       viper.GetInt("REDIS_DB"),
				RedisChannel:  viper.GetString("REDIS_CHANNEL"),
			},
			Storage: StorageConfig{
				Backend:        viper.GetString("STORAGE_BACKEND"),
				Region:         viper.GetString("AWS_REGION"),
				TmpDir:         viper.GetString("TMP_DIR"),
				MinioEndpoint:  viper.GetString("MINIO_ENDPOINT"),
				MinioAccessKey: viper.GetString("MINIO_ACCESS_KEY"),
				MinioSecretKey: viper.GetString("MINIO_SECRET_KEY"),
				MinioUseSSL:    viper.GetBool("MINIO_USE_SSL"),
			},
			Server: ServerConfig{
				Port:         viper.GetString("SERVER_PORT"),
				Mode:         viper.GetString("SERVER_MODE"),
				ReadTimeout:  viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout: viper.GetInt("SERVER_WRITE_TIMEOUT"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
