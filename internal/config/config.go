package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const DefaultContainer = "certquestrawimages"

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type UploadConfig struct {
	MaxMemory int64
}

// StorageConfig holds the blob service target. ConnectionString is read from
// RAW_IMAGE_STORAGE and left empty when unset; callers decide how to fail.
type StorageConfig struct {
	ConnectionString string
	Container        string
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

type QueueConfig struct {
	ClaimInterval time.Duration
}

type JobsConfig struct {
	StreamMaxLen int64
}

type ClientConfig struct {
	Endpoint string
	Timeout  time.Duration
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Upload           UploadConfig
	Storage          StorageConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Queues           QueueConfig
	Jobs             JobsConfig
	Client           ClientConfig
	AllowCORSOrigins []string
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

func Load() (*AppConfig, error) {
	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("SHOTBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindContractEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Storage.ConnectionString = strings.TrimSpace(cfg.Storage.ConnectionString)
	if strings.TrimSpace(cfg.Storage.Container) == "" {
		cfg.Storage.Container = DefaultContainer
	}

	return &cfg, nil
}

// bindContractEnv maps the unprefixed deployment variables onto their keys.
func bindContractEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"storage.connectionstring": "RAW_IMAGE_STORAGE",
		"storage.container":        "BLOB_CONTAINER_NAME",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "30s")
	v.SetDefault("http.writetimeout", "30s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("upload.maxmemory", 32<<20)

	v.SetDefault("storage.container", DefaultContainer)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 10)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "uploads:ingested")
	v.SetDefault("redis.group", "upload-workers")
	v.SetDefault("redis.consumer", "worker-1")

	v.SetDefault("queues.claiminterval", "30s")
	v.SetDefault("jobs.streammaxlen", 10000)

	v.SetDefault("allowcorsorigins", "")

	v.SetDefault("client.endpoint", "http://localhost:8080")
	v.SetDefault("client.timeout", "60s")
}
