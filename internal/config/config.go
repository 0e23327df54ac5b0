package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is populated from OURTUBE_* environment variables. Command-line
// flags in the entrypoint override individual fields.
type Config struct {
	Addr          string `env:"OURTUBE_ADDR" envDefault:":8080"`
	StorageDriver string `env:"OURTUBE_STORAGE_DRIVER" envDefault:"json"`
	DataFile      string `env:"OURTUBE_DATA_FILE" envDefault:"data/ourtube.json"`
	PostgresDSN   string `env:"OURTUBE_POSTGRES_DSN"`

	TokenSecret string        `env:"OURTUBE_TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"OURTUBE_TOKEN_TTL"`

	LogLevel  string `env:"OURTUBE_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"OURTUBE_LOG_FORMAT" envDefault:"json"`

	TLSCertFile string `env:"OURTUBE_TLS_CERT"`
	TLSKeyFile  string `env:"OURTUBE_TLS_KEY"`

	RateLimitRPS   float64       `env:"OURTUBE_RATE_LIMIT_RPS"`
	RateLimitBurst int           `env:"OURTUBE_RATE_LIMIT_BURST"`
	LoginLimit     int           `env:"OURTUBE_LOGIN_LIMIT" envDefault:"10"`
	LoginWindow    time.Duration `env:"OURTUBE_LOGIN_WINDOW" envDefault:"1m"`
	RedisAddr      string        `env:"OURTUBE_REDIS_ADDR"`
	RedisPassword  string        `env:"OURTUBE_REDIS_PASSWORD"`
	RedisTimeout   time.Duration `env:"OURTUBE_REDIS_TIMEOUT" envDefault:"2s"`

	MediaEndpoint       string `env:"OURTUBE_MEDIA_ENDPOINT"`
	MediaPublicEndpoint string `env:"OURTUBE_MEDIA_PUBLIC_ENDPOINT"`
	MediaBucket         string `env:"OURTUBE_MEDIA_BUCKET"`
	MediaRegion         string `env:"OURTUBE_MEDIA_REGION"`
	MediaAccessKey      string `env:"OURTUBE_MEDIA_ACCESS_KEY"`
	MediaSecretKey      string `env:"OURTUBE_MEDIA_SECRET_KEY"`
	MediaPrefix         string `env:"OURTUBE_MEDIA_PREFIX"`
	MediaUseSSL         bool   `env:"OURTUBE_MEDIA_USE_SSL" envDefault:"true"`
}

// Load reads the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
