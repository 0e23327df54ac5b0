package storage

import "time"

const defaultPostgresOperationTimeout = 10 * time.Second

// PostgresConfig describes how the repository initialises its Postgres
// connection pool and which bucket it stores media payloads in.
type PostgresConfig struct {
	DSN                 string
	MaxConnections      int32
	MinConnections      int32
	MaxConnLifetime     time.Duration
	MaxConnIdleTime     time.Duration
	HealthCheckInterval time.Duration
	ConnectTimeout      time.Duration
	ApplicationName     string
	OperationTimeout    time.Duration
	MediaStorage        MediaStorageConfig
}

func (cfg PostgresConfig) operationTimeout() time.Duration {
	if cfg.OperationTimeout <= 0 {
		return defaultPostgresOperationTimeout
	}
	return cfg.OperationTimeout
}
