package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/flagx"
)

// parseEnv overlays config with POINTPOOL_* variables. A malformed
// duration is reported on stderr and ignored.
func parseEnv(config *Config) {
	flagx.EnvString(&config.EndpointAddrHTTP, "POINTPOOL_HTTP_ADDR")
	flagx.EnvString(&config.EndpointAddrGRPC, "POINTPOOL_GRPC_ADDR")
	flagx.EnvString(&config.DatabaseDSN, "POINTPOOL_DATABASE_DSN")
	flagx.EnvString(&config.RedisAddr, "POINTPOOL_REDIS_ADDR")
	flagx.EnvString(&config.LogLevel, "POINTPOOL_LOG_LEVEL")

	for name, dst := range map[string]*time.Duration{
		"POINTPOOL_SESSION_TTL":       &config.SessionTTL,
		"POINTPOOL_SESSION_CACHE_TTL": &config.SessionCacheTTL,
	} {
		if err := flagx.EnvDuration(dst, name); err != nil {
			fmt.Fprintf(os.Stderr, "config: ignoring %v\n", err)
		}
	}
}
