package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/flagx"
	"github.com/dmitrijs2005/pointpool/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// "12s" style strings or integer nanoseconds. Absent fields keep the
// values already present in Config.
type JsonConfig struct {
	EndpointAddrHTTP     *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC     *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN          *string         `json:"database_dsn"`
	RedisAddr            *string         `json:"redis_addr"`
	SessionTTL           *timex.Duration `json:"session_ttl"`
	SessionCacheTTL      *timex.Duration `json:"session_cache_ttl"`
	SessionPurgeInterval *timex.Duration `json:"session_purge_interval"`
	CollectCooldown      *timex.Duration `json:"collect_cooldown"`
	PoolCapacity         *int64          `json:"pool_capacity"`
	PoolRefillDelay      *timex.Duration `json:"pool_refill_delay"`
	LogLevel             *string         `json:"log_level"`
	ShutdownTimeout      *timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays config with the file named by -c / -config. Nothing
// happens without the flag. Unreadable or invalid files panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.LogLevel, c.LogLevel)
	if c.PoolCapacity != nil {
		config.PoolCapacity = *c.PoolCapacity
	}
	setDuration(&config.SessionTTL, c.SessionTTL)
	setDuration(&config.SessionCacheTTL, c.SessionCacheTTL)
	setDuration(&config.SessionPurgeInterval, c.SessionPurgeInterval)
	setDuration(&config.CollectCooldown, c.CollectCooldown)
	setDuration(&config.PoolRefillDelay, c.PoolRefillDelay)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
