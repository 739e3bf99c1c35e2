package config

import "github.com/dmitrijs2005/pointpool/internal/flagx"

func parseEnv(cfg *Config) {
	flagx.EnvString(&cfg.ServerEndpointAddr, "POINTPOOL_SERVER_ADDR")
	flagx.EnvString(&cfg.StateFile, "POINTPOOL_STATE_FILE")
}
