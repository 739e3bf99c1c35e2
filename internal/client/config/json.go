package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/flagx"
	"github.com/dmitrijs2005/pointpool/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent
// fields stay nil and leave the corresponding Config value untouched.
type JsonConfig struct {
	ServerEndpointAddr *string         `json:"server_endpoint_addr"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	StateFile          *string         `json:"state_file"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != nil {
		cfg.ServerEndpointAddr = *jc.ServerEndpointAddr
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.StateFile != nil {
		cfg.StateFile = *jc.StateFile
	}
}
