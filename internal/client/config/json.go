package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/shopkeeper/internal/flagx"
	"github.com/dmitrijs2005/shopkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// leave the current values alone.
type JsonConfig struct {
	ServerEndpointAddr *string         `json:"server_endpoint_addr"`
	HTTPBaseURL        *string         `json:"http_base_url"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	Debug              *bool           `json:"debug"`
}

// parseJson overlays Config with values loaded from a JSON file. It panics
// on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFile()
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
	if jc.HTTPBaseURL != nil {
		cfg.HTTPBaseURL = *jc.HTTPBaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.Debug != nil {
		cfg.Debug = *jc.Debug
	}
}
