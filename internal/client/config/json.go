package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/inkveil/inkveil/internal/flagx"
	"github.com/inkveil/inkveil/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	DBPath              string         `json:"db_path"`
	DisclosureBaseURL   string         `json:"disclosure_base_url"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
}

// parseJson overlays cfg with values from the JSON file named by the -c or
// -config flag. Absent file path means no JSON stage; absent fields keep
// their current values. Panics on read or unmarshal errors.
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

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.DBPath != "" {
		cfg.DBPath = jc.DBPath
	}
	if jc.DisclosureBaseURL != "" {
		cfg.DisclosureBaseURL = jc.DisclosureBaseURL
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
}
