// Package config loads runtime settings for the Inkveil CLI.
// Sources are applied in order: defaults, then a JSON file, then
// command-line flags, with later sources taking precedence.
package config

import "time"

// Config holds runtime settings for the Inkveil CLI.
type Config struct {
	// ServerEndpointAddr is the base URL of the account server.
	ServerEndpointAddr string

	// DBPath is the path to the local SQLite store.
	DBPath string

	// DisclosureBaseURL is the public base under which disclosure links
	// are minted.
	DisclosureBaseURL string

	// OnlineCheckInterval is how often the client probes server
	// reachability.
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.DBPath = "inkveil.db"
	c.DisclosureBaseURL = "http://127.0.0.1:8080"
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
