package config

import (
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	ServerURL      string
	SessionFile    string
	RequestTimeout time.Duration
	Verbose        bool
}

// LoadDefaults populates c with defaults. The session file lives in the
// user's config directory, or under the working directory when there is
// none.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:5001"
	c.SessionFile = defaultSessionFile()
	c.RequestTimeout = 10 * time.Second
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".projectboard", "session.json")
	}
	return filepath.Join(dir, "projectboard", "session.json")
}

// LoadConfig applies defaults, then the JSON file, then flags. Later
// sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
