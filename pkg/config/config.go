// Package config handles client configuration for go-webdriver.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the client configuration (webdriver.yaml).
type Config struct {
	// Server
	Endpoint string `yaml:"endpoint"` // WebDriver server URL

	// Browser
	Browser  string   `yaml:"browser"`  // chrome, firefox
	Binary   string   `yaml:"binary"`   // browser binary path override
	Args     []string `yaml:"args"`     // extra browser arguments
	Headless bool     `yaml:"headless"` // run without a visible window

	// Timeouts, in milliseconds
	CommandTimeoutMs int `yaml:"commandTimeoutMs"` // single command round-trip
	WaitTimeoutMs    int `yaml:"waitTimeoutMs"`    // wait-engine budget
	PollIntervalMs   int `yaml:"pollIntervalMs"`   // wait-engine poll interval

	// Capabilities are merged over the generated payload last, opaque.
	Capabilities map[string]interface{} `yaml:"capabilities"`
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromDir looks for webdriver.yaml or webdriver.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, "webdriver.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	configPath = filepath.Join(dir, "webdriver.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, return empty config
	return &Config{}, nil
}

// DefaultEndpoint returns the conventional local server address for a
// browser: chromedriver on 9515, geckodriver on 4444.
func DefaultEndpoint(browser string) string {
	if browser == "firefox" {
		return "http://localhost:4444"
	}
	return "http://localhost:9515"
}
