package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultAPIURL   = "http://localhost:8080"
	DefaultLogLevel = "info"
	DefaultAddr     = ":8080"
	DefaultDataFile = "data/tasks.json"
)

type Server struct {
	Addr     string `yaml:"addr"`
	DataFile string `yaml:"data_file"`
}

type Config struct {
	APIURL         string        `yaml:"api_url"`
	LogLevel       string        `yaml:"log_level"`
	LogFile        string        `yaml:"log_file"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Server         Server        `yaml:"server"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:   DefaultAPIURL,
		LogLevel: DefaultLogLevel,
		Server: Server{
			Addr:     DefaultAddr,
			DataFile: DefaultDataFile,
		},
	}
}

// DefaultPath returns the config file looked up when none is given:
// $XDG_CONFIG_HOME/quadro/config.yaml, falling back to ~/.config.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "quadro", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "quadro", "config.yaml")
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment, in that order. An explicit path must exist; the default path
// is optional.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("QUADRO_API_URL"); ok && v != "" {
		c.APIURL = v
	}
	if v, ok := lookup("QUADRO_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup("QUADRO_LOG_FILE"); ok && v != "" {
		c.LogFile = v
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v, ok := lookup("TASKS_FILE"); ok && v != "" {
		c.Server.DataFile = v
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url %q must be an http or https URL", c.APIURL)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	return nil
}
