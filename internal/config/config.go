// Package config loads server settings.
//
// Sources, in increasing priority order:
//  1. Built-in defaults
//  2. YAML file named by LIBRARY_CONFIG (library.yaml in the working directory if present)
//  3. Environment variables, including those from a .env file
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFile = "library.yaml"
	configFileEnv     = "LIBRARY_CONFIG"
)

type Config struct {
	BindAddr  string `yaml:"bind_addr"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	DebugMode bool   `yaml:"debug_mode"`

	// PublicURL prefixes absolute links in OPDS feeds; empty means relative links
	PublicURL string `yaml:"public_url"`

	Organization string `yaml:"organization"`
	GitHubToken  string `yaml:"github_token"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	GitHubAPIURL string `yaml:"github_api_url"`
	RawBaseURL   string `yaml:"raw_base_url"`

	// FailsDSN enables the failure journal: a postgres:// URL or a sqlite path
	FailsDSN string `yaml:"fails_dsn"`

	HTTPTimeoutStr string        `yaml:"http_timeout"`
	HTTPTimeout    time.Duration `yaml:"-"`
}

func Default() Config {
	return Config{
		BindAddr:       ":8080",
		LogLevel:       "debug",
		LogFormat:      "text",
		Organization:   "GITenberg",
		RawBaseURL:     "https://raw.githubusercontent.com",
		HTTPTimeoutStr: "30s",
		HTTPTimeout:    30 * time.Second,
	}
}

// Load merges defaults, the config file at path (skipped when empty) and environment
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %q: %w", path, err)
		}
	}

	cfg.BindAddr = getEnvOrDefault("BIND_ADDR", cfg.BindAddr)
	cfg.LogLevel = strings.ToLower(getEnvOrDefault("LOG_LEVEL", cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(getEnvOrDefault("LOG_FORMAT", cfg.LogFormat))
	cfg.PublicURL = getEnvOrDefault("PUBLIC_URL", cfg.PublicURL)
	cfg.Organization = getEnvOrDefault("GITHUB_ORG", cfg.Organization)
	cfg.GitHubToken = getEnvOrDefault("GITHUB_TOKEN", cfg.GitHubToken)
	cfg.ClientID = getEnvOrDefault("CLIENT_ID", cfg.ClientID)
	cfg.ClientSecret = getEnvOrDefault("CLIENT_SECRET", cfg.ClientSecret)
	cfg.GitHubAPIURL = getEnvOrDefault("GITHUB_API_URL", cfg.GitHubAPIURL)
	cfg.RawBaseURL = getEnvOrDefault("RAW_BASE_URL", cfg.RawBaseURL)
	cfg.FailsDSN = getEnvOrDefault("FAILS_DSN", cfg.FailsDSN)
	cfg.HTTPTimeoutStr = getEnvOrDefault("HTTP_TIMEOUT", cfg.HTTPTimeoutStr)

	if v, ok := os.LookupEnv("DEBUG_MODE"); ok {
		cfg.DebugMode = parseBool(v)
	}

	if cfg.HTTPTimeoutStr == "" || cfg.HTTPTimeoutStr == "0" {
		cfg.HTTPTimeout = 0
	} else {
		d, err := time.ParseDuration(cfg.HTTPTimeoutStr)
		if err != nil {
			return cfg, fmt.Errorf("invalid http_timeout %q: %w", cfg.HTTPTimeoutStr, err)
		}
		cfg.HTTPTimeout = d
	}

	if cfg.Organization == "" {
		return cfg, fmt.Errorf("organization must not be empty")
	}

	return cfg, nil
}

// FindConfigFile returns the config file to load, or "" if there is none
func FindConfigFile() string {
	if p := strings.TrimSpace(os.Getenv(configFileEnv)); p != "" {
		return p
	}

	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile
	}

	return ""
}

func getEnvOrDefault(key, default_ string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}

	return default_
}

func parseBool(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "yes", "on", "true", "1":
		return true
	}

	return false
}
