package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		AccessTokenSecret     string `yaml:"access_token_secret"`
		RefreshTokenSecret    string `yaml:"refresh_token_secret"`
		AccessTokenTTLMinutes int64  `yaml:"access_token_ttl_minutes"`
		RefreshTokenTTLDays   int64  `yaml:"refresh_token_ttl_days"`
	} `yaml:"auth"`
	Storage struct {
		Endpoint      string `yaml:"endpoint"`
		Region        string `yaml:"region"`
		Bucket        string `yaml:"bucket"`
		AccessKey     string `yaml:"access_key"`
		SecretKey     string `yaml:"secret_key"`
		PublicBaseURL string `yaml:"public_base_url"`
	} `yaml:"storage"`
}

// AccessTokenTTL returns the access token lifetime as a duration.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.Auth.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime as a duration.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.Auth.RefreshTokenTTLDays) * 24 * time.Hour
}

// LoadConfig reads configuration from the specified YAML file. Secrets may be
// overridden through the environment so they stay out of the config file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Database.URL = v
	}
	if v := os.Getenv("ACCESS_TOKEN_SECRET"); v != "" {
		config.Auth.AccessTokenSecret = v
	}
	if v := os.Getenv("REFRESH_TOKEN_SECRET"); v != "" {
		config.Auth.RefreshTokenSecret = v
	}
	if v := os.Getenv("STORAGE_ACCESS_KEY"); v != "" {
		config.Storage.AccessKey = v
	}
	if v := os.Getenv("STORAGE_SECRET_KEY"); v != "" {
		config.Storage.SecretKey = v
	}

	if config.Auth.AccessTokenSecret == "" || config.Auth.RefreshTokenSecret == "" {
		return nil, fmt.Errorf("access and refresh token secrets are required")
	}
	if config.Auth.AccessTokenSecret == config.Auth.RefreshTokenSecret {
		return nil, fmt.Errorf("access and refresh token secrets must differ")
	}
	if config.Auth.AccessTokenTTLMinutes <= 0 {
		config.Auth.AccessTokenTTLMinutes = 15
	}
	if config.Auth.RefreshTokenTTLDays <= 0 {
		config.Auth.RefreshTokenTTLDays = 10
	}

	return config, nil
}
