package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		Mode string `yaml:"mode"`
	} `yaml:"server"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Quiz struct {
		// TTL bounds how long cached answer keys may lag behind quiz edits.
		TTL string `yaml:"ttl"`
	} `yaml:"quiz"`
	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
		TokenTTL  string `yaml:"tokenTTL"`
		// AdminEmails is the single source of admin privilege; it is consulted
		// once per request in the auth middleware and nowhere else.
		AdminEmails []string `yaml:"adminEmails"`
	} `yaml:"auth"`
	Stripe struct {
		SecretKey     string `yaml:"secretKey"`
		WebhookSecret string `yaml:"webhookSecret"`
	} `yaml:"stripe"`
	Upload struct {
		MaxImageBytes int64 `yaml:"maxImageBytes"`
	} `yaml:"upload"`
	CORS struct {
		Origins []string `yaml:"origins"`
	} `yaml:"cors"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// MaxImageBytes returns the configured upload cap, defaulting to 5MB.
func (c Config) MaxImageBytes() int64 {
	if c.Upload.MaxImageBytes > 0 {
		return c.Upload.MaxImageBytes
	}
	return 5 * 1024 * 1024
}
