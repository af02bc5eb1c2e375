package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"trivia-party-service/internal/domain"
)

type Config struct {
	Server struct {
		Port          string `yaml:"port"`
		AdminPassword string `yaml:"admin_password"`
		PublicBaseURL string `yaml:"public_base_url"`
		SweepInterval string `yaml:"sweep_interval"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Trivia struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"trivia"`
	Questions struct {
		PoolBatch int    `yaml:"pool_batch"`
		PoolTTL   string `yaml:"pool_ttl"`
	} `yaml:"questions"`
	Game domain.GameOptions `yaml:"game"`
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
