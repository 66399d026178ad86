package config

import "github.com/kelseyhightower/envconfig"

type Config struct {
	DBPath        string `envconfig:"DB_PATH" default:"messages.db"`
	WebhookSecret string `envconfig:"WEBHOOK_SECRET"`
	HTTPPort      string `envconfig:"HTTP_PORT" default:"8080"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
