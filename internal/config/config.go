package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN     string `env:"DATABASE_DSN,required=true"`
	RedisURL        string `env:"REDIS_URL,required=true"`
	BrevoAPIURL     string `env:"BREVO_API_URL,default=https://api.brevo.com/v3/smtp/email"`
	BrevoAPIKey     string `env:"BREVO_API_KEY,required=true"`
	SenderName      string `env:"SENDER_NAME,default=The School Team"`
	SenderEmail     string `env:"SENDER_EMAIL,required=true"`
	SchoolName      string `env:"SCHOOL_NAME,default=The School Team"`
	UploadDir       string `env:"UPLOAD_DIR,default=./uploads"`
	SendConcurrency int    `env:"SEND_CONCURRENCY,default=4"`
	APIPort         int    `env:"API_PORT,default=8080"`
	LogLevel        string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
