package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Site             string
	Hostname         string
	BucketName       string
	ApiURL           string
	AccessKey        string
	SecretKey        string
	Region           string
	TechnologiesFile string

	// DefaultWindowDays is used for technologies that do not carry their own
	// retention window.
	DefaultWindowDays int
	InterUploadDelay  time.Duration

	MailTo       string
	MailFrom     string
	MailPassword string
	MailServer   string
	MailPort     int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables only")
	}

	config := &Config{
		Site:              getEnv("SITE", ""),
		Hostname:          getEnv("HOSTNAME", ""),
		BucketName:        getEnv("BUCKET_NAME", ""),
		ApiURL:            getEnv("API_URL", ""),
		AccessKey:         getEnv("ACCESS_KEY", ""),
		SecretKey:         getEnv("SECRET_KEY", ""),
		Region:            getEnv("REGION", ""),
		TechnologiesFile:  getEnv("TECHNOLOGIES_FILE", "technologies.yaml"),
		DefaultWindowDays: getEnvInt("DAYS_TO_CHECK", 5),
		InterUploadDelay:  time.Duration(getEnvInt("SLEEP_TIME_SECONDS", 5)) * time.Second,
		MailTo:            getEnv("MAIL_TO", ""),
		MailFrom:          getEnv("MAIL_FROM", ""),
		MailPassword:      getEnv("MAIL_PASSWORD", ""),
		MailServer:        getEnv("MAIL_SERVER", ""),
		MailPort:          getEnvInt("MAIL_PORT", 465),
	}

	if config.Hostname == "" {
		if name, err := os.Hostname(); err == nil {
			config.Hostname = name
		}
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("Invalid integer in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return n
}
