package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	JWTSecret       string
	RedisAddr       string
	RedisPassword   string
	SMTPHost        string
	SMTPPort        string
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	RazorpayKey     string
	RazorpaySecret  string
	ExpoPushURL     string
	FrontendURL     string
	Port            string
	Env             string
	SessionSecret   string
	GoogleClientID  string
	GoogleSecret    string
	GoogleRedirect  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading .env file: %v", err)
	}

	config := &Config{
		DBHost:          os.Getenv("DB_HOST"),
		DBPort:          os.Getenv("DB_PORT"),
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          os.Getenv("DB_NAME"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        os.Getenv("SMTP_PORT"),
		SMTPUsername:    os.Getenv("SMTP_USERNAME"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:        os.Getenv("SMTP_FROM"),
		RazorpayKey:     os.Getenv("RAZORPAY_KEY"),
		RazorpaySecret:  os.Getenv("RAZORPAY_SECRET"),
		ExpoPushURL:     os.Getenv("EXPO_PUSH_URL"),
		FrontendURL:     os.Getenv("FRONTEND_URL"),
		Port:            os.Getenv("PORT"),
		Env:             os.Getenv("ENV"),
		SessionSecret:   os.Getenv("SESSION_SECRET"),
		GoogleClientID:  os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleSecret:    os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirect:  os.Getenv("GOOGLE_REDIRECT_URL"),
	}

	if config.Port == "" {
		config.Port = "8080"
	}

	return config, nil
}
