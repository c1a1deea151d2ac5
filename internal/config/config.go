package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	MySQLUser     string
	MySQLPassword string
	MySQLHost     string
	MySQLPort     string
	MySQLDatabase string

	RedisHost string

	RabbitURL      string
	RabbitExchange string

	JWTSecret string

	RazorpayBaseURL       string
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string
	Currency              string
}

// Load reads configuration from the environment. A local .env file is applied
// first when present; real environment variables win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	c := &Config{
		Port:                  getenv("PORT", "8080"),
		MySQLUser:             os.Getenv("MYSQL_USER"),
		MySQLPassword:         os.Getenv("MYSQL_PASSWORD"),
		MySQLHost:             getenv("MYSQL_HOST", "localhost"),
		MySQLPort:             getenv("MYSQL_PORT", "3306"),
		MySQLDatabase:         os.Getenv("MYSQL_DATABASE"),
		RedisHost:             getenv("REDIS_HOST", "localhost"),
		RabbitURL:             os.Getenv("RABBITMQ_URL"),
		RabbitExchange:        getenv("RABBITMQ_EXCHANGE", "order.exchange"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		RazorpayBaseURL:       getenv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		RazorpayKeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		Currency:              getenv("CURRENCY", "INR"),
	}

	if c.MySQLDatabase == "" {
		return nil, fmt.Errorf("MYSQL_DATABASE is required")
	}
	if c.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if c.RazorpayKeyID == "" || c.RazorpayKeySecret == "" {
		return nil, fmt.Errorf("razorpay credentials are required")
	}
	if c.RazorpayWebhookSecret == "" {
		return nil, fmt.Errorf("RAZORPAY_WEBHOOK_SECRET is required")
	}
	return c, nil
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.MySQLUser, c.MySQLPassword, c.MySQLHost, c.MySQLPort, c.MySQLDatabase)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
