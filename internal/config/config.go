package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Port      string
	MongoURI  string
	DBName    string
	ClientURL string

	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration

	GoogleClientID string

	RazorpayKeyID     string
	RazorpayKeySecret string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	SMTPHost     string
	SMTPPort     int
	SMTPEmail    string
	SMTPPassword string

	GroqAPIKey string
	GroqAPIURL string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		Port:      getEnvOrDefault("PORT", "5000"),
		MongoURI:  getEnvOrDefault("MONGODB_URI", ""),
		DBName:    getEnvOrDefault("MONGODB_DB_NAME", "shopshere"),
		ClientURL: getEnvOrDefault("CLIENT_URL", "http://localhost:5173"),

		JWTSecret:     getEnvOrDefault("JWT_SECRET", ""),
		TokenTTL:      getDurationEnv("TOKEN_TTL_DAYS", 7, 24*time.Hour),
		ResetTokenTTL: getDurationEnv("RESET_TOKEN_TTL_MINUTES", 10, time.Minute),

		GoogleClientID: getEnvOrDefault("GOOGLE_CLIENT_ID", ""),

		RazorpayKeyID:     getEnvOrDefault("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnvOrDefault("RAZORPAY_KEY_SECRET", ""),

		CloudinaryCloudName: getEnvOrDefault("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnvOrDefault("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnvOrDefault("CLOUDINARY_API_SECRET", ""),

		SMTPHost:     getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getIntEnv("SMTP_PORT", 587),
		SMTPEmail:    getEnvOrDefault("SMTP_EMAIL", ""),
		SMTPPassword: getEnvOrDefault("SMTP_PASSWORD", ""),

		GroqAPIKey: getEnvOrDefault("GROQ_API_KEY", ""),
		GroqAPIURL: getEnvOrDefault("GROQ_API_URL", "https://api.groq.com/openai/v1/chat/completions"),
	}
}

// ClientIsLocalhost drives the auth cookie attributes: a localhost client
// cannot receive Secure cookies over plain http.
func (c Config) ClientIsLocalhost() bool {
	return strings.Contains(c.ClientURL, "localhost") || strings.Contains(c.ClientURL, "127.0.0.1")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
