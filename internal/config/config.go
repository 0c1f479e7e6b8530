package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"last20-backend/pkg/matching"
	"last20-backend/pkg/signaling"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	JWT       JWTConfig
	Midtrans  MidtransConfig
	OAuth     OAuthConfig
	Matching  MatchingConfig
	Signaling SignalingConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type JWTConfig struct {
	Secret string
}

type MidtransConfig struct {
	ServerKey  string
	Production bool
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// MatchingConfig overrides the matcher's ranking defaults. Zero values
// keep the built-in defaults.
type MatchingConfig struct {
	MinMatchScore        float64
	MaxResults           int
	RequirePayoutAccount bool
}

// Options merges the configured overrides over the matcher defaults.
func (c MatchingConfig) Options() matching.Options {
	opts := matching.DefaultOptions()
	if c.MinMatchScore > 0 {
		opts.MinMatchScore = c.MinMatchScore
	}
	if c.MaxResults > 0 {
		opts.MaxResults = c.MaxResults
	}
	if c.RequirePayoutAccount {
		opts.RequirePayoutAccount = true
	}
	return opts
}

// SignalingConfig bounds the signaling coordinator's waits, in seconds.
type SignalingConfig struct {
	StatsIntervalSec  int
	GatherTimeoutSec  int
	ConnectTimeoutSec int
}

// Coordinator converts the env values into a signaling config. Zero
// values stay zero so the coordinator fills in its own defaults.
func (c SignalingConfig) Coordinator() signaling.Config {
	return signaling.Config{
		StatsInterval:  time.Duration(c.StatsIntervalSec) * time.Second,
		GatherTimeout:  time.Duration(c.GatherTimeoutSec) * time.Second,
		ConnectTimeout: time.Duration(c.ConnectTimeoutSec) * time.Second,
	}
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Last20"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "default_secret"),
		},
		Midtrans: MidtransConfig{
			ServerKey:  getEnv("MIDTRANS_SERVER_KEY", ""),
			Production: getEnvAsBool("MIDTRANS_PRODUCTION", false),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		},
		Matching: MatchingConfig{
			MinMatchScore:        getEnvAsFloat("MATCH_MIN_SCORE", 0),
			MaxResults:           getEnvAsInt("MATCH_MAX_RESULTS", 0),
			RequirePayoutAccount: getEnvAsBool("MATCH_REQUIRE_PAYOUT", false),
		},
		Signaling: SignalingConfig{
			StatsIntervalSec:  getEnvAsInt("SIGNALING_STATS_INTERVAL_SEC", 0),
			GatherTimeoutSec:  getEnvAsInt("SIGNALING_GATHER_TIMEOUT_SEC", 0),
			ConnectTimeoutSec: getEnvAsInt("SIGNALING_CONNECT_TIMEOUT_SEC", 0),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
