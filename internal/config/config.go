package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName            string
	AppVersion         string
	Environment        string
	ListenAddr         string
	PublicBaseURL      string
	AuthCookieSecure   bool
	DefaultWorkspaceID int64

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Email     EmailConfig
	RateLimit RateLimitConfig
	Bootstrap BootstrapConfig
}

// EmailConfig carries SMTP settings for invitation delivery.
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// RateLimitConfig configures the redis-backed invite limiter.
type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	InviteWorkspaceRate  float64
	InviteWorkspaceBurst int
	InviteUserRate       float64
	InviteUserBurst      int
}

// BootstrapConfig controls local/self-hosted first-run provisioning.
type BootstrapConfig struct {
	EnsureDefaultWorkspaceAndOwner bool
	DefaultWorkspaceName           string
	DefaultOwnerEmail              string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	return Config{
		AppName:            getenv("APP_SERVICE", "workspaces"),
		AppVersion:         getenv("APP_VERSION", "0.1.0"),
		Environment:        environment,
		ListenAddr:         getenv("LISTEN_ADDR", ":8080"),
		PublicBaseURL:      getenv("PUBLIC_BASE_URL", "http://localhost:8080"),
		AuthCookieSecure:   authCookieSecure,
		DefaultWorkspaceID: getenvInt64("DEFAULT_WORKSPACE", 0),
		OTLPEndpoint:       getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "workspaces"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),

		Email: EmailConfig{
			SMTPHost:     getenv("SMTP_HOST", ""),
			SMTPPort:     getenvInt("SMTP_PORT", 587),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			SMTPFrom:     getenv("SMTP_FROM", "no-reply@researchhub.local"),
		},
		RateLimit: RateLimitConfig{
			Enabled:              getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:            getenv("RATE_LIMIT_REDIS_ADDR", ""),
			RedisPassword:        getenv("RATE_LIMIT_REDIS_PASSWORD", ""),
			RedisDB:              getenvInt("RATE_LIMIT_REDIS_DB", 0),
			InviteWorkspaceRate:  getenvFloat("RATE_LIMIT_INVITE_WORKSPACE_RATE", 1),
			InviteWorkspaceBurst: getenvInt("RATE_LIMIT_INVITE_WORKSPACE_BURST", 30),
			InviteUserRate:       getenvFloat("RATE_LIMIT_INVITE_USER_RATE", 0.5),
			InviteUserBurst:      getenvInt("RATE_LIMIT_INVITE_USER_BURST", 10),
		},
		Bootstrap: BootstrapConfig{
			EnsureDefaultWorkspaceAndOwner: getenvBool("BOOTSTRAP_DEFAULT_WORKSPACE", true),
			DefaultWorkspaceName:           getenv("BOOTSTRAP_WORKSPACE_NAME", "My Workspace"),
			DefaultOwnerEmail:              getenv("BOOTSTRAP_OWNER_EMAIL", "owner@researchhub.local"),
		},
	}
}

// Module wires application configuration.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewPolicyHolder),
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
