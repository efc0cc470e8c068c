package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Commerce CommerceConfig
	Courier  CourierConfig
	Payment  PaymentConfig
	Policy   PolicyConfig
	Admin    AdminConfig
	Sweep    SweepConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
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

// CommerceConfig points at the storefront platform the orders live in.
type CommerceConfig struct {
	StoreDomain string
	AccessToken string
	APIVersion  string
}

// CourierConfig is the shipping aggregator account. The bearer token the
// aggregator issues is valid for TokenTTLHours and refreshed lazily.
type CourierConfig struct {
	BaseURL        string
	Email          string
	Password       string
	TokenTTLHours  int
	PickupLocation string
}

type PaymentConfig struct {
	ServerKey     string
	Production    bool
	WebhookSecret string
	FeeAmount     float64
	Currency      string
}

// PolicyConfig holds the business knobs the legacy variants hard-coded
// inconsistently: the eligibility window and the fee-waiver reason list.
type PolicyConfig struct {
	ReturnWindowDays int
	FeeWaiverReasons []string
}

type AdminConfig struct {
	Secret    string
	JWTSecret string
}

type SweepConfig struct {
	IntervalMinutes int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
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
			SenderName: getEnv("SMTP_SENDER_NAME", "Returns Desk"),
		},
		Commerce: CommerceConfig{
			StoreDomain: getEnv("COMMERCE_STORE_DOMAIN", ""),
			AccessToken: getEnv("COMMERCE_ACCESS_TOKEN", ""),
			APIVersion:  getEnv("COMMERCE_API_VERSION", "2024-01"),
		},
		Courier: CourierConfig{
			BaseURL:        getEnv("COURIER_BASE_URL", ""),
			Email:          getEnv("COURIER_EMAIL", ""),
			Password:       getEnv("COURIER_PASSWORD", ""),
			TokenTTLHours:  getEnvAsInt("COURIER_TOKEN_TTL_HOURS", 240),
			PickupLocation: getEnv("COURIER_PICKUP_LOCATION", "Primary"),
		},
		Payment: PaymentConfig{
			ServerKey:     getEnv("PAYMENT_SERVER_KEY", ""),
			Production:    getEnv("PAYMENT_IS_PRODUCTION", "false") == "true",
			WebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
			FeeAmount:     getEnvAsFloat("RETURN_FEE_AMOUNT", 100),
			Currency:      getEnv("RETURN_FEE_CURRENCY", "INR"),
		},
		Policy: PolicyConfig{
			ReturnWindowDays: getEnvAsInt("RETURN_WINDOW_DAYS", 30),
			FeeWaiverReasons: getEnvAsSlice("FEE_WAIVER_REASONS", []string{"defective", "damaged", "wrong_item"}),
		},
		Admin: AdminConfig{
			Secret: getEnv("ADMIN_SECRET", ""),
			// No fallback: JwtMiddleware validates against the same env var,
			// so an unset secret must fail at login, not at every request.
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Sweep: SweepConfig{
			IntervalMinutes: getEnvAsInt("SWEEP_INTERVAL_MINUTES", 30),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsSlice(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	parts := strings.Split(strValue, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
