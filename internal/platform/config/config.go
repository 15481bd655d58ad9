package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string
	JWTIssuer    string

	// Bank data provider
	ProviderBaseURL  string
	ProviderClientID string
	ProviderSecret   string
	ProviderTimeout  time.Duration

	// Remote categorizer; empty means the built-in keyword rules are used.
	CategorizerURL string

	// Sync pipeline
	SyncMinInterval  time.Duration
	SyncRunTimeout   time.Duration
	SyncLookbackDays int
	SyncSchedule     string // cron expression for the background schedule

	// Budget alerting
	AlertThresholds   []int
	NotificationTopic string

	// SpendIsPositive selects which amount sign counts as spend, matching
	// the provider's convention (Plaid reports debits as positive).
	SpendIsPositive bool

	// Rate limiting, e.g. "100-M" for 100 requests per minute.
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "mintflow-syncd")
	viper.SetDefault("PROVIDER_BASE_URL", "https://sandbox.plaid.com")
	viper.SetDefault("PROVIDER_CLIENT_ID", "")
	viper.SetDefault("PROVIDER_SECRET", "")
	viper.SetDefault("PROVIDER_TIMEOUT", "30s")
	viper.SetDefault("CATEGORIZER_URL", "")
	viper.SetDefault("SYNC_MIN_INTERVAL", "1h")
	viper.SetDefault("SYNC_RUN_TIMEOUT", "5m")
	viper.SetDefault("SYNC_LOOKBACK_DAYS", 30)
	viper.SetDefault("SYNC_SCHEDULE", "0 */6 * * *")
	viper.SetDefault("ALERT_THRESHOLDS", []int{80, 100})
	viper.SetDefault("NOTIFICATION_TOPIC", "budget-alerts")
	viper.SetDefault("SPEND_IS_POSITIVE", true)
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.ProviderBaseURL = viper.GetString("PROVIDER_BASE_URL")
	cfg.ProviderClientID = viper.GetString("PROVIDER_CLIENT_ID")
	cfg.ProviderSecret = viper.GetString("PROVIDER_SECRET")
	if cfg.ProviderClientID == "" || cfg.ProviderSecret == "" {
		log.Println("Warning: PROVIDER_CLIENT_ID or PROVIDER_SECRET not set. Bank linking will not function.")
	}
	cfg.ProviderTimeout = durationOrDefault("PROVIDER_TIMEOUT", 30*time.Second)

	cfg.CategorizerURL = viper.GetString("CATEGORIZER_URL")

	cfg.SyncMinInterval = durationOrDefault("SYNC_MIN_INTERVAL", time.Hour)
	cfg.SyncRunTimeout = durationOrDefault("SYNC_RUN_TIMEOUT", 5*time.Minute)
	cfg.SyncLookbackDays = viper.GetInt("SYNC_LOOKBACK_DAYS")
	if cfg.SyncLookbackDays <= 0 {
		cfg.SyncLookbackDays = 30
	}
	cfg.SyncSchedule = viper.GetString("SYNC_SCHEDULE")

	cfg.AlertThresholds = viper.GetIntSlice("ALERT_THRESHOLDS")
	if len(cfg.AlertThresholds) == 0 {
		cfg.AlertThresholds = []int{80, 100}
	}
	cfg.NotificationTopic = viper.GetString("NOTIFICATION_TOPIC")
	cfg.SpendIsPositive = viper.GetBool("SPEND_IS_POSITIVE")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}
