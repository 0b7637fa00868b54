package config

import (
	"os"
	"strconv"
)

// Config is the process configuration, read from the environment. A
// .env file is loaded by main before Load runs.
type Config struct {
	Port   string
	AppURL string

	DatabaseURL string
	RedisAddr   string

	ShopifyAPIKey    string
	ShopifyAPISecret string
	ShopifyScopes    string

	EncryptionKey string

	TwilioAccountSID      string
	TwilioAuthToken       string
	TwilioFromNumber      string
	TwilioValidateWebhook bool

	// TwilioShopDomain is the shop inbound SMS belongs to. One Twilio
	// number serves one shop.
	TwilioShopDomain string

	GoogleClientID     string
	GoogleClientSecret string

	// FrontendURL is where OAuth flows redirect back to.
	FrontendURL string

	// PickupLeadTimeCutoffHour excludes same-day pickup after this
	// local hour (24h clock).
	PickupLeadTimeCutoffHour int

	// AvailabilityCacheTTLSeconds bounds staleness of the cached
	// availability response.
	AvailabilityCacheTTLSeconds int

	DefaultTimezone string
}

// Load reads configuration from the environment with the same inline
// defaults the app has always shipped with.
func Load() *Config {
	return &Config{
		Port:   getEnv("PORT", "8080"),
		AppURL: getEnv("APP_URL", "http://localhost:8080"),

		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/pickupstand?sslmode=disable"),
		RedisAddr:   getEnv("REDIS_ADDR", ""),

		ShopifyAPIKey:    os.Getenv("SHOPIFY_API_KEY"),
		ShopifyAPISecret: os.Getenv("SHOPIFY_API_SECRET"),
		ShopifyScopes: getEnv("SHOPIFY_SCOPES",
			"read_customers,write_customers,read_orders,write_orders,write_draft_orders,read_products,write_discounts,write_own_subscription_contracts"),

		EncryptionKey: os.Getenv("ENCRYPTION_KEY"),

		TwilioAccountSID:      os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:       os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:      os.Getenv("TWILIO_FROM_NUMBER"),
		TwilioValidateWebhook: getEnvBool("TWILIO_VALIDATE_WEBHOOK", true),
		TwilioShopDomain:      os.Getenv("TWILIO_SHOP_DOMAIN"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),

		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		PickupLeadTimeCutoffHour:    getEnvInt("PICKUP_CUTOFF_HOUR", 12),
		AvailabilityCacheTTLSeconds: getEnvInt("AVAILABILITY_CACHE_TTL", 120),

		DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "America/New_York"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
