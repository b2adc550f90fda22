package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string

	StoreName        string
	StoreDisplayName string

	WarehouseAPIBaseURL string
	WarehouseAPIID      string
	WarehouseAPIKey     string
	WarehousePageSize   int
	WarehouseTimeoutMs  int
	WarehouseRateRPS    int

	StorefrontDomain       string
	StorefrontAccessToken  string
	StorefrontAPIVersion   string
	StorefrontLocationID   int64
	StorefrontTimeoutMs    int
	StorefrontPageDelayMs  int
	StorefrontWriteDelayMs int

	OrderLookbackHours int
	OrderFetchLimit    int
	CustomerCodePrefix string
	TaxCode            string
	CurrencyCode       string
	DeliveryMethod     string

	WebhookSecret string
	WebhookAddr   string

	ListenIntervalSec int
	ListenSyncOrders  bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "stockbridge.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		StoreName:        getEnv("STORE_NAME", "default"),
		StoreDisplayName: getEnv("STORE_DISPLAY_NAME", getEnv("STORE_NAME", "default")),

		WarehouseAPIBaseURL: getEnv("WAREHOUSE_API_BASE_URL", "https://api.unleashedsoftware.com"),
		WarehouseAPIID:      getEnv("WAREHOUSE_API_ID", ""),
		WarehouseAPIKey:     getEnv("WAREHOUSE_API_KEY", ""),
		WarehousePageSize:   getEnvInt("WAREHOUSE_PAGE_SIZE", 200),
		WarehouseTimeoutMs:  getEnvInt("WAREHOUSE_TIMEOUT_MS", 30000),
		WarehouseRateRPS:    getEnvInt("WAREHOUSE_RATE_LIMIT_RPS", 4),

		StorefrontDomain:       getEnv("STOREFRONT_SHOP_DOMAIN", ""),
		StorefrontAccessToken:  getEnv("STOREFRONT_ACCESS_TOKEN", ""),
		StorefrontAPIVersion:   getEnv("STOREFRONT_API_VERSION", "2024-01"),
		StorefrontLocationID:   getEnvInt64("STOREFRONT_LOCATION_ID", 0),
		StorefrontTimeoutMs:    getEnvInt("STOREFRONT_TIMEOUT_MS", 30000),
		StorefrontPageDelayMs:  getEnvInt("STOREFRONT_PAGE_DELAY_MS", 250),
		StorefrontWriteDelayMs: getEnvInt("STOREFRONT_WRITE_DELAY_MS", 500),

		OrderLookbackHours: getEnvInt("ORDER_LOOKBACK_HOURS", 24),
		OrderFetchLimit:    getEnvInt("ORDER_FETCH_LIMIT", 50),
		CustomerCodePrefix: getEnv("CUSTOMER_CODE_PREFIX", "SHOPIFY-"),
		TaxCode:            getEnv("WAREHOUSE_TAX_CODE", "G.S.T."),
		CurrencyCode:       getEnv("WAREHOUSE_CURRENCY_CODE", "AUD"),
		DeliveryMethod:     getEnv("WAREHOUSE_DELIVERY_METHOD", "Shipping"),

		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
		WebhookAddr:   getEnv("WEBHOOK_ADDR", ":8787"),

		ListenIntervalSec: getEnvInt("SYNC_LISTEN_INTERVAL_SEC", 900),
		ListenSyncOrders:  getEnvBool("SYNC_LISTEN_ORDERS", true),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

// RequireLocationID guards the reconciliation pre-condition: without a
// configured location there is nowhere to write inventory levels.
func (c Config) RequireLocationID() error {
	if c.StorefrontLocationID == 0 {
		return fmt.Errorf("storefront location ID not configured: set STOREFRONT_LOCATION_ID")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt64(key string, fallback int64) int64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
