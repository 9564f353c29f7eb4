package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tshirt-bundle/models"
	"tshirt-bundle/utils"
)

const (
	DefaultBundleID           = "tshirt-bundle"
	DefaultBundleSize         = 3
	DefaultBundlePriceCents   = 7500
	DefaultBundlePriceDisplay = "$75"
)

type Config struct {
	App        AppConfig
	Bundle     models.BundleConfig
	Storefront StorefrontConfig
	Database   DatabaseConfig
	Nats       NatsConfig
	Preview    PreviewConfig
}

type AppConfig struct {
	Port        string
	BaseURL     string
	Environment string
	LogFilePath string
	CardsFile   string
	InstanceTTL time.Duration
}

type StorefrontConfig struct {
	URL         string // Origin of the storefront (e.g., "https://shop.example.com")
	Root        string // Theme routes root, "/" unless the shop is localized
	CartURL     string
	CartTimeout time.Duration
}

type DatabaseConfig struct {
	Connection string
}

type NatsConfig struct {
	URL     string
	Subject string
}

type PreviewConfig struct {
	ChromePath string
	CacheDir   string
	ImageHosts []string // Hosts besides the storefront's the thumbnail endpoint may fetch from
}

// Load reads configuration from the environment. In non-production
// environments a .env file in the working directory is loaded first.
func Load() *Config {
	if os.Getenv("ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("Note: .env file not found, using system environment")
		}
	}

	port := strings.TrimPrefix(getEnv("PORT", "8080"), ":")

	return &Config{
		App: AppConfig{
			Port:        port,
			BaseURL:     getEnv("BASE_URL", "http://localhost:"+port),
			Environment: getEnv("ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "bundle.log"),
			CardsFile:   getEnv("CARDS_FILE", "cards.yaml"),
			InstanceTTL: time.Duration(getEnvAsPositiveInt("INSTANCE_TTL_MINUTES", 30)) * time.Minute,
		},
		Bundle: LoadBundle(os.LookupEnv),
		Storefront: StorefrontConfig{
			URL:         strings.TrimSuffix(getEnv("STOREFRONT_URL", "http://localhost:9292"), "/"),
			Root:        normalizeRoot(getEnv("STOREFRONT_ROOT", "/")),
			CartURL:     getEnv("CART_URL", "/cart"),
			CartTimeout: time.Duration(getEnvAsPositiveInt("CART_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Database: DatabaseConfig{
			Connection: getEnv("DATABASE_URL", ""),
		},
		Nats: NatsConfig{
			URL:     getEnv("NATS_URL", ""),
			Subject: getEnv("NATS_SUBJECT", "storefront.cart.update"),
		},
		Preview: PreviewConfig{
			ChromePath: getEnv("CHROME_PATH", ""),
			CacheDir:   getEnv("IMAGE_CACHE_DIR", "cache/images"),
			ImageHosts: getEnvAsList("IMAGE_HOSTS", "cdn.shopify.com"),
		},
	}
}

// LoadBundle reads the bundle settings through lookup. Missing, malformed or
// non-positive numbers fall back to the defaults without error. The price may
// be given as theme data emits it ("7500" or "7500.0").
func LoadBundle(lookup func(string) (string, bool)) models.BundleConfig {
	get := func(key, fallback string) string {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
		return fallback
	}

	size, err := strconv.Atoi(get("BUNDLE_SIZE", ""))
	if err != nil || size <= 0 {
		size = DefaultBundleSize
	}

	price := utils.ParseCents(get("BUNDLE_PRICE_CENTS", ""), DefaultBundlePriceCents)
	if price <= 0 {
		price = DefaultBundlePriceCents
	}

	return models.BundleConfig{
		ID:           get("BUNDLE_ID", DefaultBundleID),
		Size:         size,
		PriceCents:   price,
		PriceDisplay: get("BUNDLE_PRICE_DISPLAY", DefaultBundlePriceDisplay),
	}
}

// CartAddURL is the absolute URL of the storefront's cart add endpoint
func (s StorefrontConfig) CartAddURL() string {
	return s.URL + s.Root + "cart/add.js"
}

func normalizeRoot(root string) string {
	if !strings.HasPrefix(root, "/") {
		root = "/" + root
	}
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return root
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsList(key, fallback string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, fallback), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvAsPositiveInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil && value > 0 {
		return value
	}
	return fallback
}
