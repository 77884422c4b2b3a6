package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Cache        CacheConfig
	RateLimit    RateLimitConfig
	Catalog      CatalogConfig
	Presentation PresentationConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
	SSLMode  string
}

// DSN returns the pgx connection string for the configured database
func (c DatabaseConfig) DSN() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + c.Port + "/" + c.Database +
		"?sslmode=" + c.SSLMode + "&search_path=" + c.Schema
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port for the redis client
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type CacheConfig struct {
	AllProductsKey string
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerWindow int
	Window            time.Duration
}

// CatalogConfig holds the tunables of the product creation rules
type CatalogConfig struct {
	DailyCreationLimit  int
	ForbiddenNameWords  []string
	HomeRestrictedWords []string
	TechnologyKeywords  []string
}

type PresentationConfig struct {
	CurrencySymbol string
	Locale         string
}

// Load reads the optional .env file into the environment and builds the
// configuration from environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not read .env file: %v", err)
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_ALL_PRODUCTS_KEY", "all_products")
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 60)
	viper.SetDefault("RATE_LIMIT_WINDOW", time.Minute)
	viper.SetDefault("CATALOG_DAILY_CREATION_LIMIT", 500)
	viper.SetDefault("CATALOG_FORBIDDEN_NAME_WORDS", "badword1,badword2,offensive")
	viper.SetDefault("CATALOG_HOME_RESTRICTED_WORDS", "dangerous,hazard,explosive")
	viper.SetDefault("CATALOG_TECHNOLOGY_KEYWORDS",
		"Tech,Smart,Phone,Tablet,Laptop,Digital,Bluetooth,Device,Galaxy,Wireless,Camera")
	viper.SetDefault("PRESENTATION_CURRENCY_SYMBOL", "$")
	viper.SetDefault("PRESENTATION_LOCALE", "en-US")

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			AllProductsKey: viper.GetString("CACHE_ALL_PRODUCTS_KEY"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           viper.GetBool("RATE_LIMIT_ENABLED"),
			RequestsPerWindow: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:            viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Catalog: CatalogConfig{
			DailyCreationLimit:  viper.GetInt("CATALOG_DAILY_CREATION_LIMIT"),
			ForbiddenNameWords:  splitList(viper.GetString("CATALOG_FORBIDDEN_NAME_WORDS")),
			HomeRestrictedWords: splitList(viper.GetString("CATALOG_HOME_RESTRICTED_WORDS")),
			TechnologyKeywords:  splitList(viper.GetString("CATALOG_TECHNOLOGY_KEYWORDS")),
		},
		Presentation: PresentationConfig{
			CurrencySymbol: viper.GetString("PRESENTATION_CURRENCY_SYMBOL"),
			Locale:         viper.GetString("PRESENTATION_LOCALE"),
		},
	}
}

// splitList turns a comma separated env value into trimmed, non-empty items
func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
