package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Payment   PaymentConfig
	Email     EmailConfig
	Content   ContentConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name           string
	Env            string
	Port           string
	Debug          bool
	LogPath        string
	BaseURL        string
	RequestTimeout time.Duration
}

// nonProductionEnvs lists the only APP_ENV values that unlock testing overrides.
var nonProductionEnvs = map[string]bool{
	"development": true,
	"dev":         true,
	"local":       true,
	"test":        true,
}

// IsProduction reports whether testing overrides must be disabled.
// Unknown or empty environments count as production.
func (c AppConfig) IsProduction() bool {
	return !nonProductionEnvs[strings.ToLower(strings.TrimSpace(c.Env))]
}

type DatabaseConfig struct {
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	MaxConns    int32
	AutoMigrate bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CartTTL  time.Duration
}

type AuthConfig struct {
	URL                  string
	AnonKey              string
	ServiceRoleKey       string
	JWTSecret            string
	ResolveTimeout       time.Duration
	AdminEmails          []string
	AdminOverrideKeyHash string
	CookieSecure         bool
	LoginPath            string
	LandingPath          string
}

type PaymentConfig struct {
	SecretKey string
	APIURL    string
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Operator string
}

type ContentConfig struct {
	Token           string
	APIURL          string
	ResourcesPageID string
}

type RateLimitConfig struct {
	ContactPerMinute  int
	CheckoutPerMinute int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "instructor-portal")
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CART_TTL_HOURS", 24*30)
	viper.SetDefault("AUTH_RESOLVE_TIMEOUT_SECONDS", 5)
	viper.SetDefault("COOKIE_SECURE", true)
	viper.SetDefault("STRIPE_API_URL", "https://api.stripe.com")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("NOTION_API_URL", "https://api.notion.com")
	viper.SetDefault("CONTACT_RATE_PER_MINUTE", 5)
	viper.SetDefault("CHECKOUT_RATE_PER_MINUTE", 20)

	// .env is optional, the process environment always wins
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:           viper.GetString("APP_NAME"),
			Env:            viper.GetString("APP_ENV"),
			Port:           viper.GetString("PORT"),
			Debug:          viper.GetBool("DEBUG"),
			LogPath:        viper.GetString("LOG_PATH"),
			BaseURL:        strings.TrimRight(viper.GetString("BASE_URL"), "/"),
			RequestTimeout: time.Duration(viper.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		},
		Database: DatabaseConfig{
			Host:        viper.GetString("DB_HOST"),
			Port:        viper.GetString("DB_PORT"),
			Name:        viper.GetString("DB_NAME"),
			User:        viper.GetString("DB_USER"),
			Password:    viper.GetString("DB_PASS"),
			MaxConns:    viper.GetInt32("DB_MAX_CONNS"),
			AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			CartTTL:  time.Duration(viper.GetInt("CART_TTL_HOURS")) * time.Hour,
		},
		Auth: AuthConfig{
			URL:                  strings.TrimRight(viper.GetString("AUTH_URL"), "/"),
			AnonKey:              viper.GetString("AUTH_ANON_KEY"),
			ServiceRoleKey:       viper.GetString("AUTH_SERVICE_ROLE_KEY"),
			JWTSecret:            viper.GetString("AUTH_JWT_SECRET"),
			ResolveTimeout:       time.Duration(viper.GetInt("AUTH_RESOLVE_TIMEOUT_SECONDS")) * time.Second,
			AdminEmails:          ParseList(viper.GetString("ADMIN_EMAILS")),
			AdminOverrideKeyHash: viper.GetString("ADMIN_OVERRIDE_KEY_HASH"),
			CookieSecure:         viper.GetBool("COOKIE_SECURE"),
			LoginPath:            "/login",
			LandingPath:          "/account",
		},
		Payment: PaymentConfig{
			SecretKey: viper.GetString("STRIPE_SECRET_KEY"),
			APIURL:    strings.TrimRight(viper.GetString("STRIPE_API_URL"), "/"),
		},
		Email: EmailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASS"),
			From:     viper.GetString("EMAIL_FROM"),
			Operator: viper.GetString("EMAIL_OPERATOR"),
		},
		Content: ContentConfig{
			Token:           viper.GetString("NOTION_TOKEN"),
			APIURL:          strings.TrimRight(viper.GetString("NOTION_API_URL"), "/"),
			ResourcesPageID: viper.GetString("NOTION_RESOURCES_PAGE_ID"),
		},
		RateLimit: RateLimitConfig{
			ContactPerMinute:  viper.GetInt("CONTACT_RATE_PER_MINUTE"),
			CheckoutPerMinute: viper.GetInt("CHECKOUT_RATE_PER_MINUTE"),
		},
	}

	return config, nil
}

// ParseList splits a comma separated value, dropping blanks
func ParseList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
