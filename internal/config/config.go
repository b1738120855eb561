package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	MailQueueFirestore = "firestore"
	MailQueueRabbitMQ  = "rabbitmq"

	receiptKeyLength = 32
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	LogLevel                         string `mapstructure:"LOG_LEVEL"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	FirestoreEmulatorHost            string `mapstructure:"FIRESTORE_EMULATOR_HOST"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`
	PublicBaseURL                    string `mapstructure:"PUBLIC_BASE_URL"`
	AdminEmail                       string `mapstructure:"ADMIN_EMAIL"`
	ReceiptKey                       string `mapstructure:"RECEIPT_KEY"` // Base64 encoded, 32 bytes

	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	MailQueue     string `mapstructure:"MAIL_QUEUE"`
	MailQueueName string `mapstructure:"MAIL_QUEUE_NAME"`
	MailFrom      string `mapstructure:"MAIL_FROM"`
	RabbitMQURL   string `mapstructure:"RABBITMQ_URL"`

	SMTPHost string `mapstructure:"SMTP_HOST"`
	SMTPPort string `mapstructure:"SMTP_PORT"`
	SMTPUser string `mapstructure:"SMTP_USER"`
	SMTPPass string `mapstructure:"SMTP_PASS"`

	RedisAddr          string        `mapstructure:"REDIS_ADDR"`
	RedisPassword      string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB            int           `mapstructure:"REDIS_DB"`
	PublicFormCacheTTL time.Duration `mapstructure:"PUBLIC_FORM_CACHE_TTL"`

	RateLimitPerMinute int `mapstructure:"RATE_LIMIT_PER_MINUTE"`
}

var envKeys = []string{
	"PORT",
	"GIN_MODE",
	"LOG_LEVEL",
	"FIREBASE_PROJECT_ID",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"FIRESTORE_EMULATOR_HOST",
	"CLIENT_URL",
	"PUBLIC_BASE_URL",
	"ADMIN_EMAIL",
	"RECEIPT_KEY",
	"GEMINI_API_KEY",
	"GEMINI_MODEL",
	"MAIL_QUEUE",
	"MAIL_QUEUE_NAME",
	"MAIL_FROM",
	"RABBITMQ_URL",
	"SMTP_HOST",
	"SMTP_PORT",
	"SMTP_USER",
	"SMTP_PASS",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"REDIS_DB",
	"PUBLIC_FORM_CACHE_TTL",
	"RATE_LIMIT_PER_MINUTE",
}

// LoadConfig loads configuration from the environment (and an optional .env file
// outside release mode) and validates it.
func LoadConfig() (*Config, error) {
	if os.Getenv("GIN_MODE") != "release" {
		// Missing .env is normal outside local development.
		_ = godotenv.Load()
	}
	return Load(viper.New())
}

// Load reads configuration through the given viper instance. When CONFIG_FILE
// is set, that file (yaml, json, toml...) is read first; environment values win.
func Load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("MAIL_QUEUE", MailQueueFirestore)
	v.SetDefault("MAIL_QUEUE_NAME", "mail")
	v.SetDefault("MAIL_FROM", "FormCraft <no-reply@formcraft.app>")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PUBLIC_FORM_CACHE_TTL", 5*time.Minute)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 30)

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", key, err)
		}
	}

	if configFile := os.Getenv("CONFIG_FILE"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}
	if cfg.PublicBaseURL == "" {
		// CLIENT_URL may list several origins; links in mails use the first.
		first, _, _ := strings.Cut(cfg.ClientURL, ",")
		cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(first), "/")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and cross-field constraints.
func (c *Config) Validate() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.GoogleApplicationCredentials == "" && c.FirebaseServiceAccountJSONBase64 == "" && c.FirestoreEmulatorHost == "" {
		return errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is required")
	}
	if c.ClientURL == "" {
		return errors.New("CLIENT_URL is required")
	}
	if c.AdminEmail == "" {
		return errors.New("ADMIN_EMAIL is required")
	}
	if c.ReceiptKey == "" {
		return errors.New("RECEIPT_KEY is required")
	}
	if _, err := c.ReceiptKeyBytes(); err != nil {
		return err
	}
	switch c.MailQueue {
	case MailQueueFirestore:
	case MailQueueRabbitMQ:
		if c.RabbitMQURL == "" {
			return errors.New("RABBITMQ_URL is required when MAIL_QUEUE=rabbitmq")
		}
	default:
		return fmt.Errorf("MAIL_QUEUE must be %q or %q, got %q", MailQueueFirestore, MailQueueRabbitMQ, c.MailQueue)
	}
	if c.RateLimitPerMinute <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

// ReceiptKeyBytes decodes the base64 receipt key and checks it is an AES-256 key.
func (c *Config) ReceiptKeyBytes() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(c.ReceiptKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode RECEIPT_KEY from base64: %w", err)
	}
	if len(key) != receiptKeyLength {
		return nil, fmt.Errorf("RECEIPT_KEY must decode to %d bytes, got %d", receiptKeyLength, len(key))
	}
	return key, nil
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}

// GeneratorEnabled reports whether AI form generation is configured.
func (c *Config) GeneratorEnabled() bool {
	return c.GeminiAPIKey != ""
}
