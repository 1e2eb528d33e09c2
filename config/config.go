package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// MongoDB.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`

	// Text generation.
	GeminiAPIKey         string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel          string `mapstructure:"GEMINI_MODEL"`
	GenerationTimeoutSec int    `mapstructure:"GENERATION_TIMEOUT_SEC"`

	// Delivery.
	DeliveryChannel         string `mapstructure:"DELIVERY_CHANNEL"`
	WhatsAppAccessToken     string `mapstructure:"WHATSAPP_ACCESS_TOKEN"`
	WhatsAppPhoneNumberID   string `mapstructure:"WHATSAPP_PHONE_NUMBER_ID"`
	WhatsAppVerifyToken     string `mapstructure:"WHATSAPP_VERIFY_TOKEN"`
	WhatsAppAPIVersion      string `mapstructure:"WHATSAPP_API_VERSION"`
	DeliveryTimeoutSec      int    `mapstructure:"DELIVERY_TIMEOUT_SEC"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Stripe (response-pack purchase confirmations).
	StripeKey           string `mapstructure:"STRIPE_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	// Jobs.
	ReminderJobSchedule    string `mapstructure:"REMINDER_JOB_SCHEDULE"`
	AppointmentJobSchedule string `mapstructure:"APPOINTMENT_JOB_SCHEDULE"`
	ConsumableJobSchedule  string `mapstructure:"CONSUMABLE_JOB_SCHEDULE"`
	QuotaResetJobSchedule  string `mapstructure:"QUOTA_RESET_JOB_SCHEDULE"`
	ReminderWindowHours    int    `mapstructure:"REMINDER_WINDOW_HOURS"`
	JobLockTTLMin          int    `mapstructure:"JOB_LOCK_TTL_MIN"`

	// Slot search.
	SlotConflictWindowMin int `mapstructure:"SLOT_CONFLICT_WINDOW_MIN"`
}

var AppConfig Config

// Delivery channels.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelFCM      = "fcm"
)

var defaults = map[string]any{
	"APP_PORT":                  "8080",
	"ENV":                       "development",
	"LOG_LEVEL":                 "info",
	"JWT_SECRET":                "",
	"MAX_REQUESTS_PER_MIN":      100,
	"DATABASE_URL":              "mongodb://localhost:27017",
	"DATABASE_NAME":             "vetflow",
	"REDIS_ADDR":                "localhost:6379",
	"REDIS_PASSWORD":            "",
	"REDIS_CACHE_DB":            0,
	"REDIS_QUEUE_DB":            1,
	"REDIS_LOCK_DB":             2,
	"GEMINI_API_KEY":            "",
	"GEMINI_MODEL":              "models/gemini-1.5-flash",
	"GENERATION_TIMEOUT_SEC":    20,
	"DELIVERY_CHANNEL":          ChannelWhatsApp,
	"WHATSAPP_ACCESS_TOKEN":     "",
	"WHATSAPP_PHONE_NUMBER_ID":  "",
	"WHATSAPP_VERIFY_TOKEN":     "vetflow_webhook_verify_token",
	"WHATSAPP_API_VERSION":      "v18.0",
	"DELIVERY_TIMEOUT_SEC":      10,
	"FIREBASE_CREDENTIALS_FILE": "",
	"STRIPE_KEY":                "",
	"STRIPE_WEBHOOK_SECRET":     "",
	"REMINDER_JOB_SCHEDULE":     "0 * * * *",    // hourly
	"APPOINTMENT_JOB_SCHEDULE":  "30 */2 * * *", // every two hours at :30
	"CONSUMABLE_JOB_SCHEDULE":   "0 9 * * *",    // daily at 09:00
	"QUOTA_RESET_JOB_SCHEDULE":  "15 0 * * *",   // daily at 00:15
	"REMINDER_WINDOW_HOURS":     48,
	"JOB_LOCK_TTL_MIN":          30,
	"SLOT_CONFLICT_WINDOW_MIN":  30,
}

// LoadConfig reads config.yaml (optional) and the environment into AppConfig.
func LoadConfig() (*Config, error) {
	// A .env file is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	for key, value := range defaults {
		viper.SetDefault(key, value)
		// Bind explicitly so Unmarshal sees env-only keys.
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.DeliveryChannel = strings.ToLower(strings.TrimSpace(cfg.DeliveryChannel))
	switch cfg.DeliveryChannel {
	case ChannelWhatsApp, ChannelFCM:
	default:
		return nil, fmt.Errorf("DELIVERY_CHANNEL must be %q or %q, got %q", ChannelWhatsApp, ChannelFCM, cfg.DeliveryChannel)
	}
	if cfg.SlotConflictWindowMin <= 0 {
		return nil, fmt.Errorf("SLOT_CONFLICT_WINDOW_MIN must be positive")
	}
	if cfg.JobLockTTLMin <= 0 {
		return nil, fmt.Errorf("JOB_LOCK_TTL_MIN must be positive, got %d", cfg.JobLockTTLMin)
	}
	if cfg.IsProduction() && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	AppConfig = cfg
	return &cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return AppConfig.IsProduction()
}
