// Package config provides configuration management for the bot.
// It loads environment variables and makes them available throughout the application.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken   string
	DevGuildID string

	// MongoDB
	MongoDBURL string
	DBName     string

	// MQTT
	MQTTHost     string
	MQTTPort     string
	MQTTUser     string
	MQTTPassword string

	// Web Server
	Port   string
	APIKey string
	// AllowedHosts is a regexp the request Host must match; empty allows all
	AllowedHosts string

	// Environment
	Environment string

	// Webhooks
	ErrorWebhook      string
	LogsWebhook       string
	LogsWebServerHook string

	// Moderation
	WarnsToBan         int
	WarnExpireDays     int
	UndatedWarnsActive bool
}

// Version and BuildTime are set with -ldflags at release time
var (
	Version   = "Dev-Local"
	BuildTime = "Hoy"
)

var (
	cfg     *Config
	cfgErr  error
	cfgOnce sync.Once
)

// resetForTesting drops the memoized configuration. Test code only.
func resetForTesting() {
	cfg, cfgErr = nil, nil
	cfgOnce = sync.Once{}
}

// fromEnv reads the configuration from the environment, loading .env first
// when present
func fromEnv() *Config {
	_ = godotenv.Load()

	return &Config{
		BotToken:   getEnv("botToken", ""),
		DevGuildID: getEnv("devGuildId", ""),

		MongoDBURL: getEnv("mongodbUrl", "mongodb://localhost:27017"),
		DBName:     getEnv("dbName", "PancyGuard"),

		MQTTHost:     getEnv("MQTT_Host", "localhost"),
		MQTTPort:     getEnv("MQTT_Port", "1883"),
		MQTTUser:     getEnv("MQTT_User", ""),
		MQTTPassword: getEnv("MQTT_Password", ""),

		Port:         getEnv("PORT", "3000"),
		APIKey:       getEnv("apiKey", ""),
		AllowedHosts: getEnv("allowedHosts", ""),

		Environment: getEnv("enviroment", "dev"),

		ErrorWebhook:      getEnv("errorWebhook", ""),
		LogsWebhook:       getEnv("logsWebhook", ""),
		LogsWebServerHook: getEnv("logsWebServerWebhook", ""),

		WarnsToBan:         getEnvInt("warnsToBan", 3),
		WarnExpireDays:     getEnvInt("warnExpireDays", 0),
		UndatedWarnsActive: getEnvBool("undatedWarnsActive", true),
	}
}

// Validate reports values the bot cannot run with
func (c *Config) Validate() error {
	if c.WarnsToBan < 1 {
		return fmt.Errorf("warnsToBan must be at least 1, got %d", c.WarnsToBan)
	}
	if c.AllowedHosts != "" {
		if _, err := regexp.Compile(c.AllowedHosts); err != nil {
			return fmt.Errorf("allowedHosts: %w", err)
		}
	}
	return nil
}

// Load reads and validates the configuration once. Later calls return the
// same result.
func Load() (*Config, error) {
	cfgOnce.Do(func() {
		cfg = fromEnv()
		cfgErr = cfg.Validate()
	})
	return cfg, cfgErr
}

// Get returns the configuration, loading it if needed
func Get() *Config {
	c, _ := Load()
	return c
}

// getEnv returns the variable or defaultValue when it is unset or empty
func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt parses a non-negative integer, falling back on absence or garbage
func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// WarnTTL returns how long a warning stays active. Zero means warnings never expire.
func (c *Config) WarnTTL() time.Duration {
	return time.Duration(c.WarnExpireDays) * 24 * time.Hour
}
