package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	os.Setenv("botToken", "test-token")
	os.Setenv("PORT", "3001")
	os.Setenv("enviroment", "test")
	os.Setenv("warnsToBan", "5")
	defer func() {
		os.Unsetenv("botToken")
		os.Unsetenv("PORT")
		os.Unsetenv("enviroment")
		os.Unsetenv("warnsToBan")
	}()

	resetForTesting()

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if config.BotToken != "test-token" {
		t.Errorf("BotToken = %v, want %v", config.BotToken, "test-token")
	}

	if config.Port != "3001" {
		t.Errorf("Port = %v, want %v", config.Port, "3001")
	}

	if config.Environment != "test" {
		t.Errorf("Environment = %v, want %v", config.Environment, "test")
	}

	if config.WarnsToBan != 5 {
		t.Errorf("WarnsToBan = %v, want %v", config.WarnsToBan, 5)
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "test-value")
	defer os.Unsetenv("TEST_VAR")

	if got := getEnv("TEST_VAR", "default"); got != "test-value" {
		t.Errorf("getEnv() = %v, want %v", got, "test-value")
	}

	if got := getEnv("NON_EXISTENT_VAR", "default"); got != "default" {
		t.Errorf("getEnv() = %v, want %v", got, "default")
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"", 3},
		{"7", 7},
		{"0", 0},
		{"-2", 3},
		{"tres", 3},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			os.Setenv("TEST_INT", tt.value)
			defer os.Unsetenv("TEST_INT")

			if got := getEnvInt("TEST_INT", 3); got != tt.want {
				t.Errorf("getEnvInt(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	os.Setenv("TEST_BOOL", "false")
	defer os.Unsetenv("TEST_BOOL")

	if got := getEnvBool("TEST_BOOL", true); got {
		t.Error("getEnvBool() should return false for 'false'")
	}

	os.Setenv("TEST_BOOL", "quizas")
	if got := getEnvBool("TEST_BOOL", true); !got {
		t.Error("getEnvBool() should fall back to the default on garbage")
	}
}

func TestIsProd(t *testing.T) {
	resetForTesting()
	os.Setenv("enviroment", "prod")
	config, _ := Load()

	if !config.IsProd() {
		t.Error("IsProd() should return true when environment is 'prod'")
	}

	resetForTesting()
	os.Setenv("enviroment", "dev")
	config, _ = Load()

	if config.IsProd() {
		t.Error("IsProd() should return false when environment is not 'prod'")
	}

	os.Unsetenv("enviroment")
}

func TestWarnTTL(t *testing.T) {
	c := &Config{WarnExpireDays: 2}
	if got := c.WarnTTL(); got != 48*time.Hour {
		t.Errorf("WarnTTL() = %v, want %v", got, 48*time.Hour)
	}

	c.WarnExpireDays = 0
	if got := c.WarnTTL(); got != 0 {
		t.Errorf("WarnTTL() = %v, want 0", got)
	}
}

func TestGet(t *testing.T) {
	resetForTesting()

	config := Get()
	if config == nil {
		t.Fatal("Get() returned nil")
	}

	config2 := Get()
	if config != config2 {
		t.Error("Get() should return the same config on subsequent calls")
	}
}

func TestDefaultValues(t *testing.T) {
	for _, key := range []string{
		"botToken", "devGuildId", "mongodbUrl", "dbName", "MQTT_Host", "MQTT_Port",
		"PORT", "enviroment", "warnsToBan", "warnExpireDays", "undatedWarnsActive",
	} {
		os.Unsetenv(key)
	}

	resetForTesting()
	config, _ := Load()

	if config.MongoDBURL != "mongodb://localhost:27017" {
		t.Errorf("MongoDBURL default = %v, want %v", config.MongoDBURL, "mongodb://localhost:27017")
	}

	if config.DBName != "PancyGuard" {
		t.Errorf("DBName default = %v, want %v", config.DBName, "PancyGuard")
	}

	if config.MQTTPort != "1883" {
		t.Errorf("MQTTPort default = %v, want %v", config.MQTTPort, "1883")
	}

	if config.Port != "3000" {
		t.Errorf("Port default = %v, want %v", config.Port, "3000")
	}

	if config.WarnsToBan != 3 {
		t.Errorf("WarnsToBan default = %v, want %v", config.WarnsToBan, 3)
	}

	if config.WarnExpireDays != 0 {
		t.Errorf("WarnExpireDays default = %v, want 0", config.WarnExpireDays)
	}

	if !config.UndatedWarnsActive {
		t.Error("UndatedWarnsActive should default to true")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{WarnsToBan: 3}, false},
		{"zero threshold", Config{WarnsToBan: 0}, true},
		{"host pattern", Config{WarnsToBan: 3, AllowedHosts: `^api\.example\.com$`}, false},
		{"broken host pattern", Config{WarnsToBan: 3, AllowedHosts: "(["}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadReportsInvalidThreshold(t *testing.T) {
	os.Setenv("warnsToBan", "0")
	defer os.Unsetenv("warnsToBan")
	resetForTesting()
	defer resetForTesting()

	config, err := Load()
	if err == nil {
		t.Fatal("Load() should reject warnsToBan=0")
	}
	if config == nil || config.WarnsToBan != 0 {
		t.Errorf("Load() should still return the parsed config, got %+v", config)
	}
}
