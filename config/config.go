package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds all configuration for the linking service.
// Tags use mapstructure for Viper unmarshalling; every key can also come
// from the environment (CLARITY_HTTP_PORT and so on via AutomaticEnv).
type ServerConfig struct {
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogPretty   bool   `mapstructure:"LOG_PRETTY"`

	OtelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// Aggregator (Plaid) credentials. The secret never leaves the server.
	PlaidClientID      string `mapstructure:"PLAID_CLIENT_ID"`
	PlaidSandboxSecret string `mapstructure:"PLAID_SANDBOX_SECRET"`
	PlaidEnv           string `mapstructure:"PLAID_ENV"`
	PlaidClientName    string `mapstructure:"PLAID_CLIENT_NAME"`

	// Identity provider (Firebase). When the project ID is empty the server
	// falls back to the in-memory provider, which is only meant for sandbox
	// development and tests.
	FirebaseProjectID       string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseAPIKey          string `mapstructure:"FIREBASE_API_KEY"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Link token store backend: "memory" or "redis".
	LinkStore string `mapstructure:"LINK_STORE"`
	RedisAddr string `mapstructure:"REDIS_ADDR"`

	// Minimum inflow treated as a paycheck by the spending summary.
	PaycheckFloor string `mapstructure:"PAYCHECK_FLOOR"`
}

// LoadConfig reads configuration from file, environment variables, and
// defaults, in the usual viper precedence order.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("/etc/claritycash/")
	v.AddConfigPath("$HOME/.claritycash")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8000")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/claritycash_dev")
	v.SetDefault("MONGO_DB_NAME", "claritycash_dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("OTEL_SERVICE_NAME", "claritycash-server")
	v.SetDefault("PLAID_ENV", "sandbox")
	v.SetDefault("PLAID_CLIENT_NAME", "Clarity Cash")
	v.SetDefault("LINK_STORE", "memory")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("PAYCHECK_FLOOR", "500")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env vars cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}
