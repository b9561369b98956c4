// Package config loads tillsync configuration from the config file, .env
// files, and the environment via viper. Validation happens here so a broken
// setup fails before the first catalog call.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tillsync/tillsync/pkg/errors"
)

// DefaultHTTPTimeout bounds each catalog call unless http.timeout is set.
const DefaultHTTPTimeout = 30 * time.Second

// Config is the validated tillsync configuration.
type Config struct {
	Grocy GrocyConfig
	HTTP  HTTPConfig
}

// GrocyConfig holds the catalog coordinates.
type GrocyConfig struct {
	BaseURL string
	APIKey  string
}

// HTTPConfig holds transport settings.
type HTTPConfig struct {
	Timeout time.Duration
}

// Init wires viper to the config file, .env files, and the environment.
// With an empty configFile, $HOME/.tillsync.yaml (or ./.tillsync.yaml) is
// searched.
func Init(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tillsync")
	}

	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// A missing config file is not an error; everything can come from the
	// environment.
	_ = viper.ReadInConfig()
}

// loadEnvFiles loads environment variables from .env files before viper's
// env binding sees them.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// Load reads and validates the configuration. Missing catalog coordinates
// fail here, before any network call.
func Load() (*Config, error) {
	baseURL := viper.GetString("grocy.base_url")
	if baseURL == "" {
		return nil, errors.NewConfigError("grocy.base_url",
			"catalog base URL not set (grocy.base_url or GROCY_BASE_URL)", nil)
	}

	apiKey := viper.GetString("grocy.api_key")
	if apiKey == "" {
		return nil, errors.NewConfigError("grocy.api_key",
			"catalog API key not set (grocy.api_key or GROCY_API_KEY)", nil)
	}

	timeout := viper.GetDuration("http.timeout")
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	return &Config{
		Grocy: GrocyConfig{
			BaseURL: strings.TrimRight(baseURL, "/"),
			APIKey:  apiKey,
		},
		HTTP: HTTPConfig{Timeout: timeout},
	}, nil
}

// ShoppingLocationID returns the shopping location configured for a store,
// or 0 when the store should be matched against catalog locations by name.
func ShoppingLocationID(store string) int {
	return viper.GetInt("stores." + store + ".shopping_location_id")
}
