package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	BaseURL      = "base_url"
	APIKey       = "api_key"
	LogDir       = "log_dir"
	ScanSettleMS = "scan_settle_ms"

	// DefaultBaseURL matches the monitor backend's default bind.
	DefaultBaseURL = "http://localhost:8001"
)

// InitConfig initializes the configuration
func InitConfig() {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	viper.AddConfigPath(home)
	viper.SetConfigType("yaml")
	viper.SetConfigName(".breachwatch")

	viper.SetDefault(BaseURL, DefaultBaseURL)
	viper.SetDefault(LogDir, "logs")
	viper.SetDefault(ScanSettleMS, 5000)

	viper.SetEnvPrefix("breachwatch")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		// fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func writeConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	configPath := filepath.Join(home, ".breachwatch.yaml")
	return viper.WriteConfigAs(configPath)
}

// SetBaseURL sets the API base URL in the configuration file
func SetBaseURL(url string) error {
	viper.Set(BaseURL, url)
	return writeConfig()
}

// GetBaseURL returns the API base URL from the configuration
func GetBaseURL() string {
	if url := viper.GetString(BaseURL); url != "" {
		return url
	}
	return DefaultBaseURL
}

// SetAPIKey sets the API key in the configuration file
func SetAPIKey(key string) error {
	viper.Set(APIKey, key)
	return writeConfig()
}

// GetAPIKey returns the API key from the configuration
func GetAPIKey() string {
	return viper.GetString(APIKey)
}

// GetLogDir returns the log directory from the configuration
func GetLogDir() string {
	if dir := viper.GetString(LogDir); dir != "" {
		return dir
	}
	return "logs"
}

// GetScanSettleDelay returns how long to wait after triggering a
// comprehensive scan before polling its effects. The backend gives no
// completion signal, so this is a heuristic, not an acknowledgment.
func GetScanSettleDelay() time.Duration {
	ms := viper.GetInt(ScanSettleMS)
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms) * time.Millisecond
}
