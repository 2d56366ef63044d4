// Package config stores the client's settings in a TOML file and lets
// NEXUS_* environment variables override them.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config keys
const (
	KeyBackendURL     = "backend.url"
	KeyPublishableKey = "backend.publishable_key"
	KeyTimeout        = "backend.timeout"
	KeyOutputFormat   = "output.format"
	KeyLogLevel       = "log.level"
	KeyLogFile        = "log.file"
)

// Environment variables. Other keys map to NEXUS_<KEY> with dots as
// underscores, so log.level is NEXUS_LOG_LEVEL.
const (
	EnvBackendURL     = "NEXUS_BACKEND_URL"
	EnvPublishableKey = "NEXUS_PUBLISHABLE_KEY"
	EnvConfigDir      = "NEXUS_CONFIG_DIR"
)

const (
	configFileName      = "config.toml"
	credentialsFileName = "credentials"
	availabilityCache   = "availability.json"
	logFileName         = "nexus.log"
)

var defaults = map[string]any{
	KeyBackendURL:     "",
	KeyPublishableKey: "",
	KeyTimeout:        30,
	KeyOutputFormat:   "text",
	KeyLogLevel:       "info",
}

var (
	configDir      string
	configFilePath string
)

// defaultConfigDir is ~/.config/nexus on Unix and %LOCALAPPDATA%\nexus on Windows
func defaultConfigDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	if runtime.GOOS == "windows" {
		if dir, err := os.UserConfigDir(); err == nil {
			return filepath.Join(dir, "nexus"), nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "nexus"), nil
}

// Init loads the config file when it exists and binds the environment
// overrides. An empty configPath uses the default location.
func Init(configPath string) error {
	if configPath == "" {
		dir, err := defaultConfigDir()
		if err != nil {
			return err
		}
		configPath = filepath.Join(dir, configFileName)
	}
	configFilePath = configPath
	configDir = filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	viper.Reset()
	viper.SetConfigType("toml")
	viper.SetConfigFile(configFilePath)
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
	viper.SetDefault(KeyLogFile, filepath.Join(configDir, logFileName))

	viper.SetEnvPrefix("nexus")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.BindEnv(KeyPublishableKey, EnvPublishableKey); err != nil {
		return err
	}

	if _, err := os.Stat(configFilePath); err != nil {
		return nil
	}
	return viper.ReadInConfig()
}

// GetString returns a string value. A leading ~ in the log file path is expanded.
func GetString(key string) string {
	value := viper.GetString(key)
	if key == KeyLogFile && strings.HasPrefix(value, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, value[1:])
		}
	}
	return value
}

func GetInt(key string) int {
	return viper.GetInt(key)
}

// Set overrides a value for this process without persisting it
func Set(key string, value any) {
	viper.Set(key, value)
}

// SetString sets a value and writes the config file
func SetString(key string, value string) error {
	viper.Set(key, value)
	return viper.WriteConfigAs(configFilePath)
}

func GetConfigDir() string {
	return configDir
}

func GetConfigFilePath() string {
	return configFilePath
}

// GetCredentialsPath is where the session token is stored
func GetCredentialsPath() string {
	return filepath.Join(configDir, credentialsFileName)
}

// GetAvailabilityCachePath is where availability edits wait to be synced
func GetAvailabilityCachePath() string {
	return filepath.Join(configDir, availabilityCache)
}
