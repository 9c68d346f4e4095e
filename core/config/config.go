package config

import (
	"reflect"
	"strings"

	"cloud-manager/core/cloud"
	"cloud-manager/core/journal"
	"cloud-manager/core/logger"
	"cloud-manager/core/server"
	"cloud-manager/core/status"
	"cloud-manager/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// AWS holds configuration for the AWS SDK.
	AWS cloud.Config `mapstructure:"aws"`
	// Storage holds configuration for the S3-compatible storage endpoint.
	Storage storage.Config `mapstructure:"storage"`
	// Database holds configuration for the sync journal.
	Database journal.Config `mapstructure:"database"`
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Catalog holds configuration for local resource definitions.
	Catalog CatalogConfig `mapstructure:"catalog"`
	// Sync holds reconciliation behavior.
	Sync SyncConfig `mapstructure:"sync"`
	// Exit maps the final run status to a process exit code.
	Exit ExitConfig `mapstructure:"exit"`
}

// CatalogConfig locates the local definitions.
type CatalogConfig struct {
	// Root is the directory holding one subdirectory per resource type.
	Root string `mapstructure:"root" default:"."`
}

// SyncConfig controls classification and sync behavior.
type SyncConfig struct {
	// IncludeUnmanaged reports remote resources missing from the catalog.
	IncludeUnmanaged bool `mapstructure:"include_unmanaged" default:"true"`
	// Create allows sync to create resources missing remotely.
	Create bool `mapstructure:"create" default:"true"`
	// Workers bounds concurrent provider calls when fetching snapshots.
	Workers int `mapstructure:"workers" default:"8"`
}

// ExitConfig maps status levels to exit codes.
type ExitConfig struct {
	DiffsFound  int `mapstructure:"diffs_found" default:"2"`
	DiffsSynced int `mapstructure:"diffs_synced" default:"0"`
	Fatal       int `mapstructure:"fatal" default:"1"`
}

// Code returns the exit code for a final status level.
func (e ExitConfig) Code(level status.Level) int {
	switch level {
	case status.DiffsFound:
		return e.DiffsFound
	case status.DiffsSynced:
		return e.DiffsSynced
	case status.Fatal:
		return e.Fatal
	default:
		return 0
	}
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist
	_ = godotenv.Load(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Optional config file (cloud-manager.yaml) next to the .env file
	v.SetConfigName("cloud-manager")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Map environment variables to nested keys (e.g. SYNC_WORKERS -> sync.workers)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
