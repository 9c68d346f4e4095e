// Package config provides configuration management for cloud-manager.
//
// It utilizes Viper for loading configuration from environment variables,
// an optional .env file and an optional cloud-manager.yaml file.
//
// # Configuration Structure
//
//   - Log: logging level and format
//   - AWS: region, profile and optional static credentials
//   - Storage: S3-compatible endpoint used for buckets and artifact output
//   - Database: optional MySQL sync journal
//   - Server: HTTP port and API key for the serve command
//   - Catalog: root directory of local definitions
//   - Sync: unmanaged reporting, creation toggle and fetch concurrency
//   - Exit: exit code per final status level
//
// Defaults come from the `default` struct tags. Environment variables map to
// nested keys by replacing dots with underscores (SYNC_CREATE -> sync.create).
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Catalog.Root)
package config
