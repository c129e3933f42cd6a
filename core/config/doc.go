// Package config provides configuration management for the results ingestion service.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults live next to each field in a `default` struct tag.
//
// # Configuration Structure
//
//   - Server: HTTP server settings (port, API key, JWT secret)
//   - Database: driver (mysql, postgres, sqlite) and connection details
//   - Storage: S3/MinIO credentials and bucket for standings snapshots
//   - Log: logging level and format
//   - Ingest: worker budget, conflict retry policy, transaction bounds, identifier types
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Ingest.Concurrency)
package config
