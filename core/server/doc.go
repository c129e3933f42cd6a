// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structure for the listener port, the credentials
// accepted by the auth middleware, and the upload size limit.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server settings
// and by cmd/start to configure fiber.
package server
