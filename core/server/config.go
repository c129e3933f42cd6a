package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// JWTSecret verifies HS256 bearer tokens. Empty disables bearer auth.
	JWTSecret string `mapstructure:"jwt_secret" default:""`
	// BodyLimitMB bounds the size of an uploaded feed.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"32"`
}

// AuthEnabled reports whether any credential is configured.
func (c Config) AuthEnabled() bool {
	return c.ApiKey != "" || c.JWTSecret != ""
}

// BodyLimit returns the request body limit in bytes.
func (c Config) BodyLimit() int {
	if c.BodyLimitMB <= 0 {
		return 32 * 1024 * 1024
	}
	return c.BodyLimitMB * 1024 * 1024
}
