package server_test

import (
	"testing"

	"results-ingest/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_AuthEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  server.Config
		want bool
	}{
		{"None", server.Config{}, false},
		{"ApiKey", server.Config{ApiKey: "k"}, true},
		{"JWT", server.Config{JWTSecret: "s"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.AuthEnabled())
		})
	}
}

func TestConfig_BodyLimit(t *testing.T) {
	assert.Equal(t, 32*1024*1024, server.Config{}.BodyLimit())
	assert.Equal(t, 4*1024*1024, server.Config{BodyLimitMB: 4}.BodyLimit())
}
