package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRPContextTable(t *testing.T) {
	tests := []struct {
		name           string
		scheme         string
		host           string
		expectedOrigin string
		expectedRpID   string
	}{
		{"loopback ip normalizes to localhost", "http", "127.0.0.1:8002", "http://127.0.0.1:8002", "localhost"},
		{"localhost with port", "http", "localhost:8002", "http://localhost:8002", "localhost"},
		{"public host with port", "https", "example.com:8080", "https://example.com:8080", "example.com"},
		{"public host without port", "https", "example.com", "https://example.com", "example.com"},
		{"localhost without port", "http", "localhost", "http://localhost", "localhost"},
		{"uppercase host", "https", "EXAMPLE.com:443", "https://EXAMPLE.com:443", "example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rp := ResolveRPContext(tt.scheme, tt.host)
			assert.Equal(t, tt.expectedOrigin, rp.Origin)
			assert.Equal(t, tt.expectedRpID, rp.RpID)
		})
	}
}

func TestResolveRPContextDeterministic(t *testing.T) {
	first := ResolveRPContext("http", "localhost:8002")
	second := ResolveRPContext("http", "localhost:8002")
	assert.Equal(t, first, second)
}
