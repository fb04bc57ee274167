package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNetAddress_String tests the String method of NetAddress
func TestNetAddress_String(t *testing.T) {
	tests := []struct {
		name     string
		addr     NetAddress
		expected string
	}{
		{name: "empty address", addr: NetAddress{}, expected: ""},
		{name: "localhost with port", addr: NetAddress{Host: "localhost", Port: 8080}, expected: "localhost:8080"},
		{name: "IP address with port", addr: NetAddress{Host: "127.0.0.1", Port: 9090}, expected: "127.0.0.1:9090"},
		{name: "only port no host", addr: NetAddress{Host: "", Port: 8080}, expected: ":8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.addr.String())
		})
	}
}

// TestNetAddress_Set tests parsing of host:port values
func TestNetAddress_Set(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    NetAddress
		wantErr bool
	}{
		{name: "localhost", input: "localhost:8080", want: NetAddress{Host: "localhost", Port: 8080}},
		{name: "ip", input: "127.0.0.1:9090", want: NetAddress{Host: "127.0.0.1", Port: 9090}},
		{name: "all interfaces", input: ":8080", want: NetAddress{Port: 8080}},
		{name: "missing port", input: "localhost", wantErr: true},
		{name: "non-numeric port", input: "localhost:abc", wantErr: true},
		{name: "zero port", input: "localhost:0", wantErr: true},
		{name: "port out of range", input: "localhost:70000", wantErr: true},
		{name: "hostname is not an ip", input: "example.com:80", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var addr NetAddress
			err := addr.Set(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, addr)
		})
	}
}

// TestParseFlags tests the ParseFlags function
func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		validate func(t *testing.T, cfg *StructuredConfig)
	}{
		{
			name: "all flags set",
			args: []string{
				"-a", "localhost:8080",
				"-r", "http://localhost:8080",
				"-f", "/var/data",
				"-d", "/var/lib/kharcha/local.db",
				"-c", "/path/to/config.json",
				"-token-sign-key", "jwt_secret",
				"-token-issuer", "test_issuer",
				"-token-duration", "1h",
				"-request-timeout", "30s",
				"-hash-key", "security_hash",
				"-log-file", "/tmp/kharcha.log",
				"-sync-disabled",
				"-sync-interval", "3m",
				"-probe-interval", "20s",
			},
			validate: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddress)
				assert.Equal(t, "http://localhost:8080", cfg.Adapter.HTTPAddress)
				assert.Equal(t, "/var/data", cfg.Storage.Files.Dir)
				assert.Equal(t, "/var/lib/kharcha/local.db", cfg.Storage.DB.DSN)
				assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)
				assert.Equal(t, "jwt_secret", cfg.App.TokenSignKey)
				assert.Equal(t, "test_issuer", cfg.App.TokenIssuer)
				assert.Equal(t, time.Hour, cfg.App.TokenDuration)
				assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
				assert.Equal(t, 30*time.Second, cfg.Adapter.RequestTimeout)
				assert.Equal(t, "security_hash", cfg.App.HashKey)
				assert.Equal(t, "/tmp/kharcha.log", cfg.App.LogFile)
				assert.True(t, cfg.App.SyncDisabled)
				assert.Equal(t, 3*time.Minute, cfg.Workers.SyncInterval)
				assert.Equal(t, 20*time.Second, cfg.Workers.ProbeInterval)
			},
		},
		{
			name: "config alias flag",
			args: []string{"-config", "/path/to/config.json"},
			validate: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)
			},
		},
		{
			name: "no flags",
			args: []string{},
			validate: func(t *testing.T, cfg *StructuredConfig) {
				assert.Empty(t, cfg.Server.HTTPAddress)
				assert.Empty(t, cfg.Adapter.HTTPAddress)
				assert.Empty(t, cfg.Storage.DB.DSN)
				assert.Empty(t, cfg.Storage.Files.Dir)
				assert.Empty(t, cfg.JSONFilePath)
				assert.False(t, cfg.App.SyncDisabled)
				assert.Zero(t, cfg.App.TokenDuration)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args...)

			cfg, err := ParseFlags()
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

// TestParseFlags_InvalidValues tests that malformed values are reported
// instead of exiting the process.
func TestParseFlags_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "invalid server address format", args: []string{"-a", "invalid"}},
		{name: "invalid port in server address", args: []string{"-a", "localhost:abc"}},
		{name: "invalid duration", args: []string{"-sync-interval", "often"}},
		{name: "unknown flag", args: []string{"-grpc-address", "localhost:9090"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args...)

			cfg, err := ParseFlags()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
