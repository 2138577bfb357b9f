package restrouter_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/restrouter"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "restrouter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_defaults(t *testing.T) {
	t.Setenv("RESTROUTER_CONFIG", "")
	t.Chdir(t.TempDir())

	cfg, err := restrouter.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, restrouter.DefaultConfig(), *cfg)
}

func TestLoadConfig_yaml_file(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
serialization:
  default: application/yaml
  media_types: [application/json, application/yaml, application/cbor]
rate_limit:
  rate: 10
  burst: 20
log:
  level: debug
  format: json
`)

	cfg, err := restrouter.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/metrics", cfg.Server.MetricsPath)
	assert.Equal(t, "application/yaml", cfg.Serialization.Default)
	assert.InDelta(t, 10, cfg.RateLimit.Rate, 0)
	assert.Equal(t, 20, cfg.RateLimit.Burst)

	reg, err := cfg.Registry()
	require.NoError(t, err)
	assert.Equal(t, []string{"application/json", "application/yaml", "application/cbor"}, reg.SupportedMediaTypes())
	assert.Equal(t, "application/yaml", reg.DefaultContentType())
}

func TestLoadConfig_env_overrides(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":9090\"\n")
	t.Setenv("RESTROUTER_ADDR", ":7070")
	t.Setenv("RESTROUTER_MEDIA_TYPES", "text/xml, application/json")
	t.Setenv("RESTROUTER_DEFAULT_TYPE", "text/xml")
	t.Setenv("RESTROUTER_RATE_LIMIT", "2.5")
	t.Setenv("RESTROUTER_RATE_BURST", "5")
	t.Setenv("RESTROUTER_LOG_LEVEL", "warn")

	cfg, err := restrouter.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, []string{"text/xml", "application/json"}, cfg.Serialization.MediaTypes)
	assert.Equal(t, "text/xml", cfg.Serialization.Default)
	assert.InDelta(t, 2.5, cfg.RateLimit.Rate, 0)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfig_errors(t *testing.T) {
	tests := map[string]struct {
		body    string
		env     map[string]string
		wantErr string
	}{
		"default not registered": {
			body:    "serialization:\n  default: application/yaml\n",
			wantErr: "serialization.default",
		},
		"unsupported media type": {
			body:    "serialization:\n  media_types: [application/json, text/csv]\n",
			wantErr: "unsupported media type",
		},
		"burst required with rate": {
			body:    "rate_limit:\n  rate: 5\n",
			wantErr: "rate_limit.burst",
		},
		"bad log level": {
			body:    "log:\n  level: loud\n",
			wantErr: "log.level",
		},
		"bad log format": {
			body:    "log:\n  format: xml\n",
			wantErr: "log.format",
		},
		"bad yaml": {
			body:    "server: [",
			wantErr: "parsing config file",
		},
		"bad env number": {
			env:     map[string]string{"RESTROUTER_RATE_LIMIT": "fast"},
			wantErr: "RESTROUTER_RATE_LIMIT",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := restrouter.LoadConfig(writeConfig(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadConfig_missing_file(t *testing.T) {
	_, err := restrouter.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestConfig_NewLogger(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		log      restrouter.LogConfig
		wantSub  string
		wantNone bool
	}{
		"json": {log: restrouter.LogConfig{Level: "info", Format: "json"}, wantSub: `"msg":"hello"`},
		"text": {log: restrouter.LogConfig{Level: "info", Format: "text"}, wantSub: "msg=hello"},
		"filtered by level": {
			log:      restrouter.LogConfig{Level: "error", Format: "text"},
			wantNone: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := restrouter.DefaultConfig()
			cfg.Log = tc.log

			var buf bytes.Buffer
			cfg.NewLogger(&buf).Info("hello")
			if tc.wantNone {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), tc.wantSub)
		})
	}
}
