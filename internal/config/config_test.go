package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	conf, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", conf.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, conf.Backend.Timeout)
	assert.Equal(t, "sqlite", conf.Store.Driver)
	assert.Equal(t, "decrement", conf.Deals.ClaimPolicy)
	assert.Equal(t, "manual", conf.Verification.Mode)
	assert.Equal(t, "GreenPlate", conf.Payment.MerchantName)
	assert.Equal(t, "#10B981", conf.Payment.ThemeColor)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: https://api.greenplate.test
  timeout: 3s
deals:
  claim_policy: single
store:
  driver: postgres
  host: db
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.greenplate.test", conf.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, conf.Backend.Timeout)
	assert.Equal(t, "single", conf.Deals.ClaimPolicy)
	assert.Equal(t, "postgres", conf.Store.Driver)
	assert.Equal(t, "db", conf.Store.Host)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "backend:\n  base_url: http://from-file\n")
	t.Setenv("GREENPLATE_BACKEND_BASE_URL", "http://from-env")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/gp")

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env", conf.Backend.BaseURL)
	assert.Equal(t, "postgres://u:p@localhost:5432/gp", conf.Store.URL)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"store driver", "store:\n  driver: mysql\n", ErrInvalidStoreDriver},
		{"claim policy", "deals:\n  claim_policy: many\n", ErrInvalidClaimPolicy},
		{"verification mode", "verification:\n  mode: scan\n", ErrInvalidVerificationMode},
		{"timeout", "backend:\n  timeout: 0s\n", ErrNonPositiveBackendTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWatch_ReportsNewLogLevel(t *testing.T) {
	path := writeConfig(t, "app:\n  log_level: info\n")

	levels := make(chan string, 8)
	Watch(path, func(level string) { levels <- level })

	require.NoError(t, os.WriteFile(path, []byte("app:\n  log_level: warn\n"), 0o600))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case level := <-levels:
			if level == "warn" {
				return
			}
		case <-deadline:
			t.Fatal("log level change was not reported")
		}
	}
}

func TestWatch_MissingFileIsIgnored(t *testing.T) {
	called := false
	Watch(filepath.Join(t.TempDir(), "missing.yml"), func(string) { called = true })

	assert.False(t, called)
}
