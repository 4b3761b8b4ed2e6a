package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DATA_DIR", "STORAGE_DRIVER", "SYNC_MODE", "SYNC_TIMEOUT", "SYNC_RETRY_MAX", "DEFAULT_PAN"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "file", cfg.StorageDriver)
	assert.Equal(t, SyncNone, cfg.SyncMode)
	assert.Equal(t, 30*time.Second, cfg.SyncTimeout)
	assert.Equal(t, 3, cfg.SyncRetryMax)
	assert.Equal(t, "51825823", cfg.DefaultPAN)
	assert.Equal(t, "Invoices", cfg.GoogleSheetWorksheet)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"STORAGE_DRIVER": "mongo"}},
		{name: "postgres without dsn", env: map[string]string{"STORAGE_DRIVER": "postgres", "DATABASE_DSN": ""}},
		{name: "apps script without url", env: map[string]string{"SYNC_MODE": "appsscript", "APPS_SCRIPT_URL": ""}},
		{name: "sheets without url", env: map[string]string{"SYNC_MODE": "sheets", "GOOGLE_SHEET_URL": ""}},
		{name: "bad timeout", env: map[string]string{"SYNC_TIMEOUT": "soon"}},
		{name: "unknown sync mode", env: map[string]string{"SYNC_MODE": "ftp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGoogleCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600))

	cfg := &Config{GoogleCredentialsFile: path, GoogleCredentialsJSON: "ignored"}
	creds, err := cfg.GoogleCredentials()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"service_account"}`, string(creds))

	cfg = &Config{GoogleCredentialsJSON: `{"inline":true}`}
	creds, err = cfg.GoogleCredentials()
	require.NoError(t, err)
	assert.Equal(t, `{"inline":true}`, string(creds))
}
