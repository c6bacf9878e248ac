package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearStorecoreEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"STORECORE_DATA_DIR",
		"STORECORE_IN_MEMORY",
		"STORECORE_SYNC_WRITES",
		"STORECORE_LOW_MEMORY",
	}
	for _, k := range keys {
		prev, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, prev)
			}
		})
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	clearStorecoreEnv(t)

	cfg := LoadFromEnv()

	assert.Equal(t, "./data/storecore", cfg.DataDir)
	assert.False(t, cfg.InMemory)
	assert.False(t, cfg.SyncWrites)
	assert.False(t, cfg.LowMemory)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	clearStorecoreEnv(t)

	tests := []struct {
		name string
		env  map[string]string
		want StorageConfig
	}{
		{
			name: "custom data dir",
			env:  map[string]string{"STORECORE_DATA_DIR": "/var/lib/storecore"},
			want: StorageConfig{DataDir: "/var/lib/storecore"},
		},
		{
			name: "booleans accept common truthy spellings",
			env: map[string]string{
				"STORECORE_DATA_DIR":    "/tmp/storecore",
				"STORECORE_IN_MEMORY":   "yes",
				"STORECORE_SYNC_WRITES": "1",
				"STORECORE_LOW_MEMORY":  "ON",
			},
			want: StorageConfig{
				DataDir:    "/tmp/storecore",
				InMemory:   true,
				SyncWrites: true,
				LowMemory:  true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearStorecoreEnv(t)
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			cfg := LoadFromEnv()
			if tt.want.DataDir != "" {
				assert.Equal(t, tt.want.DataDir, cfg.DataDir)
			}
			assert.Equal(t, tt.want.InMemory, cfg.InMemory)
			assert.Equal(t, tt.want.SyncWrites, cfg.SyncWrites)
			assert.Equal(t, tt.want.LowMemory, cfg.LowMemory)
		})
	}
}

func TestValidate(t *testing.T) {
	clearStorecoreEnv(t)

	require.NoError(t, (&StorageConfig{InMemory: true}).Validate())
	require.NoError(t, (&StorageConfig{DataDir: "./data"}).Validate())
	require.Error(t, (&StorageConfig{DataDir: "  "}).Validate())
}
