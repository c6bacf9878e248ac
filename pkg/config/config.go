// Package config loads the storage core's environment-variable surface.
//
// graphstore and keycodec take their dependencies as constructor arguments
// and read no environment variables themselves; everything here configures
// the one thing that sits below those packages — which kv.Engine backs a
// Store and how it's tuned. All variables are prefixed STORECORE_.
//
// Example Usage:
//
//	cfg := config.LoadFromEnv()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("invalid config: %v", err)
//	}
//	engine, err := kv.NewBadgerEngineWithOptions(kv.BadgerOptions{
//		DataDir:    cfg.DataDir,
//		InMemory:   cfg.InMemory,
//		SyncWrites: cfg.SyncWrites,
//		LowMemory:  cfg.LowMemory,
//	})
//
// Environment Variables:
//   - STORECORE_DATA_DIR (default "./data/storecore")
//   - STORECORE_IN_MEMORY (default false)
//   - STORECORE_SYNC_WRITES (default false)
//   - STORECORE_LOW_MEMORY (default false)
package config

import (
	"fmt"
	"os"
	"strings"
)

// StorageConfig holds the settings needed to open a kv.Engine. It carries
// no server, auth, or decay knobs — those subsystems don't exist in this
// module.
type StorageConfig struct {
	// DataDir is the directory BadgerDB stores its files in. Ignored
	// when InMemory is true.
	DataDir string

	// InMemory runs the engine entirely in RAM, for tests and ephemeral
	// use.
	InMemory bool

	// SyncWrites forces an fsync after every write.
	SyncWrites bool

	// LowMemory reduces the engine's internal buffer sizes.
	LowMemory bool
}

// LoadFromEnv reads a StorageConfig from the STORECORE_-prefixed
// environment variables, falling back to defaults for anything unset.
func LoadFromEnv() *StorageConfig {
	return &StorageConfig{
		DataDir:    getEnv("STORECORE_DATA_DIR", "./data/storecore"),
		InMemory:   getEnvBool("STORECORE_IN_MEMORY", false),
		SyncWrites: getEnvBool("STORECORE_SYNC_WRITES", false),
		LowMemory:  getEnvBool("STORECORE_LOW_MEMORY", false),
	}
}

// Validate checks that the configuration is usable, returning an error
// describing the first problem found.
func (c *StorageConfig) Validate() error {
	if !c.InMemory && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: STORECORE_DATA_DIR must be set unless STORECORE_IN_MEMORY is true")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(val)
		return val == "true" || val == "1" || val == "yes" || val == "on"
	}
	return defaultVal
}
