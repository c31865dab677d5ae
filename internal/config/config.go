// Package config loads the ccond CLI configuration from defaults, an
// optional TOML file and CCOND_-prefixed environment variables, in that
// priority order.
package config

// Config is the root configuration.
type Config struct {
	Store StoreConfig `mapstructure:"store"`
}

// StoreConfig configures the named condition/fulfillment store.
type StoreConfig struct {
	// Backend selects the key-value engine: "bbolt" or "pebble".
	Backend string `mapstructure:"backend"`

	// Path is the store file (bbolt) or directory (pebble).
	Path string `mapstructure:"path"`

	// CacheSize is the number of decoded records kept in memory.
	CacheSize int `mapstructure:"cache_size"`

	// CompressionThreshold is the encoded-record size in bytes at which lz4
	// compression kicks in; 0 disables compression.
	CompressionThreshold int `mapstructure:"compression_threshold"`
}

// Supported store backends.
const (
	BackendBBolt  = "bbolt"
	BackendPebble = "pebble"
)
