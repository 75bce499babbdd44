package types

import "errors"

// Config holds backend selection and parameters for Store.Attach and the
// helixctl CLI.
// Implements: prd004-snapshot-store R1.
type Config struct {
	Backend       string `json:"backend" yaml:"backend"`
	DataDir       string `json:"data_dir" yaml:"data_dir"`
	Levels        int    `json:"levels" yaml:"levels"`
	CacheCapacity int    `json:"cache_capacity" yaml:"cache_capacity"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors (prd004-snapshot-store R1.4).
var (
	ErrBackendEmpty         = errors.New("backend must not be empty")
	ErrBackendUnknown       = errors.New("unknown backend")
	ErrLevelsInvalid        = errors.New("levels must be positive")
	ErrCacheCapacityInvalid = errors.New("cache capacity must be positive")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. Zero Levels and
// CacheCapacity mean "use the defaults"; negative values are rejected.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Levels < 0 {
		return ErrLevelsInvalid
	}
	if c.CacheCapacity < 0 {
		return ErrCacheCapacityInvalid
	}
	return nil
}
