package layout

import (
	"sync/atomic"

	"github.com/wippyai/binlayout/config"
)

var current atomic.Pointer[config.Config]

// CurrentConfig returns the configuration consulted by the factory and by
// new instances. It never returns nil.
func CurrentConfig() *config.Config {
	if cfg := current.Load(); cfg != nil {
		return cfg
	}
	return config.DefaultConfig()
}

// SetConfig replaces the package configuration. A nil config restores the
// defaults.
func SetConfig(cfg *config.Config) {
	current.Store(cfg)
}
