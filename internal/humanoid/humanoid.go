// internal/humanoid/humanoid.go
package humanoid

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-humanoid/internal/observability"
)

// Humanoid performs primitive page actions with human-like timing and motion.
// It keeps no state between calls other than its random source, so a single
// instance is meant to be driven by one caller at a time.
type Humanoid struct {
	config Config
	logger *zap.Logger
	driver Driver
	rng    *lockedSource
}

// New creates and initializes a new Humanoid instance.
func New(config Config, logger *zap.Logger, driver Driver) *Humanoid {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Humanoid{
		config: config,
		logger: logger.Named("humanoid"),
		driver: driver,
		rng:    newLockedSource(config.Rng),
	}
}

// NewTestHumanoid creates a Humanoid instance with deterministic dependencies for testing.
func NewTestHumanoid(driver Driver, seed int64) *Humanoid {
	config := DefaultConfig()
	config.Rng = NewSeededSource(seed)
	return New(config, zap.NewNop(), driver)
}

// Config returns a copy of the engine configuration.
func (h *Humanoid) Config() Config {
	return h.config
}

func (h *Humanoid) log(label string, category observability.Category) *zap.Logger {
	return observability.Tagged(h.logger, label, category)
}
