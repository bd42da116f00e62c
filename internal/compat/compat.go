// Package compat writes the per-executable compatibility-mode flags the game
// needs on modern Windows.
package compat

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/blackwell-systems/rebfix/internal/config"
	"github.com/blackwell-systems/rebfix/internal/logging"
	"github.com/blackwell-systems/rebfix/internal/platform"
)

// Configurator writes one compatibility entry per executable.
type Configurator struct {
	cfg   *config.Config
	log   *logging.Logger
	store platform.CompatibilityStore
}

// New creates a Configurator backed by store.
func New(cfg *config.Config, log *logging.Logger, store platform.CompatibilityStore) *Configurator {
	return &Configurator{cfg: cfg, log: log, store: store}
}

// Apply writes the configured compatibility flags for targetExe, keyed by its
// absolute path. Where the platform has no compatibility facility nothing is
// written and Apply succeeds.
func (c *Configurator) Apply(targetExe string) error {
	abs, err := filepath.Abs(targetExe)
	if err != nil {
		abs = targetExe
	}

	if err := c.store.SetLayers(abs, c.cfg.CompatibilityFlags); err != nil {
		if errors.Is(err, platform.ErrUnsupported) {
			c.log.Info("Compatibility settings not available on this platform")
			return nil
		}
		c.log.Warn("Could not set compatibility settings", "error", err)
		return fmt.Errorf("failed to set compatibility flags: %w", err)
	}

	c.log.Info("Set compatibility settings", "exe", abs, "flags", c.cfg.CompatibilityFlags)
	return nil
}
