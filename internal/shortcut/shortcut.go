// Package shortcut finds the shortcuts that launch the game and makes them
// carry the required launch flag.
package shortcut

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/rebfix/internal/config"
	"github.com/blackwell-systems/rebfix/internal/logging"
	"github.com/blackwell-systems/rebfix/internal/platform"
)

// Rewriter discovers, modifies and creates game shortcuts.
type Rewriter struct {
	cfg   *config.Config
	log   *logging.Logger
	store platform.ShortcutStore
}

// New creates a Rewriter backed by store.
func New(cfg *config.Config, log *logging.Logger, store platform.ShortcutStore) *Rewriter {
	return &Rewriter{cfg: cfg, log: log, store: store}
}

// Find scans the store's shortcut locations recursively and returns every
// shortcut whose target is targetExe, compared case-insensitively.
// Shortcuts that cannot be parsed are skipped.
func (r *Rewriter) Find(targetExe string) []platform.Shortcut {
	var found []platform.Shortcut
	ext := r.store.Extension()

	for _, location := range r.store.Locations() {
		if location == "" {
			continue
		}
		if _, err := os.Stat(location); err != nil {
			continue
		}

		_ = filepath.WalkDir(location, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subtree; keep walking siblings.
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ext) {
				return nil
			}

			sc, err := r.store.Read(path)
			if err != nil {
				return nil
			}
			if samePath(sc.Target, targetExe) {
				found = append(found, sc)
			}
			return nil
		})
	}

	r.log.Info("Found shortcuts", "count", len(found))
	return found
}

// Modify replaces the shortcut's arguments with args.
func (r *Rewriter) Modify(sc platform.Shortcut, args string) error {
	if err := r.store.SetArguments(sc.Path, args); err != nil {
		r.log.Error("Failed to modify shortcut", "path", sc.Path, "error", err)
		return err
	}
	r.log.Info("Modified shortcut", "path", sc.Path)
	return nil
}

// Create writes a new shortcut.
func (r *Rewriter) Create(sc platform.Shortcut) error {
	if err := r.store.Create(sc); err != nil {
		r.log.Error("Failed to create shortcut", "path", sc.Path, "error", err)
		return err
	}
	r.log.Info("Created shortcut", "path", sc.Path)
	return nil
}

// Apply sets the arguments of every shortcut targeting targetExe to exactly
// the launch flag, discarding whatever arguments were there. When no such
// shortcut exists one is created on the desktop. It returns the paths that
// were modified or created; individual failures are logged and skipped.
func (r *Rewriter) Apply(targetExe, workingDir string) []string {
	var touched []string

	shortcuts := r.Find(targetExe)
	for _, sc := range shortcuts {
		if err := r.Modify(sc, r.cfg.LaunchFlag); err != nil {
			continue
		}
		touched = append(touched, sc.Path)
	}

	if len(shortcuts) == 0 {
		sc := platform.Shortcut{
			Path:        filepath.Join(r.store.DesktopDir(), r.cfg.ShortcutName),
			Target:      targetExe,
			Arguments:   r.cfg.LaunchFlag,
			WorkingDir:  workingDir,
			Description: r.cfg.ShortcutDescription,
		}
		if err := r.Create(sc); err == nil {
			touched = append(touched, sc.Path)
		}
	}

	return touched
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(filepath.Clean(a), filepath.Clean(b))
}
