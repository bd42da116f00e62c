// Package probe locates game installations and inspects the environment
// around them: executable version, write permission, free space and whether
// the game is running.
package probe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blackwell-systems/rebfix/internal/config"
	"github.com/blackwell-systems/rebfix/internal/logging"
	"github.com/blackwell-systems/rebfix/internal/platform"
)

// ProcessQueryTimeout bounds the process-list query.
const ProcessQueryTimeout = 10 * time.Second

// Variant classifies an installation by distribution channel.
type Variant string

const (
	VariantOriginal Variant = "original"
	VariantGOG      Variant = "gog"
	VariantSteam    Variant = "steam"
)

// Target is a directory believed to contain the game.
type Target struct {
	Path    string
	Valid   bool
	Variant Variant
}

// IsSteam reports whether the target was classified as a Steam install.
func (t Target) IsSteam() bool {
	return t.Variant == VariantSteam
}

// Probe inspects candidate installations.
type Probe struct {
	cfg       *config.Config
	log       *logging.Logger
	versions  platform.VersionReader
	processes platform.ProcessInspector
	disk      platform.DiskInspector
}

// New creates a Probe.
func New(cfg *config.Config, log *logging.Logger, caps *platform.Capabilities) *Probe {
	return &Probe{
		cfg:       cfg,
		log:       log,
		versions:  caps.Versions,
		processes: caps.Processes,
		disk:      caps.Disk,
	}
}

// ExePath returns the designated executable path inside dir.
func (p *Probe) ExePath(dir string) string {
	return filepath.Join(dir, p.cfg.GameExe)
}

// FindInstallation returns the first candidate path, in configured order,
// that holds the game executable.
func (p *Probe) FindInstallation() (Target, bool) {
	p.log.Info("Searching for game installation...")

	for _, candidate := range p.cfg.CandidatePaths {
		if fileExists(p.ExePath(candidate)) {
			p.log.Info("Found game", "path", candidate)
			return Target{Path: candidate, Valid: true, Variant: Classify(candidate)}, true
		}
	}

	p.log.Info("Game not found in common paths")
	return Target{}, false
}

// Validate resolves path into a Target. The target is valid iff the game
// executable exists directly under path.
func (p *Probe) Validate(path string) Target {
	t := Target{Path: path, Variant: Classify(path)}

	if !fileExists(p.ExePath(path)) {
		p.log.Error("Game executable not found", "exe", p.cfg.GameExe, "path", path)
		return t
	}

	t.Valid = true
	p.log.Info("Valid game installation found", "path", path)
	if t.IsSteam() {
		p.log.Info("Steam version detected")
	}
	return t
}

// Classify infers the distribution variant from path text only.
func Classify(path string) Variant {
	lower := strings.ToLower(path)
	switch {
	case strings.Contains(lower, "steam"):
		return VariantSteam
	case strings.Contains(lower, "gog"):
		return VariantGOG
	default:
		return VariantOriginal
	}
}

// Version returns the game executable's "major.minor" version, or "" if it
// cannot be read for any reason.
func (p *Probe) Version(dir string) string {
	v, err := p.versions.FileVersion(p.ExePath(dir))
	if err != nil {
		return ""
	}
	return v
}

// IsAlreadyPatched reports whether the executable version is at or above the
// patched threshold. The comparison is a plain string comparison, which is
// only meaningful for the two-part dotted versions the game ships with.
func (p *Probe) IsAlreadyPatched(dir string) bool {
	v := p.Version(dir)
	if v == "" {
		return false
	}
	if v >= p.cfg.PatchedVersion {
		p.log.Info("Game appears to be already patched", "version", v)
		return true
	}
	return false
}

// CheckPermissions reports whether a file can be created and removed in dir.
func (p *Probe) CheckPermissions(dir string) bool {
	testFile := filepath.Join(dir, "write_test.tmp")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return false
	}
	return os.Remove(testFile) == nil
}

// FreeSpace returns free bytes on the filesystem holding dir, or 0 when the
// query fails.
func (p *Probe) FreeSpace(dir string) uint64 {
	free, err := p.disk.FreeSpace(context.Background(), dir)
	if err != nil {
		return 0
	}
	return free
}

// IsGameRunning reports whether the game executable is in the process list.
// A failed or timed-out query counts as not running.
func (p *Probe) IsGameRunning() bool {
	ctx, cancel := context.WithTimeout(context.Background(), ProcessQueryTimeout)
	defer cancel()

	running, err := p.processes.IsRunning(ctx, p.cfg.GameExe)
	if err != nil {
		p.log.Warn("Could not query process list", "error", err)
		return false
	}
	return running
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
