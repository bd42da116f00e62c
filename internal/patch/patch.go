// Package patch copies the community fix binaries onto a game installation
// and optionally moves the briefing files aside.
package patch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/rebfix/internal/backup"
	"github.com/blackwell-systems/rebfix/internal/config"
	"github.com/blackwell-systems/rebfix/internal/fsutil"
	"github.com/blackwell-systems/rebfix/internal/logging"
	"github.com/blackwell-systems/rebfix/internal/probe"
)

// SidecarSuffix is appended to briefing files renamed aside. Restore looks
// for the same suffix.
const SidecarSuffix = backup.SidecarSuffix

// MissingFileError names a patch file found in neither source location.
type MissingFileError struct {
	File string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("patch file not found: %s", e.File)
}

// Applier installs patch files from a source directory into a target.
type Applier struct {
	cfg       *config.Config
	log       *logging.Logger
	probe     *probe.Probe
	sourceDir string
	targetDir string
}

// New creates an Applier. sourceDir is where the patch files ship, usually
// the installer's own directory.
func New(cfg *config.Config, log *logging.Logger, p *probe.Probe, sourceDir, targetDir string) *Applier {
	return &Applier{
		cfg:       cfg,
		log:       log,
		probe:     p,
		sourceDir: sourceDir,
		targetDir: targetDir,
	}
}

// Resolve returns the source path for a patch file: the file itself in the
// source directory, or its renamed copy under the assets directory.
func (a *Applier) Resolve(filename string) (string, bool) {
	direct := filepath.Join(a.sourceDir, filename)
	if fsutil.Exists(direct) {
		return direct, true
	}

	assetName, ok := a.cfg.AssetNames[filename]
	if !ok {
		assetName = filename
	}
	asset := filepath.Join(a.sourceDir, a.cfg.AssetsDir, assetName)
	if fsutil.Exists(asset) {
		return asset, true
	}
	return "", false
}

// CheckPatchFiles verifies every patch file can be resolved. The error is a
// *MissingFileError naming the first file that cannot.
func (a *Applier) CheckPatchFiles() error {
	for _, filename := range a.cfg.PatchFiles {
		if _, ok := a.Resolve(filename); !ok {
			a.log.Error("Patch file not found", "file", filename)
			return &MissingFileError{File: filename}
		}
	}
	a.log.Info("All patch files found")
	return nil
}

// Install copies every patch file onto the target and checks each
// destination exists afterwards.
//
// The executable version is probed once the copies finish. A version below
// the patched threshold is logged as a warning only; the install still
// counts as successful.
func (a *Applier) Install() error {
	if err := a.CheckPatchFiles(); err != nil {
		return err
	}

	for _, filename := range a.cfg.PatchFiles {
		src, ok := a.Resolve(filename)
		if !ok {
			return &MissingFileError{File: filename}
		}

		dst := filepath.Join(a.targetDir, filename)
		if err := fsutil.CopyFile(src, dst); err != nil {
			a.log.Error("Failed to install patch files", "file", filename, "error", err)
			return fmt.Errorf("failed to copy %s: %w", filename, err)
		}
		if !fsutil.Exists(dst) {
			a.log.Error("Failed to install patch files", "file", filename)
			return fmt.Errorf("failed to copy %s: destination missing", filename)
		}
		a.log.Info("Installed", "file", filename)
	}

	if !a.probe.IsAlreadyPatched(a.targetDir) {
		a.log.Warn("Patch installation may not have completed correctly")
	}

	a.log.Info("All patch files installed successfully")
	return nil
}

// RemoveBriefings renames each present briefing file to <name>.backup and
// returns the names it moved. Files already moved are skipped.
func (a *Applier) RemoveBriefings() ([]string, error) {
	var moved []string
	for _, filename := range a.cfg.BriefingFiles {
		path := filepath.Join(a.targetDir, filename)
		if !fsutil.Exists(path) {
			continue
		}
		if err := os.Rename(path, path+SidecarSuffix); err != nil {
			a.log.Error("Failed to remove briefing files", "file", filename, "error", err)
			return moved, fmt.Errorf("failed to rename %s: %w", filename, err)
		}
		moved = append(moved, filename)
		a.log.Info("Removed briefing file", "file", filename)
	}
	return moved, nil
}
