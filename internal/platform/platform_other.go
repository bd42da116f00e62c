//go:build !windows

package platform

import (
	"os"
	"path/filepath"
)

func newCompatibilityStore() CompatibilityStore { return unsupportedCompat{} }

func newShortcutStore() ShortcutStore { return unsupportedShortcuts{} }

func newElevationRequester() ElevationRequester { return noElevation{} }

type unsupportedCompat struct{}

func (unsupportedCompat) SetLayers(exePath, flags string) error { return ErrUnsupported }

// unsupportedShortcuts has no locations to scan and cannot write shortcuts.
type unsupportedShortcuts struct{}

func (unsupportedShortcuts) Extension() string { return ".lnk" }

func (unsupportedShortcuts) Locations() []string { return nil }

func (unsupportedShortcuts) DesktopDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "Desktop"
	}
	return filepath.Join(home, "Desktop")
}

func (unsupportedShortcuts) Read(path string) (Shortcut, error) { return Shortcut{}, ErrUnsupported }

func (unsupportedShortcuts) SetArguments(path, args string) error { return ErrUnsupported }

func (unsupportedShortcuts) Create(sc Shortcut) error { return ErrUnsupported }

// noElevation treats the process as already privileged; filesystem
// permission checks are the only gate.
type noElevation struct{}

func (noElevation) IsElevated() bool { return true }

func (noElevation) CanElevate() bool { return false }

func (noElevation) Relaunch(args []string) error { return ErrUnsupported }
