// Package platform exposes the operating-system facilities the installer
// touches (compatibility flags, shortcuts, elevation, process list, disk
// space, executable version metadata) behind small interfaces.
//
// New returns the implementation for the running OS. Windows gets the real
// registry, COM shortcut and UAC implementations; every other OS gets stubs
// that report ErrUnsupported, so business logic never branches on GOOS.
package platform

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by stub implementations.
var ErrUnsupported = errors.New("not supported on this platform")

// Shortcut is an OS shortcut file pointing at an executable.
type Shortcut struct {
	Path        string
	Target      string
	Arguments   string
	WorkingDir  string
	Description string
}

// CompatibilityStore persists per-executable compatibility-mode flags.
type CompatibilityStore interface {
	SetLayers(exePath, flags string) error
}

// ShortcutStore reads and writes shortcut files in the host format.
type ShortcutStore interface {
	// Extension is the file extension of shortcut files, e.g. ".lnk".
	Extension() string
	// Locations lists the directories scanned for existing shortcuts.
	Locations() []string
	// DesktopDir is where a new shortcut is created.
	DesktopDir() string
	Read(path string) (Shortcut, error)
	SetArguments(path, args string) error
	Create(sc Shortcut) error
}

// ElevationRequester reports and requests administrative rights.
type ElevationRequester interface {
	IsElevated() bool
	CanElevate() bool
	// Relaunch starts the current executable elevated with args. The caller
	// is expected to exit afterwards.
	Relaunch(args []string) error
}

// ProcessInspector queries the OS process list.
type ProcessInspector interface {
	IsRunning(ctx context.Context, imageName string) (bool, error)
}

// DiskInspector queries filesystem capacity.
type DiskInspector interface {
	FreeSpace(ctx context.Context, path string) (uint64, error)
}

// VersionReader reads embedded version metadata from an executable.
type VersionReader interface {
	FileVersion(path string) (string, error)
}

// Capabilities bundles one implementation of every facility.
type Capabilities struct {
	Compat    CompatibilityStore
	Shortcuts ShortcutStore
	Elevation ElevationRequester
	Processes ProcessInspector
	Disk      DiskInspector
	Versions  VersionReader
}

// New returns the capabilities for the running OS.
func New() *Capabilities {
	return &Capabilities{
		Compat:    newCompatibilityStore(),
		Shortcuts: newShortcutStore(),
		Elevation: newElevationRequester(),
		Processes: ProcessList{},
		Disk:      DiskUsage{},
		Versions:  PEVersionReader{},
	}
}
