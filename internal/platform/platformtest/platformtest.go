// Package platformtest provides in-memory and on-disk fakes of the platform
// capabilities for tests.
package platformtest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blackwell-systems/rebfix/internal/platform"
)

// Fakes holds one fake per capability.
type Fakes struct {
	Compat    *Compat
	Shortcuts *Shortcuts
	Elevation *Elevation
	Processes *Processes
	Disk      *Disk
	Versions  *Versions
}

// New returns fakes with shortcut locations rooted under root: a Desktop
// directory and a Start Menu directory, both created. Free space defaults to
// 1 GiB and nothing is running.
func New(root string) *Fakes {
	desktop := filepath.Join(root, "Desktop")
	startMenu := filepath.Join(root, "Start Menu", "Programs")
	_ = os.MkdirAll(desktop, 0755)
	_ = os.MkdirAll(startMenu, 0755)

	return &Fakes{
		Compat:    &Compat{Entries: map[string]string{}},
		Shortcuts: &Shortcuts{Desktop: desktop, Dirs: []string{desktop, startMenu}},
		Elevation: &Elevation{Elevated: true},
		Processes: &Processes{},
		Disk:      &Disk{Free: 1 << 30},
		Versions:  &Versions{ByPath: map[string]string{}},
	}
}

// Capabilities wraps the fakes for injection.
func (f *Fakes) Capabilities() *platform.Capabilities {
	return &platform.Capabilities{
		Compat:    f.Compat,
		Shortcuts: f.Shortcuts,
		Elevation: f.Elevation,
		Processes: f.Processes,
		Disk:      f.Disk,
		Versions:  f.Versions,
	}
}

// Compat records compatibility writes.
type Compat struct {
	mu      sync.Mutex
	Entries map[string]string
	Err     error
}

func (c *Compat) SetLayers(exePath, flags string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.Entries[exePath] = flags
	return nil
}

// Len returns the number of recorded entries.
func (c *Compat) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Entries)
}

// Shortcuts stores shortcuts as small key=value text files with the .lnk
// extension, so discovery walks a real directory tree.
type Shortcuts struct {
	Desktop string
	Dirs    []string
	// FailSet makes SetArguments fail for these paths.
	FailSet map[string]bool
	// CreateErr makes Create fail.
	CreateErr error
}

func (s *Shortcuts) Extension() string { return ".lnk" }

func (s *Shortcuts) Locations() []string { return s.Dirs }

func (s *Shortcuts) DesktopDir() string { return s.Desktop }

func (s *Shortcuts) Read(path string) (platform.Shortcut, error) {
	f, err := os.Open(path)
	if err != nil {
		return platform.Shortcut{}, err
	}
	defer f.Close()

	sc := platform.Shortcut{Path: path}
	sawTarget := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			return platform.Shortcut{}, fmt.Errorf("malformed shortcut %s", path)
		}
		switch key {
		case "target":
			sc.Target = value
			sawTarget = true
		case "args":
			sc.Arguments = value
		case "workdir":
			sc.WorkingDir = value
		case "description":
			sc.Description = value
		}
	}
	if err := scanner.Err(); err != nil {
		return platform.Shortcut{}, err
	}
	if !sawTarget {
		return platform.Shortcut{}, errors.New("shortcut has no target")
	}
	return sc, nil
}

func (s *Shortcuts) SetArguments(path, args string) error {
	if s.FailSet[path] {
		return fmt.Errorf("cannot write %s", path)
	}
	sc, err := s.Read(path)
	if err != nil {
		return err
	}
	sc.Arguments = args
	return Write(sc)
}

func (s *Shortcuts) Create(sc platform.Shortcut) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	return Write(sc)
}

// Write persists sc at sc.Path in the fake shortcut format.
func Write(sc platform.Shortcut) error {
	if err := os.MkdirAll(filepath.Dir(sc.Path), 0755); err != nil {
		return err
	}
	content := fmt.Sprintf("target=%s\nargs=%s\nworkdir=%s\ndescription=%s\n",
		sc.Target, sc.Arguments, sc.WorkingDir, sc.Description)
	return os.WriteFile(sc.Path, []byte(content), 0644)
}

// Elevation records relaunch requests.
type Elevation struct {
	Elevated   bool
	Can        bool
	RelaunchFn func(args []string) error
	Relaunched [][]string
}

func (e *Elevation) IsElevated() bool { return e.Elevated }

func (e *Elevation) CanElevate() bool { return e.Can }

func (e *Elevation) Relaunch(args []string) error {
	e.Relaunched = append(e.Relaunched, args)
	if e.RelaunchFn != nil {
		return e.RelaunchFn(args)
	}
	return nil
}

// Processes reports a fixed set of running image names.
type Processes struct {
	Running []string
	Err     error
}

func (p *Processes) IsRunning(ctx context.Context, imageName string) (bool, error) {
	if p.Err != nil {
		return false, p.Err
	}
	for _, name := range p.Running {
		if strings.EqualFold(name, imageName) {
			return true, nil
		}
	}
	return false, nil
}

// Disk reports a fixed free-space value.
type Disk struct {
	Free uint64
	Err  error
}

func (d *Disk) FreeSpace(ctx context.Context, path string) (uint64, error) {
	if d.Err != nil {
		return 0, d.Err
	}
	if _, err := os.Stat(path); err != nil {
		return 0, err
	}
	return d.Free, nil
}

// Versions maps executable paths to versions. Unknown paths fail.
type Versions struct {
	mu     sync.Mutex
	ByPath map[string]string
}

// Set records the version reported for path.
func (v *Versions) Set(path, version string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ByPath[path] = version
}

func (v *Versions) FileVersion(path string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	version, ok := v.ByPath[path]
	if !ok {
		return "", errors.New("no version resource")
	}
	return version, nil
}
