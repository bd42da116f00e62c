package shortcut

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/blackwell-systems/rebfix/internal/config"
	"github.com/blackwell-systems/rebfix/internal/logging"
	"github.com/blackwell-systems/rebfix/internal/platform"
	"github.com/blackwell-systems/rebfix/internal/platform/platformtest"
)

func setup(t *testing.T) (*Rewriter, *platformtest.Shortcuts, string) {
	t.Helper()
	root := t.TempDir()
	fakes := platformtest.New(root)
	exe := filepath.Join(root, "game", "REBEXE.exe")
	return New(config.Defaults(), logging.Discard(), fakes.Shortcuts), fakes.Shortcuts, exe
}

func mustWrite(t *testing.T, sc platform.Shortcut) {
	t.Helper()
	if err := platformtest.Write(sc); err != nil {
		t.Fatalf("Failed to write shortcut: %v", err)
	}
}

func TestFind(t *testing.T) {
	r, store, exe := setup(t)

	mustWrite(t, platform.Shortcut{Path: filepath.Join(store.Desktop, "Rebellion.lnk"), Target: exe})
	// Case differs from the executable path.
	mustWrite(t, platform.Shortcut{
		Path:   filepath.Join(store.Dirs[1], "LucasArts", "Rebellion", "Play.lnk"),
		Target: strings.ToUpper(exe),
	})
	mustWrite(t, platform.Shortcut{Path: filepath.Join(store.Desktop, "Other.lnk"), Target: "/games/other.exe"})
	// Unparsable.
	os.WriteFile(filepath.Join(store.Desktop, "Broken.lnk"), []byte("garbage"), 0644)
	// Wrong extension.
	os.WriteFile(filepath.Join(store.Desktop, "notes.txt"), []byte("target="+exe), 0644)

	found := r.Find(exe)
	if len(found) != 2 {
		t.Fatalf("Find() returned %d shortcuts, want 2: %+v", len(found), found)
	}

	var names []string
	for _, sc := range found {
		names = append(names, filepath.Base(sc.Path))
	}
	sort.Strings(names)
	if names[0] != "Play.lnk" || names[1] != "Rebellion.lnk" {
		t.Errorf("found %v, want [Play.lnk Rebellion.lnk]", names)
	}
}

func TestFind_MissingLocations(t *testing.T) {
	r, store, exe := setup(t)
	store.Dirs = append(store.Dirs, filepath.Join(t.TempDir(), "does-not-exist"), "")

	if found := r.Find(exe); len(found) != 0 {
		t.Errorf("Find() = %v, want none", found)
	}
}

func TestApply_CreatesDesktopShortcut(t *testing.T) {
	r, store, exe := setup(t)

	touched := r.Apply(exe, filepath.Dir(exe))
	if len(touched) != 1 {
		t.Fatalf("Apply() touched %v, want exactly one created shortcut", touched)
	}

	want := filepath.Join(store.Desktop, "Star Wars Rebellion.lnk")
	if touched[0] != want {
		t.Errorf("created %s, want %s", touched[0], want)
	}

	sc, err := store.Read(want)
	if err != nil {
		t.Fatalf("Failed to read created shortcut: %v", err)
	}
	if sc.Target != exe || sc.Arguments != "-w" || sc.WorkingDir != filepath.Dir(exe) {
		t.Errorf("created shortcut = %+v", sc)
	}
}

func TestApply_OverwritesExistingArguments(t *testing.T) {
	r, store, exe := setup(t)

	paths := []string{
		filepath.Join(store.Desktop, "A.lnk"),
		filepath.Join(store.Dirs[1], "B.lnk"),
		filepath.Join(store.Dirs[1], "Games", "C.lnk"),
	}
	prior := []string{"", "-nosound -window", "-w"}
	for i, p := range paths {
		mustWrite(t, platform.Shortcut{Path: p, Target: exe, Arguments: prior[i], WorkingDir: "keep"})
	}

	touched := r.Apply(exe, filepath.Dir(exe))
	if len(touched) != len(paths) {
		t.Fatalf("Apply() touched %d shortcuts, want %d", len(touched), len(paths))
	}

	for _, p := range paths {
		sc, err := store.Read(p)
		if err != nil {
			t.Fatalf("Failed to read %s: %v", p, err)
		}
		// Prior arguments are discarded, not merged.
		if sc.Arguments != "-w" {
			t.Errorf("%s arguments = %q, want exactly \"-w\"", filepath.Base(p), sc.Arguments)
		}
		if sc.WorkingDir != "keep" {
			t.Errorf("%s working dir changed to %q", filepath.Base(p), sc.WorkingDir)
		}
	}

	if _, err := os.Stat(filepath.Join(store.Desktop, "Star Wars Rebellion.lnk")); !os.IsNotExist(err) {
		t.Error("no shortcut should be created when existing ones were found")
	}
}

func TestApply_PerItemFailuresAreSkipped(t *testing.T) {
	r, store, exe := setup(t)

	good := filepath.Join(store.Desktop, "Good.lnk")
	bad := filepath.Join(store.Desktop, "Bad.lnk")
	mustWrite(t, platform.Shortcut{Path: good, Target: exe})
	mustWrite(t, platform.Shortcut{Path: bad, Target: exe, Arguments: "-old"})
	store.FailSet = map[string]bool{bad: true}

	touched := r.Apply(exe, filepath.Dir(exe))
	if len(touched) != 1 || touched[0] != good {
		t.Errorf("Apply() touched %v, want only %s", touched, good)
	}
}

func TestApply_CreateFailure(t *testing.T) {
	r, store, exe := setup(t)
	store.CreateErr = errors.New("access denied")

	if touched := r.Apply(exe, filepath.Dir(exe)); len(touched) != 0 {
		t.Errorf("Apply() touched %v, want nothing", touched)
	}
}

func TestApply_UnsupportedStore(t *testing.T) {
	r := New(config.Defaults(), logging.Discard(), unsupportedStore{})
	if touched := r.Apply(`C:\Games\REBEXE.exe`, `C:\Games`); len(touched) != 0 {
		t.Errorf("Apply() touched %v, want nothing", touched)
	}
}

type unsupportedStore struct{}

func (unsupportedStore) Extension() string   { return ".lnk" }
func (unsupportedStore) Locations() []string { return nil }
func (unsupportedStore) DesktopDir() string  { return "" }
func (unsupportedStore) Read(string) (platform.Shortcut, error) {
	return platform.Shortcut{}, platform.ErrUnsupported
}
func (unsupportedStore) SetArguments(string, string) error { return platform.ErrUnsupported }
func (unsupportedStore) Create(platform.Shortcut) error    { return platform.ErrUnsupported }
