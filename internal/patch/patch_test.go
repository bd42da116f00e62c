package patch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/rebfix/internal/config"
	"github.com/blackwell-systems/rebfix/internal/fsutil"
	"github.com/blackwell-systems/rebfix/internal/logging"
	"github.com/blackwell-systems/rebfix/internal/platform/platformtest"
	"github.com/blackwell-systems/rebfix/internal/probe"
)

type fixture struct {
	cfg    *config.Config
	fakes  *platformtest.Fakes
	source string
	target string
	app    *Applier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		cfg:    config.Defaults(),
		fakes:  platformtest.New(filepath.Join(root, "home")),
		source: filepath.Join(root, "installer"),
		target: filepath.Join(root, "game"),
	}
	for _, dir := range []string{f.source, f.target} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
	}
	writeFile(t, filepath.Join(f.target, "REBEXE.exe"), "original exe")

	log := logging.Discard()
	p := probe.New(f.cfg, log, f.fakes.Capabilities())
	f.app = New(f.cfg, log, p, f.source, f.target)
	return f
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func (f *fixture) bundleDirect(t *testing.T) {
	for _, name := range f.cfg.PatchFiles {
		writeFile(t, filepath.Join(f.source, name), "fixed "+name)
	}
}

func (f *fixture) bundleAssets(t *testing.T) {
	for _, name := range f.cfg.PatchFiles {
		writeFile(t, filepath.Join(f.source, f.cfg.AssetsDir, f.cfg.AssetNames[name]), "asset "+name)
	}
}

func TestCheckPatchFiles(t *testing.T) {
	t.Run("Direct", func(t *testing.T) {
		f := newFixture(t)
		f.bundleDirect(t)
		if err := f.app.CheckPatchFiles(); err != nil {
			t.Errorf("CheckPatchFiles() error: %v", err)
		}
	})

	t.Run("RenamedAssets", func(t *testing.T) {
		f := newFixture(t)
		f.bundleAssets(t)
		if err := f.app.CheckPatchFiles(); err != nil {
			t.Errorf("CheckPatchFiles() error: %v", err)
		}
	})

	t.Run("AssetUnderOriginalNameIsNotAccepted", func(t *testing.T) {
		f := newFixture(t)
		f.bundleDirect(t)
		os.Remove(filepath.Join(f.source, "DDraw.dll"))
		writeFile(t, filepath.Join(f.source, f.cfg.AssetsDir, "DDraw.dll"), "wrong name")

		var missing *MissingFileError
		if err := f.app.CheckPatchFiles(); !errors.As(err, &missing) || missing.File != "DDraw.dll" {
			t.Errorf("CheckPatchFiles() error = %v, want missing DDraw.dll", err)
		}
	})

	t.Run("NothingBundled", func(t *testing.T) {
		f := newFixture(t)
		var missing *MissingFileError
		err := f.app.CheckPatchFiles()
		if !errors.As(err, &missing) {
			t.Fatalf("CheckPatchFiles() error = %v, want *MissingFileError", err)
		}
		if missing.File != f.cfg.PatchFiles[0] {
			t.Errorf("missing file = %s, want first patch file %s", missing.File, f.cfg.PatchFiles[0])
		}
	})
}

func TestInstall(t *testing.T) {
	f := newFixture(t)
	f.bundleDirect(t)

	if err := f.app.Install(); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	for _, name := range f.cfg.PatchFiles {
		data, err := os.ReadFile(filepath.Join(f.target, name))
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", name, err)
		}
		want, _ := os.ReadFile(filepath.Join(f.source, name))
		if string(data) != string(want) {
			t.Errorf("%s = %q, want %q", name, data, want)
		}
	}
}

func TestInstall_PrefersDirectOverAssets(t *testing.T) {
	f := newFixture(t)
	f.bundleAssets(t)
	writeFile(t, filepath.Join(f.source, "REBEXE.exe"), "direct exe")

	if err := f.app.Install(); err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(f.target, "REBEXE.exe"))
	if string(data) != "direct exe" {
		t.Errorf("REBEXE.exe = %q, want the direct copy", data)
	}
	data, _ = os.ReadFile(filepath.Join(f.target, "D3Dlmm.dll"))
	if string(data) != "asset D3Dlmm.dll" {
		t.Errorf("D3Dlmm.dll = %q, want the renamed asset", data)
	}
}

func TestInstall_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.bundleAssets(t)

	if err := f.app.Install(); err != nil {
		t.Fatalf("first Install() error: %v", err)
	}
	first := map[string]string{}
	for _, name := range f.cfg.PatchFiles {
		data, _ := os.ReadFile(filepath.Join(f.target, name))
		first[name] = string(data)
	}

	if err := f.app.Install(); err != nil {
		t.Fatalf("second Install() error: %v", err)
	}
	for _, name := range f.cfg.PatchFiles {
		data, _ := os.ReadFile(filepath.Join(f.target, name))
		if string(data) != first[name] {
			t.Errorf("%s changed between installs: %q vs %q", name, first[name], data)
		}
	}
}

func TestInstall_SoftVersionCheck(t *testing.T) {
	f := newFixture(t)
	f.bundleDirect(t)
	// The executable still reports the unpatched version after the copy.
	f.fakes.Versions.Set(filepath.Join(f.target, "REBEXE.exe"), "1.00")

	if err := f.app.Install(); err != nil {
		t.Errorf("Install() must succeed despite an unpatched version, got %v", err)
	}
}

func TestInstall_MissingSource(t *testing.T) {
	f := newFixture(t)
	before, _ := os.ReadFile(filepath.Join(f.target, "REBEXE.exe"))

	var missing *MissingFileError
	if err := f.app.Install(); !errors.As(err, &missing) {
		t.Fatalf("Install() error = %v, want *MissingFileError", err)
	}
	after, _ := os.ReadFile(filepath.Join(f.target, "REBEXE.exe"))
	if string(before) != string(after) {
		t.Error("target must be untouched when patch files are missing")
	}
}

func TestRemoveBriefings(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.target, "ALBRIEF.dll"), "alliance")
	writeFile(t, filepath.Join(f.target, "EMBRIEF.dll"), "empire")

	moved, err := f.app.RemoveBriefings()
	if err != nil {
		t.Fatalf("first RemoveBriefings() error: %v", err)
	}
	if len(moved) != 2 {
		t.Errorf("first call moved %v, want both briefings", moved)
	}
	for _, name := range f.cfg.BriefingFiles {
		if fsutil.Exists(filepath.Join(f.target, name)) {
			t.Errorf("%s still present", name)
		}
		if !fsutil.Exists(filepath.Join(f.target, name+SidecarSuffix)) {
			t.Errorf("%s sidecar missing", name)
		}
	}

	moved, err = f.app.RemoveBriefings()
	if err != nil {
		t.Fatalf("second RemoveBriefings() error: %v", err)
	}
	if len(moved) != 0 {
		t.Errorf("second call moved %v, want nothing", moved)
	}
	if fsutil.Exists(filepath.Join(f.target, "ALBRIEF.dll.backup.backup")) {
		t.Error("sidecars must not be renamed again")
	}
}
