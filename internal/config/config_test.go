package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults_FileSets(t *testing.T) {
	cfg := Defaults()

	if len(cfg.PatchFiles) != 4 {
		t.Fatalf("expected 4 patch files, got %d: %v", len(cfg.PatchFiles), cfg.PatchFiles)
	}

	backup := cfg.BackupFiles()
	if len(backup) != 6 {
		t.Fatalf("expected 6 backup-eligible files, got %d: %v", len(backup), backup)
	}
	if backup[4] != "ALBRIEF.dll" || backup[5] != "EMBRIEF.dll" {
		t.Errorf("briefing files should follow patch files, got %v", backup)
	}

	for _, name := range cfg.PatchFiles {
		if _, ok := cfg.AssetNames[name]; !ok {
			t.Errorf("patch file %q has no renamed asset mapping", name)
		}
	}

	if cfg.MinFreeSpace != 50*1024*1024 {
		t.Errorf("MinFreeSpace = %d, want 50MB", cfg.MinFreeSpace)
	}
}

func TestBackupFiles_DoesNotAliasPatchFiles(t *testing.T) {
	cfg := Defaults()
	files := cfg.BackupFiles()
	files[0] = "changed"
	if cfg.PatchFiles[0] == "changed" {
		t.Error("BackupFiles() must return a fresh slice")
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.GameExe != "REBEXE.exe" {
		t.Errorf("GameExe = %q, want REBEXE.exe", cfg.GameExe)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() returned error for missing file: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}
	if len(cfg.CandidatePaths) != 7 {
		t.Errorf("expected default candidate paths, got %v", cfg.CandidatePaths)
	}
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rebfix.yaml")
	content := `candidate_paths:
  - /games/rebellion
asset_names:
  REBEXE.exe: REBEXE_new.EXE
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(cfg.CandidatePaths) != 1 || cfg.CandidatePaths[0] != "/games/rebellion" {
		t.Errorf("CandidatePaths = %v, want [/games/rebellion]", cfg.CandidatePaths)
	}
	if got := cfg.AssetNames["REBEXE.exe"]; got != "REBEXE_new.EXE" {
		t.Errorf("AssetNames[REBEXE.exe] = %q, want REBEXE_new.EXE", got)
	}
	// Untouched entries keep their defaults.
	if got := cfg.AssetNames["DDraw.dll"]; got != "DDraw_1751323218169.dll" {
		t.Errorf("AssetNames[DDraw.dll] = %q, want default", got)
	}
	if cfg.LaunchFlag != "-w" {
		t.Errorf("LaunchFlag = %q, want -w", cfg.LaunchFlag)
	}
}

func TestLoad_FixedValuesIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rebfix.yaml")
	content := `game_exe: OTHER.exe
patch_files: [REBEXE.exe]
briefing_files: []
min_free_space: 1
compatibility_flags: WIN95
launch_flag: -x
patched_version: "9.9"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := Defaults()
	if cfg.GameExe != want.GameExe {
		t.Errorf("GameExe = %q, want %q", cfg.GameExe, want.GameExe)
	}
	if len(cfg.PatchFiles) != 4 {
		t.Errorf("PatchFiles = %v, want the 4 default files", cfg.PatchFiles)
	}
	if len(cfg.BriefingFiles) != 2 {
		t.Errorf("BriefingFiles = %v, want defaults", cfg.BriefingFiles)
	}
	if cfg.MinFreeSpace != want.MinFreeSpace {
		t.Errorf("MinFreeSpace = %d, want %d", cfg.MinFreeSpace, want.MinFreeSpace)
	}
	if cfg.CompatibilityFlags != "WINXPSP3 RUNASADMIN" {
		t.Errorf("CompatibilityFlags = %q, want WINXPSP3 RUNASADMIN", cfg.CompatibilityFlags)
	}
	if cfg.LaunchFlag != "-w" {
		t.Errorf("LaunchFlag = %q, want -w", cfg.LaunchFlag)
	}
	if cfg.PatchedVersion != "1.02" {
		t.Errorf("PatchedVersion = %q, want 1.02", cfg.PatchedVersion)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("candidate_paths: [unterminated"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestDir_RespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg", "rebfix") {
		t.Errorf("Dir() = %q, want /tmp/xdg/rebfix", dir)
	}
}
