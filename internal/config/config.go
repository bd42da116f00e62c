// Package config provides the installer's fixed data (file sets, candidate
// locations, thresholds) and an optional YAML override file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Version is the community fix release this installer ships.
const Version = "2.63.1.0"

// Config holds every value the installer reads. The zero value is not
// usable; start from Defaults or Load. Only candidate paths and asset names
// can be changed by a config file; everything else is fixed at build time.
type Config struct {
	// GameExe is the designated executable whose presence marks a valid target.
	GameExe string

	// CandidatePaths are probed in order by installation discovery.
	CandidatePaths []string

	// PatchFiles are copied from the source directory onto the target.
	PatchFiles []string

	// BriefingFiles may be renamed aside on request and are always backed up.
	BriefingFiles []string

	// AssetsDir is the secondary lookup location under the source directory.
	AssetsDir string

	// AssetNames maps a patch filename to its renamed file inside AssetsDir.
	AssetNames map[string]string

	// PatchedVersion is the lowest executable version treated as already patched.
	PatchedVersion string

	// MinFreeSpace is the free-space floor in bytes for the target filesystem.
	MinFreeSpace uint64

	// CompatibilityFlags is the value written to the per-executable compat key.
	CompatibilityFlags string

	// LaunchFlag is the argument every game shortcut must carry.
	LaunchFlag string

	// ShortcutName is the file name of a shortcut created when none exist.
	ShortcutName string

	// ShortcutDescription is the description of a created shortcut.
	ShortcutDescription string
}

// Defaults returns the compiled-in configuration.
func Defaults() *Config {
	return &Config{
		GameExe: "REBEXE.exe",
		CandidatePaths: []string{
			`C:\GOG Games\Star Wars - Rebellion`,
			`C:\Program Files (x86)\Steam\steamapps\common\Star Wars - Rebellion`,
			`C:\Program Files (x86)\LucasArts\Star Wars Rebellion`,
			`C:\Program Files\LucasArts\Star Wars Rebellion`,
			`C:\Games\Star Wars - Rebellion`,
			`D:\GOG Games\Star Wars - Rebellion`,
			`D:\Program Files (x86)\Steam\steamapps\common\Star Wars - Rebellion`,
		},
		PatchFiles:    []string{"D3Dlmm.dll", "d3drm.dll", "DDraw.dll", "REBEXE.exe"},
		BriefingFiles: []string{"ALBRIEF.dll", "EMBRIEF.dll"},
		AssetsDir:     "attached_assets",
		AssetNames: map[string]string{
			"REBEXE.exe": "REBEXE_1751323218170.EXE",
			"D3Dlmm.dll": "D3DImm_1751323218171.dll",
			"DDraw.dll":  "DDraw_1751323218169.dll",
			"d3drm.dll":  "d3drm_1751323218167.dll",
		},
		PatchedVersion:      "1.02",
		MinFreeSpace:        50 * 1024 * 1024,
		CompatibilityFlags:  "WINXPSP3 RUNASADMIN",
		LaunchFlag:          "-w",
		ShortcutName:        "Star Wars Rebellion.lnk",
		ShortcutDescription: "Star Wars: Rebellion with Community Fix",
	}
}

// BackupFiles returns the backup-eligible set: patch files followed by
// briefing files.
func (c *Config) BackupFiles() []string {
	files := make([]string, 0, len(c.PatchFiles)+len(c.BriefingFiles))
	files = append(files, c.PatchFiles...)
	files = append(files, c.BriefingFiles...)
	return files
}

// Load reads a YAML override file on top of Defaults. A missing file is not
// an error and yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var override fileConfig
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	merge(cfg, &override)
	return cfg, nil
}

// fileConfig is the subset of Config a YAML file may set. Other keys are
// ignored.
type fileConfig struct {
	CandidatePaths []string          `yaml:"candidate_paths"`
	AssetNames     map[string]string `yaml:"asset_names"`
}

// merge applies the file values on top of dst.
func merge(dst *Config, src *fileConfig) {
	if len(src.CandidatePaths) > 0 {
		dst.CandidatePaths = src.CandidatePaths
	}
	for name, asset := range src.AssetNames {
		dst.AssetNames[name] = asset
	}
}

// Dir returns the rebfix config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/rebfix if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "rebfix"), nil
}
