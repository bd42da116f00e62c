package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rebfix/internal/config"
	"github.com/blackwell-systems/rebfix/internal/platform"
)

var (
	// Global flags
	gamePath   string
	sourceDir  string
	configPath string
	logPath    string
	dbPath     string

	// Install flags
	flagSilent     bool
	flagNoBriefing bool
	flagNoBackup   bool
	flagUninstall  bool
	flagNoCompat   bool
	flagYes        bool

	// newCapabilities returns the OS facilities; tests swap in fakes.
	newCapabilities = platform.New

	// RootCmd is the root command for rebfix
	RootCmd = &cobra.Command{
		Use:   "rebfix",
		Short: "Install the Star Wars: Rebellion community fix",
		Long: `rebfix installs the Star Wars: Rebellion community fix (v` + config.Version + `).

It locates the game, backs up the original files, copies the fixed
REBEXE.exe and DirectX support libraries over them, sets Windows XP SP3
compatibility mode, and rewrites the game's shortcuts to launch with the
required -w flag.

Without flags the installer runs interactively: it asks before continuing
on an already patched or Steam copy and offers to restart as administrator
when the game folder is not writable.

Examples:
  # Install interactively, auto-detecting the game
  rebfix

  # Unattended install into a specific folder
  rebfix --silent --path "C:\GOG Games\Star Wars - Rebellion"

  # Install and remove the introduction briefings
  rebfix --nobriefing

  # Restore the original files from the latest backup
  rebfix --uninstall

  # Check whether an install would succeed
  rebfix doctor`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runRoot,
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&gamePath, "path", "", "game installation directory (default: auto-detect)")
	RootCmd.PersistentFlags().StringVar(&sourceDir, "source", "", "directory holding the patch files (default: installer directory)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/rebfix/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&logPath, "log", "", "log file (default: "+defaultLogFile+")")
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "run history database (default: ~/.config/rebfix/history.db)")

	RootCmd.Flags().BoolVar(&flagSilent, "silent", false, "install without prompts or progress animation")
	RootCmd.Flags().BoolVar(&flagNoBriefing, "nobriefing", false, "rename the introduction briefing files aside")
	RootCmd.Flags().BoolVar(&flagNoBackup, "nobackup", false, "skip backing up the original files")
	RootCmd.Flags().BoolVar(&flagUninstall, "uninstall", false, "restore the original files from the latest backup")
	RootCmd.Flags().BoolVar(&flagNoCompat, "nocompat", false, "do not set compatibility mode for the game executable")
	RootCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "answer yes to every confirmation")

	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

func runRoot(cmd *cobra.Command, args []string) error {
	// --uninstall takes precedence over --silent.
	if flagUninstall {
		return runUninstall(cmd)
	}
	return runInstall(cmd)
}

// getDBPath returns the database path, using the flag value or default
func getDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}

	dir, err := config.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(dir, "history.db"), nil
}

// getConfigPath returns the config file path, using the flag value or
// default. The default file need not exist.
func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	dir, err := config.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// getSourceDir returns the patch source directory: the flag value, or the
// directory of the running executable.
func getSourceDir() (string, error) {
	if sourceDir != "" {
		return filepath.Abs(sourceDir)
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate installer directory: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
