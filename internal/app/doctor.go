package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rebfix/internal/backup"
	"github.com/blackwell-systems/rebfix/internal/installer"
	"github.com/blackwell-systems/rebfix/internal/output"
	"github.com/blackwell-systems/rebfix/internal/patch"
	"github.com/blackwell-systems/rebfix/internal/probe"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether the fix can be installed",
	Long: `Runs every pre-install check without changing anything.

Checks:
  • Game installation found and valid
  • Patch files available in the installer directory
  • Game directory writable
  • Game not running
  • Enough free disk space
  • Already patched / Steam copy (warnings)
  • Existing backups`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	s.println("Running rebfix diagnostics...")
	s.println()

	criticalIssues := 0
	p := s.orch.Probe()

	// Check 1: game installation
	path, err := s.resolveTarget()
	if err != nil {
		s.println(output.CheckFail(err.Error()))
		return fmt.Errorf("diagnostics found 1 critical issue")
	}
	target := p.Validate(path)
	if !target.Valid {
		s.println(output.CheckFail(fmt.Sprintf("%s not found in %s", s.cfg.GameExe, path)))
		return fmt.Errorf("diagnostics found 1 critical issue")
	}
	s.println(output.CheckOK(fmt.Sprintf("Game found: %s (%s)", path, target.Variant)))

	if v := p.Version(path); v != "" {
		s.println(output.CheckOK("Executable version: " + v))
	} else {
		s.println(output.CheckWarn("Executable version could not be read"))
	}

	// Check 2: patch files
	applier := patch.New(s.cfg, s.log, p, s.src, path)
	if err := applier.CheckPatchFiles(); err != nil {
		s.println(output.CheckFail(err.Error()))
		s.println("  Action: place the patch files next to the installer or pass --source")
		criticalIssues++
	} else {
		s.println(output.CheckOK("All patch files found"))
	}

	// Check 3: permissions
	if p.CheckPermissions(path) {
		s.println(output.CheckOK("Game directory is writable"))
	} else {
		s.println(output.CheckFail("Game directory is not writable"))
		if !s.caps.Elevation.IsElevated() && s.caps.Elevation.CanElevate() {
			s.println("  Action: run rebfix as administrator")
		}
		criticalIssues++
	}

	// Check 4: running game
	spinner := output.NewSpinner("Checking running processes").WithTimeout(probe.ProcessQueryTimeout)
	spinner.SetWriter(s.out)
	spinner.Start()
	if p.IsGameRunning() {
		spinner.StopWithMessage(output.CheckFail("The game is currently running"))
		criticalIssues++
	} else {
		spinner.StopWithMessage(output.CheckOK("Game is not running"))
	}

	// Check 5: free space
	free := p.FreeSpace(path)
	if free < s.cfg.MinFreeSpace {
		s.println(output.CheckFail(fmt.Sprintf("Insufficient disk space: %s free, %s required",
			output.FormatSize(free), output.FormatSize(s.cfg.MinFreeSpace))))
		criticalIssues++
	} else {
		s.println(output.CheckOK(fmt.Sprintf("Free disk space: %s", output.FormatSize(free))))
	}

	// Warnings need confirmation at install time but never block it.
	for _, w := range s.orch.Warnings(installer.NewSession(path)) {
		s.println(output.CheckWarn(w.Message))
	}

	// Check 6: backups, informational
	backups, err := backup.New(s.cfg, s.log, path).List()
	switch {
	case err != nil:
		s.println(output.CheckWarn("Cannot list backups: " + err.Error()))
	case len(backups) == 0:
		s.println(output.CheckWarn("No backups yet; uninstall is unavailable until the fix is installed"))
	default:
		s.println(output.CheckOK(fmt.Sprintf("%d backups, latest %s", len(backups), backups[0].Name)))
	}

	s.println()
	if criticalIssues > 0 {
		return fmt.Errorf("diagnostics found %d critical issue(s)", criticalIssues)
	}
	s.println("All checks passed. Run 'rebfix' to install.")
	return nil
}
