package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rebfix/internal/backup"
	"github.com/blackwell-systems/rebfix/internal/output"
	"github.com/blackwell-systems/rebfix/internal/store"
)

func runUninstall(cmd *cobra.Command) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	started := time.Now()

	path, err := s.resolveTarget()
	if err != nil {
		s.log.Error("Could not find game installation")
		return err
	}
	s.printf("Uninstalling from: %s\n", path)

	if !flagSilent && !flagYes {
		// An unreadable or empty target is reported by the restore itself.
		backups, err := backup.New(s.cfg, s.log, path).List()
		if err == nil && len(backups) > 0 {
			s.printf("This will restore original game files from backup.\n  Backup folder: %s\n", backups[0].Name)
			if !s.confirm("Do you want to continue?") {
				s.log.Info("Uninstall cancelled by user")
				return errCancelled
			}
		}
	}

	result, err := s.orch.Uninstall(path)
	s.recordRun(store.OpUninstall, started, result, err)
	if err != nil {
		s.println(output.CheckFail("Failed to restore original files from backup."))
		return fmt.Errorf("uninstall failed: %w", err)
	}

	s.println(output.CheckOK("Patch uninstalled successfully!"))
	s.printf("  Restored %d files from %s\n", len(result.Restored), result.BackupPath)
	return nil
}
