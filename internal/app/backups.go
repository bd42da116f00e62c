package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rebfix/internal/backup"
	"github.com/blackwell-systems/rebfix/internal/output"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List backups in the game directory",
	Long: `Lists the Backup_YYYYMMDD_HHMMSS folders in the game directory, most
recently modified first. 'rebfix --uninstall' restores from the first one.`,
	Example: `  rebfix backups
  rebfix backups --path "C:\GOG Games\Star Wars - Rebellion"`,
	Args: cobra.NoArgs,
	RunE: runBackups,
}

func init() {
	RootCmd.AddCommand(backupsCmd)
}

func runBackups(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	path, err := s.resolveTarget()
	if err != nil {
		return err
	}

	backups, err := backup.New(s.cfg, s.log, path).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	rows := make([]output.BackupRow, 0, len(backups))
	for _, b := range backups {
		files, err := backup.ManifestFiles(b)
		if err != nil {
			s.log.Warn("Could not read backup manifest", "backup", b.Name, "error", err)
		}
		rows = append(rows, output.BackupRow{Backup: b, Files: len(files)})
	}

	s.printf("Backups in %s\n\n", path)
	s.printf("%s", output.RenderBackupTable(rows))
	return nil
}
