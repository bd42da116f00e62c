package backup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/rebfix/internal/fsutil"
)

// Restore copies the files held by the most recent backup back over the
// target. Only the newest backup is ever considered.
//
// Briefing sidecars left by briefing removal are cleaned up: when the backup
// held the briefing the sidecar is deleted. Otherwise the sidecar is the only
// copy left, so it is renamed back to the original name instead of being
// deleted.
func (m *Manager) Restore() (*RestoreResult, error) {
	backups, err := m.List()
	if err != nil {
		m.log.Error("Failed to restore from backup", "error", err)
		return nil, err
	}
	if len(backups) == 0 {
		m.log.Error("No backup folders found")
		return nil, ErrNoBackups
	}

	latest := backups[0]
	result := &RestoreResult{Backup: latest}

	for _, filename := range m.files {
		src := filepath.Join(latest.Path, filename)
		if !fsutil.Exists(src) {
			continue
		}
		if err := fsutil.CopyFile(src, filepath.Join(m.targetDir, filename)); err != nil {
			m.log.Error("Failed to restore from backup", "file", filename, "error", err)
			return nil, fmt.Errorf("failed to restore %s: %w", filename, err)
		}
		result.Files = append(result.Files, filename)
		m.log.Info("Restored file", "file", filename)
	}

	for _, filename := range m.briefings {
		sidecar := filepath.Join(m.targetDir, filename+SidecarSuffix)
		if !fsutil.Exists(sidecar) {
			continue
		}

		if fsutil.Exists(filepath.Join(latest.Path, filename)) {
			if err := os.Remove(sidecar); err != nil {
				m.log.Error("Failed to remove briefing sidecar", "file", sidecar, "error", err)
				return nil, fmt.Errorf("failed to remove %s: %w", sidecar, err)
			}
			continue
		}

		if err := os.Rename(sidecar, filepath.Join(m.targetDir, filename)); err != nil {
			m.log.Error("Failed to reinstate briefing file", "file", filename, "error", err)
			return nil, fmt.Errorf("failed to reinstate %s: %w", filename, err)
		}
		result.Files = append(result.Files, filename)
		m.log.Info("Reinstated briefing file", "file", filename)
	}

	m.log.Info("Restored files from backup", "count", len(result.Files), "backup", latest.Name)
	return result, nil
}
