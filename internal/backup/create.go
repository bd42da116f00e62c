package backup

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blackwell-systems/rebfix/internal/config"
	"github.com/blackwell-systems/rebfix/internal/fsutil"
)

// Create snapshots every backup-eligible file currently present in the
// target into a new Backup_YYYYMMDD_HHMMSS directory and writes its
// manifest. On error a partially filled directory may remain.
func (m *Manager) Create() (*Backup, error) {
	created := m.now()
	name := namePrefix + created.Format(timestampLayout)
	path := filepath.Join(m.targetDir, name)

	if err := os.Mkdir(path, 0755); err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrBackupExists, path)
		}
		m.log.Error("Failed to create backup", "error", err)
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	var copied []string
	for _, filename := range m.files {
		src := filepath.Join(m.targetDir, filename)
		if !fsutil.Exists(src) {
			continue
		}
		if err := fsutil.CopyFile(src, filepath.Join(path, filename)); err != nil {
			m.log.Error("Failed to create backup", "file", filename, "error", err)
			return nil, fmt.Errorf("failed to back up %s: %w", filename, err)
		}
		copied = append(copied, filename)
		m.log.Info("Backed up file", "file", filename)
	}

	var sb strings.Builder
	sb.WriteString("Star Wars: Rebellion Community Fix Backup\n")
	sb.WriteString(fmt.Sprintf("Created: %s\n", created.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Installer Version: %s\n\n", config.Version))
	sb.WriteString("Backed up files:\n")
	for _, filename := range copied {
		sb.WriteString(fmt.Sprintf("- %s\n", filename))
	}

	if err := os.WriteFile(filepath.Join(path, ManifestName), []byte(sb.String()), 0644); err != nil {
		m.log.Error("Failed to write backup manifest", "error", err)
		return nil, fmt.Errorf("failed to write backup manifest: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup directory: %w", err)
	}

	m.log.Info("Backup created successfully", "path", path, "files", len(copied))
	return &Backup{Name: name, Path: path, ModTime: info.ModTime()}, nil
}

// List returns every backup directory in the target, most recently
// modified first.
func (m *Manager) List() ([]*Backup, error) {
	entries, err := os.ReadDir(m.targetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read target directory: %w", err)
	}

	var backups []*Backup
	for _, entry := range entries {
		if !entry.IsDir() || !IsBackupName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, &Backup{
			Name:    entry.Name(),
			Path:    filepath.Join(m.targetDir, entry.Name()),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].Name > backups[j].Name
		}
		return backups[i].ModTime.After(backups[j].ModTime)
	})

	return backups, nil
}

// ManifestFiles returns the file names recorded in a backup's manifest.
func ManifestFiles(b *Backup) ([]string, error) {
	f, err := os.Open(filepath.Join(b.Path, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	var files []string
	inList := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "Backed up files:" {
			inList = true
			continue
		}
		if inList && strings.HasPrefix(line, "- ") {
			files = append(files, strings.TrimPrefix(line, "- "))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return files, nil
}
