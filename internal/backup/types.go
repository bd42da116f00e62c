// Package backup creates, lists and restores timestamped snapshots of the
// game files the installer overwrites.
package backup

import (
	"errors"
	"regexp"
	"time"

	"github.com/blackwell-systems/rebfix/internal/config"
	"github.com/blackwell-systems/rebfix/internal/logging"
)

const (
	// namePrefix starts every backup directory name.
	namePrefix = "Backup_"

	// timestampLayout yields the 14 timestamp digits of a backup name.
	timestampLayout = "20060102_150405"

	// ManifestName is the plain-text manifest inside each backup.
	ManifestName = "backup_log.txt"

	// SidecarSuffix is appended to briefing files renamed aside.
	SidecarSuffix = ".backup"
)

var namePattern = regexp.MustCompile(`^Backup_\d{8}_\d{6}$`)

var (
	// ErrNoBackups is returned by Restore when the target holds no backup.
	ErrNoBackups = errors.New("no backup folders found")

	// ErrBackupExists is returned when a backup for the same second exists.
	ErrBackupExists = errors.New("backup directory already exists")
)

// Backup is one snapshot directory under the install target.
type Backup struct {
	Name    string
	Path    string
	ModTime time.Time
}

// CreatedAt parses the creation time encoded in the directory name.
func (b *Backup) CreatedAt() (time.Time, error) {
	return time.ParseInLocation(timestampLayout, b.Name[len(namePrefix):], time.Local)
}

// RestoreResult describes a completed restore.
type RestoreResult struct {
	Backup *Backup
	Files  []string
}

// Manager manages backups of one install target.
type Manager struct {
	targetDir string
	files     []string
	briefings []string
	log       *logging.Logger
	now       func() time.Time
}

// New creates a Manager for targetDir using the file sets from cfg.
func New(cfg *config.Config, log *logging.Logger, targetDir string) *Manager {
	return &Manager{
		targetDir: targetDir,
		files:     cfg.BackupFiles(),
		briefings: cfg.BriefingFiles,
		log:       log,
		now:       time.Now,
	}
}

// IsBackupName reports whether name is a valid backup directory name.
func IsBackupName(name string) bool {
	return namePattern.MatchString(name)
}
