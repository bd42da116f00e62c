package store

import "time"

// Operations recorded in the journal.
const (
	OpInstall   = "install"
	OpUninstall = "uninstall"
)

// Run is one recorded install or restore.
type Run struct {
	ID         int64
	Operation  string
	Target     string
	Variant    string
	BackupPath string
	Outcome    string // final workflow state, e.g. "complete", "failed", "restored"
	Detail     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
