// Package installer sequences discovery, backup, patching, compatibility
// configuration, shortcut rewriting and briefing removal into the install
// and restore workflows.
package installer

import (
	"errors"
	"fmt"

	"github.com/blackwell-systems/rebfix/internal/probe"
)

// State is a step of the install or restore workflow.
type State int

const (
	StateInit State = iota
	StateBackupDone
	StateBackupSkipped
	StateFilesInstalled
	StateCompatConfigured
	StateCompatSkipped
	StateShortcutsModified
	StateBriefingsRemoved
	StateBriefingsSkipped
	StateComplete
	StateFailed
	StateRestored
)

var stateNames = map[State]string{
	StateInit:              "init",
	StateBackupDone:        "backup_done",
	StateBackupSkipped:     "backup_skipped",
	StateFilesInstalled:    "files_installed",
	StateCompatConfigured:  "compat_configured",
	StateCompatSkipped:     "compat_skipped",
	StateShortcutsModified: "shortcuts_modified",
	StateBriefingsRemoved:  "briefings_removed",
	StateBriefingsSkipped:  "briefings_skipped",
	StateComplete:          "complete",
	StateFailed:            "failed",
	StateRestored:          "restored",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed || s == StateRestored
}

// TotalSteps is the number of progress steps after Init in an install.
const TotalSteps = 6

// Session is the mutable state of one install run. While a run started with
// Start is in flight the session belongs to the worker goroutine; read it
// only after the terminal Progress has been received.
type Session struct {
	Target          probe.Target
	SkipBackup      bool
	SkipCompat      bool
	RemoveBriefings bool

	ShortcutsModified []string
	IsSteam           bool
	BackupPath        string
	State             State
}

// NewSession creates a session for the directory at path.
func NewSession(path string) *Session {
	return &Session{Target: probe.Target{Path: path}, State: StateInit}
}

// Progress is one workflow transition reported to the caller.
type Progress struct {
	State   State
	Step    int
	Total   int
	Message string

	// Set on the terminal event only.
	Done   bool
	Result *Result
	Err    error
}

// Result summarizes a finished run.
type Result struct {
	State      State
	Target     probe.Target
	BackupPath string
	Shortcuts  []string
	Briefings  []string
	Restored   []string
	IsSteam    bool
}

var (
	// ErrBackupFailed wraps a backup creation failure during install.
	ErrBackupFailed = errors.New("failed to create backup of original files")

	// ErrInstallFailed wraps a patch copy failure during install.
	ErrInstallFailed = errors.New("failed to install patch files")
)

// Reason identifies a failed precondition.
type Reason string

const (
	ReasonInvalidPath             Reason = "invalid_path"
	ReasonMissingPatchFiles       Reason = "missing_patch_files"
	ReasonInsufficientPermissions Reason = "insufficient_permissions"
	ReasonGameRunning             Reason = "game_running"
	ReasonInsufficientSpace       Reason = "insufficient_space"
)

var reasonMessages = map[Reason]string{
	ReasonInvalidPath:             "The selected path does not contain a valid game installation.",
	ReasonMissingPatchFiles:       "Required patch files are missing from the installer directory.",
	ReasonInsufficientPermissions: "Insufficient permissions to modify game files.",
	ReasonGameRunning:             "The game is currently running. Please close it before installing.",
	ReasonInsufficientSpace:       "Insufficient disk space for installation and backup.",
}

// PreconditionError reports why an install may not start. Nothing has been
// modified when it is returned.
type PreconditionError struct {
	Reason Reason

	// CanElevate is set with ReasonInsufficientPermissions when the process
	// is not elevated and the platform can relaunch it elevated.
	CanElevate bool

	Err error
}

func (e *PreconditionError) Error() string {
	msg := reasonMessages[e.Reason]
	if msg == "" {
		msg = string(e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (%v)", msg, e.Err)
	}
	return msg
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// IsPrecondition reports whether err is a PreconditionError with reason r.
func IsPrecondition(err error, r Reason) bool {
	var pe *PreconditionError
	return errors.As(err, &pe) && pe.Reason == r
}

// WarningCode identifies a condition that needs the user's confirmation but
// does not block the install.
type WarningCode string

const (
	WarnAlreadyPatched WarningCode = "already_patched"
	WarnSteamVersion   WarningCode = "steam_version"
)

// Warning is a confirmable condition.
type Warning struct {
	Code    WarningCode
	Message string
}
