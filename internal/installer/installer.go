package installer

import (
	"errors"
	"fmt"

	"github.com/blackwell-systems/rebfix/internal/backup"
	"github.com/blackwell-systems/rebfix/internal/compat"
	"github.com/blackwell-systems/rebfix/internal/config"
	"github.com/blackwell-systems/rebfix/internal/logging"
	"github.com/blackwell-systems/rebfix/internal/patch"
	"github.com/blackwell-systems/rebfix/internal/platform"
	"github.com/blackwell-systems/rebfix/internal/probe"
	"github.com/blackwell-systems/rebfix/internal/shortcut"
)

// stepMessages are the progress messages for each install step.
var stepMessages = map[State]string{
	StateInit:              "Initializing...",
	StateBackupDone:        "Creating backup...",
	StateBackupSkipped:     "Skipping backup...",
	StateFilesInstalled:    "Installing patch files...",
	StateCompatConfigured:  "Configuring compatibility...",
	StateCompatSkipped:     "Skipping compatibility settings...",
	StateShortcutsModified: "Modifying shortcuts with -w flag...",
	StateBriefingsRemoved:  "Removing briefing files...",
	StateBriefingsSkipped:  "Keeping briefing files...",
	StateComplete:          "Installation complete!",
	StateRestored:          "Original files restored from backup.",
}

var stepNumbers = map[State]int{
	StateInit:              0,
	StateBackupDone:        1,
	StateBackupSkipped:     1,
	StateFilesInstalled:    2,
	StateCompatConfigured:  3,
	StateCompatSkipped:     3,
	StateShortcutsModified: 4,
	StateBriefingsRemoved:  5,
	StateBriefingsSkipped:  5,
	StateComplete:          6,
}

// Orchestrator runs install and restore workflows against one target at a
// time.
type Orchestrator struct {
	cfg       *config.Config
	log       *logging.Logger
	caps      *platform.Capabilities
	probe     *probe.Probe
	sourceDir string
}

// New creates an Orchestrator. sourceDir is where the patch files ship.
func New(cfg *config.Config, log *logging.Logger, caps *platform.Capabilities, sourceDir string) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		log:       log,
		caps:      caps,
		probe:     probe.New(cfg, log, caps),
		sourceDir: sourceDir,
	}
}

// Probe returns the probe used for discovery and checks.
func (o *Orchestrator) Probe() *probe.Probe {
	return o.probe
}

// CheckPreconditions re-validates the session target and checks, in order:
// the target is valid, the patch files are available, the target is
// writable, the game is not running and there is enough free space.
func (o *Orchestrator) CheckPreconditions(s *Session) error {
	s.Target = o.probe.Validate(s.Target.Path)
	s.IsSteam = s.Target.IsSteam()
	if !s.Target.Valid {
		return &PreconditionError{Reason: ReasonInvalidPath}
	}

	applier := patch.New(o.cfg, o.log, o.probe, o.sourceDir, s.Target.Path)
	if err := applier.CheckPatchFiles(); err != nil {
		return &PreconditionError{Reason: ReasonMissingPatchFiles, Err: err}
	}

	if !o.probe.CheckPermissions(s.Target.Path) {
		elevation := o.caps.Elevation
		return &PreconditionError{
			Reason:     ReasonInsufficientPermissions,
			CanElevate: !elevation.IsElevated() && elevation.CanElevate(),
		}
	}

	if o.probe.IsGameRunning() {
		return &PreconditionError{Reason: ReasonGameRunning}
	}

	if free := o.probe.FreeSpace(s.Target.Path); free < o.cfg.MinFreeSpace {
		return &PreconditionError{
			Reason: ReasonInsufficientSpace,
			Err:    fmt.Errorf("%d bytes free, %d required", free, o.cfg.MinFreeSpace),
		}
	}

	return nil
}

// Warnings returns the conditions that need explicit confirmation before an
// install. They never block the install by themselves.
func (o *Orchestrator) Warnings(s *Session) []Warning {
	var warnings []Warning
	if o.probe.IsAlreadyPatched(s.Target.Path) {
		warnings = append(warnings, Warning{
			Code: WarnAlreadyPatched,
			Message: fmt.Sprintf("The game appears to be already patched with version %s or higher.",
				o.cfg.PatchedVersion),
		})
	}
	if probe.Classify(s.Target.Path) == probe.VariantSteam {
		warnings = append(warnings, Warning{
			Code: WarnSteamVersion,
			Message: "Steam version of the game detected. Steam may verify and restore original " +
				"files, overwriting this patch. Consider disabling automatic updates for this game in Steam.",
		})
	}
	return warnings
}

// Install runs the install workflow, reporting every transition to report
// (which may be nil). A failed precondition aborts before anything is
// modified. A failed backup or file copy aborts the remaining steps without
// rolling back the steps already done; compatibility, shortcut and briefing
// failures are logged and the workflow continues.
func (o *Orchestrator) Install(s *Session, report func(Progress)) (*Result, error) {
	if report == nil {
		report = func(Progress) {}
	}

	s.State = StateInit
	o.advance(s, StateInit, report)

	if err := o.CheckPreconditions(s); err != nil {
		o.log.Error("Installation precondition failed", "error", err)
		return o.fail(s, err, report)
	}
	o.log.Info("Installing to", "path", s.Target.Path, "variant", string(s.Target.Variant))

	target := s.Target.Path
	exe := o.probe.ExePath(target)

	if s.SkipBackup {
		o.advance(s, StateBackupSkipped, report)
	} else {
		b, err := backup.New(o.cfg, o.log, target).Create()
		if err != nil {
			return o.fail(s, fmt.Errorf("%w: %w", ErrBackupFailed, err), report)
		}
		s.BackupPath = b.Path
		o.advance(s, StateBackupDone, report)
	}

	applier := patch.New(o.cfg, o.log, o.probe, o.sourceDir, target)
	if err := applier.Install(); err != nil {
		return o.fail(s, fmt.Errorf("%w: %w", ErrInstallFailed, err), report)
	}
	o.advance(s, StateFilesInstalled, report)

	if s.SkipCompat {
		o.advance(s, StateCompatSkipped, report)
	} else {
		// Logged by the configurator; never fatal.
		_ = compat.New(o.cfg, o.log, o.caps.Compat).Apply(exe)
		o.advance(s, StateCompatConfigured, report)
	}

	rewriter := shortcut.New(o.cfg, o.log, o.caps.Shortcuts)
	s.ShortcutsModified = rewriter.Apply(exe, target)
	o.advance(s, StateShortcutsModified, report)

	var briefings []string
	if s.RemoveBriefings {
		moved, err := applier.RemoveBriefings()
		if err != nil {
			o.log.Warn("Could not remove all briefing files", "error", err)
		}
		briefings = moved
		o.advance(s, StateBriefingsRemoved, report)
	} else {
		o.advance(s, StateBriefingsSkipped, report)
	}

	s.State = StateComplete
	result := &Result{
		State:      StateComplete,
		Target:     s.Target,
		BackupPath: s.BackupPath,
		Shortcuts:  s.ShortcutsModified,
		Briefings:  briefings,
		IsSteam:    s.IsSteam,
	}
	o.log.Info("Installation completed successfully", "shortcuts", len(s.ShortcutsModified), "steam", s.IsSteam)
	report(Progress{
		State:   StateComplete,
		Step:    stepNumbers[StateComplete],
		Total:   TotalSteps,
		Message: stepMessages[StateComplete],
		Done:    true,
		Result:  result,
	})
	return result, nil
}

// Start runs Install on a new goroutine. Every transition is sent on the
// returned channel, which is closed after the terminal event.
func (o *Orchestrator) Start(s *Session) <-chan Progress {
	ch := make(chan Progress, TotalSteps+2)
	go func() {
		defer close(ch)
		_, _ = o.Install(s, func(p Progress) { ch <- p })
	}()
	return ch
}

// Uninstall restores the most recent backup of the installation at path.
func (o *Orchestrator) Uninstall(path string) (*Result, error) {
	target := o.probe.Validate(path)
	result := &Result{State: StateFailed, Target: target, IsSteam: target.IsSteam()}
	if !target.Valid {
		return result, &PreconditionError{Reason: ReasonInvalidPath}
	}

	o.log.Info("Uninstalling from", "path", target.Path)
	restored, err := backup.New(o.cfg, o.log, target.Path).Restore()
	if err != nil {
		o.log.Error("Failed to restore from backup", "error", err)
		return result, fmt.Errorf("failed to restore from backup: %w", err)
	}

	result.State = StateRestored
	result.BackupPath = restored.Backup.Path
	result.Restored = restored.Files
	o.log.Info("Patch uninstalled successfully", "backup", restored.Backup.Name)
	return result, nil
}

func (o *Orchestrator) advance(s *Session, state State, report func(Progress)) {
	s.State = state
	report(Progress{
		State:   state,
		Step:    stepNumbers[state],
		Total:   TotalSteps,
		Message: stepMessages[state],
	})
}

func (o *Orchestrator) fail(s *Session, err error, report func(Progress)) (*Result, error) {
	var pe *PreconditionError
	if !errors.As(err, &pe) {
		o.log.Error("Installation failed", "error", err)
	}
	step := stepNumbers[s.State]
	s.State = StateFailed
	result := &Result{
		State:      StateFailed,
		Target:     s.Target,
		BackupPath: s.BackupPath,
		Shortcuts:  s.ShortcutsModified,
		IsSteam:    s.IsSteam,
	}
	report(Progress{
		State:   StateFailed,
		Step:    step,
		Total:   TotalSteps,
		Message: err.Error(),
		Done:    true,
		Result:  result,
		Err:     err,
	})
	return result, err
}
