package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rebfix/internal/installer"
	"github.com/blackwell-systems/rebfix/internal/output"
	"github.com/blackwell-systems/rebfix/internal/probe"
	"github.com/blackwell-systems/rebfix/internal/store"
)

const multiplayerInfo = `Multiplayer port configuration:
  TCP 2300-2400 and UDP 2300-2400 must be open in your firewall.
  Hosting may also require forwarding these ports on your router.
  The game uses DirectPlay; modern Windows may need it enabled
  under "Turn Windows features on or off".`

// errRelaunched signals that an elevated copy of the installer took over.
var errRelaunched = errors.New("relaunched elevated")

func runInstall(cmd *cobra.Command) error {
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
	s.printf("Installing to: %s\n", path)

	sess := installer.NewSession(path)
	sess.SkipBackup = flagNoBackup
	sess.SkipCompat = flagNoCompat
	sess.RemoveBriefings = flagNoBriefing

	if err := s.checkPreconditions(sess); err != nil {
		if errors.Is(err, errRelaunched) {
			return nil
		}
		s.recordRun(store.OpInstall, started, &installer.Result{State: installer.StateFailed, Target: sess.Target}, err)
		return err
	}

	if err := s.confirmWarnings(sess); err != nil {
		return err
	}

	var result *installer.Result
	if flagSilent {
		result, err = s.orch.Install(sess, func(p installer.Progress) {
			if !p.Done {
				s.println(p.Message)
			}
		})
	} else {
		result, err = s.installWithProgress(sess)
	}
	s.recordRun(store.OpInstall, started, result, err)

	if err != nil {
		s.println(output.CheckFail("Installation failed. Please check the log file for more details."))
		if result != nil && result.BackupPath != "" {
			s.printf("  Original files remain in %s\n", result.BackupPath)
		}
		return fmt.Errorf("installation failed: %w", err)
	}

	s.printSummary(result)
	return nil
}

// checkPreconditions runs the orchestrator checks. When the only obstacle is
// missing administrative rights and the user agrees, the installer restarts
// elevated and errRelaunched is returned.
func (s *session) checkPreconditions(sess *installer.Session) error {
	var err error
	if flagSilent {
		err = s.orch.CheckPreconditions(sess)
	} else {
		spinner := output.NewSpinner("Checking installation").WithTimeout(probe.ProcessQueryTimeout)
		spinner.SetWriter(s.out)
		spinner.Start()
		err = s.orch.CheckPreconditions(sess)
		if err == nil {
			spinner.StopWithMessage(output.CheckOK("Installation checks passed"))
		} else {
			spinner.Stop()
		}
	}
	if err == nil {
		return nil
	}

	var pe *installer.PreconditionError
	if !errors.As(err, &pe) {
		return err
	}
	s.println(output.CheckFail(pe.Error()))

	if pe.Reason != installer.ReasonInsufficientPermissions || !pe.CanElevate || flagSilent {
		return err
	}

	if !s.confirm("Administrative rights are required to install to this location.\nRestart the installer as administrator?") {
		return err
	}
	if rerr := s.caps.Elevation.Relaunch(os.Args[1:]); rerr != nil {
		s.log.Error("Failed to restart as administrator", "error", rerr)
		return fmt.Errorf("failed to restart as administrator: %w", rerr)
	}
	s.log.Info("Restarted installer as administrator")
	s.println("Restarting as administrator...")
	return errRelaunched
}

// confirmWarnings asks about each warning, unless --silent or --yes accepts
// them all.
func (s *session) confirmWarnings(sess *installer.Session) error {
	for _, w := range s.orch.Warnings(sess) {
		s.log.Warn(w.Message, "code", string(w.Code))
		s.println(output.CheckWarn(w.Message))
		if flagSilent || flagYes {
			continue
		}
		if !s.confirm("Do you want to continue with the installation?") {
			s.log.Info("Installation cancelled by user", "warning", string(w.Code))
			return errCancelled
		}
	}
	return nil
}

// installWithProgress runs the install on the worker goroutine and renders
// its progress until the terminal event.
func (s *session) installWithProgress(sess *installer.Session) (*installer.Result, error) {
	bar := output.NewProgress(installer.TotalSteps, "")
	bar.SetWriter(s.out)

	var final installer.Progress
	for p := range s.orch.Start(sess) {
		bar.Update(p.Step, p.Message)
		if p.Done {
			final = p
		}
	}
	bar.Finish()

	return final.Result, final.Err
}

func (s *session) printSummary(result *installer.Result) {
	s.println()
	s.println(output.CheckOK("Installation completed successfully!"))
	if result.BackupPath != "" {
		s.printf("  Backup: %s\n", result.BackupPath)
	} else {
		s.println("  Backup: skipped")
	}
	s.printf("  Modified %d shortcuts with -w flag\n", len(result.Shortcuts))
	for _, path := range result.Shortcuts {
		s.printf("    %s\n", path)
	}
	if len(result.Briefings) > 0 {
		s.printf("  Removed %d briefing files\n", len(result.Briefings))
	}
	steam := "No"
	if result.IsSteam {
		steam = "Yes"
	}
	s.printf("  Steam version detected: %s\n", steam)

	if result.IsSteam {
		s.println(output.CheckWarn("Steam may verify and restore the original files. Consider disabling automatic updates for this game."))
	}

	if !flagSilent {
		s.println()
		s.println(multiplayerInfo)
	}
}
