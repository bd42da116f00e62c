package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rebfix/internal/config"
	"github.com/blackwell-systems/rebfix/internal/installer"
	"github.com/blackwell-systems/rebfix/internal/logging"
	"github.com/blackwell-systems/rebfix/internal/platform"
	"github.com/blackwell-systems/rebfix/internal/store"
)

const defaultLogFile = logging.DefaultFile

// errGameNotFound is returned when no --path was given and discovery found
// nothing.
var errGameNotFound = errors.New("Star Wars: Rebellion installation not found in common locations; use --path")

// errCancelled is returned when the user declines a confirmation.
var errCancelled = errors.New("cancelled by user")

// session bundles what every command needs for one run.
type session struct {
	cfg  *config.Config
	log  *logging.Logger
	caps *platform.Capabilities
	orch *installer.Orchestrator
	src  string
	out  io.Writer
	in   *bufio.Reader
}

// newSession loads configuration, opens the run log and wires the
// orchestrator. Callers must call close.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, err
	}

	path := logPath
	if path == "" {
		path = defaultLogFile
	}
	log := logging.New(path)

	src, err := getSourceDir()
	if err != nil {
		log.Close()
		return nil, err
	}

	caps := newCapabilities()
	log.Info("Starting rebfix", "version", config.Version, "source", src)

	return &session{
		cfg:  cfg,
		log:  log,
		caps: caps,
		orch: installer.New(cfg, log, caps, src),
		src:  src,
		out:  cmd.OutOrStdout(),
		in:   bufio.NewReader(cmd.InOrStdin()),
	}, nil
}

func (s *session) close() {
	s.log.Close()
}

func (s *session) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *session) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

// resolveTarget returns the --path value, or the first discovered
// installation.
func (s *session) resolveTarget() (string, error) {
	if gamePath != "" {
		return gamePath, nil
	}
	target, ok := s.orch.Probe().FindInstallation()
	if !ok {
		return "", errGameNotFound
	}
	return target.Path, nil
}

// confirm asks a y/N question. Anything but y or yes, including EOF, is no.
func (s *session) confirm(prompt string) bool {
	s.printf("%s [y/N]: ", prompt)

	response, err := s.in.ReadString('\n')
	if err != nil && response == "" {
		s.println()
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// recordRun appends a run to the history database. Failures are logged and
// otherwise ignored.
func (s *session) recordRun(op string, started time.Time, result *installer.Result, runErr error) {
	path, err := getDBPath()
	if err != nil {
		s.log.Warn("Could not record run history", "error", err)
		return
	}
	st, err := store.New(path)
	if err != nil {
		s.log.Warn("Could not record run history", "error", err)
		return
	}
	defer st.Close()

	if err := st.CreateSchema(); err != nil {
		s.log.Warn("Could not record run history", "error", err)
		return
	}

	run := &store.Run{
		Operation:  op,
		Outcome:    installer.StateFailed.String(),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	var shortcuts []string
	if result != nil {
		run.Target = result.Target.Path
		run.Variant = string(result.Target.Variant)
		run.BackupPath = result.BackupPath
		run.Outcome = result.State.String()
		shortcuts = result.Shortcuts
	}
	if run.Target == "" {
		run.Target = gamePath
	}
	if runErr != nil {
		run.Detail = runErr.Error()
	}

	if _, err := st.InsertRun(run, shortcuts); err != nil {
		s.log.Warn("Could not record run history", "error", err)
	}
}
