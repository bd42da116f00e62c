package app

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rebfix/internal/output"
	"github.com/blackwell-systems/rebfix/internal/store"
)

var (
	historyFlagLimit  int
	historyFlagDelete bool
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show past install and uninstall runs",
	Long: `Shows the runs recorded in the history database, newest first.
With a run ID, shows that run in detail including the shortcuts it touched.
With --delete, removes that run from the history instead.`,
	Example: `  rebfix history
  rebfix history --limit 5
  rebfix history 3
  rebfix history --delete 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyFlagLimit, "limit", "n", 20, "maximum number of runs to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyFlagDelete, "delete", false, "delete the given run from the history")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, err := getDBPath()
	if err != nil {
		return fmt.Errorf("failed to get database path: %w", err)
	}
	st, err := store.New(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	out := cmd.OutOrStdout()

	if historyFlagDelete && len(args) == 0 {
		return fmt.Errorf("--delete requires a run ID")
	}

	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run ID %q: must be a number", args[0])
		}
		if historyFlagDelete {
			if err := st.DeleteRun(id); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted run %d\n", id)
			return nil
		}
		return showRun(cmd, st, id)
	}

	runs, err := st.ListRuns(historyFlagLimit)
	if errors.Is(err, store.ErrNotInitialized) {
		fmt.Fprint(out, output.RenderRunTable(nil))
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprint(out, output.RenderRunTable(runs))
	return nil
}

func showRun(cmd *cobra.Command, st *store.Store, id int64) error {
	run, err := st.GetRun(id)
	if err != nil {
		return err
	}
	shortcuts, err := st.GetRunShortcuts(id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %d\n", run.ID)
	fmt.Fprintf(out, "  Operation: %s\n", run.Operation)
	fmt.Fprintf(out, "  Target:    %s (%s)\n", run.Target, run.Variant)
	fmt.Fprintf(out, "  Started:   %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  Duration:  %s\n", run.Duration().Round(time.Millisecond))
	fmt.Fprintf(out, "  Outcome:   %s\n", run.Outcome)
	if run.BackupPath != "" {
		fmt.Fprintf(out, "  Backup:    %s\n", run.BackupPath)
	}
	if run.Detail != "" {
		fmt.Fprintf(out, "  Detail:    %s\n", run.Detail)
	}
	if len(shortcuts) > 0 {
		fmt.Fprintln(out, "  Shortcuts:")
		for _, sc := range shortcuts {
			fmt.Fprintf(out, "    %s\n", sc)
		}
	}
	return nil
}
