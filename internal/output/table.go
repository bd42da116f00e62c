// Package output renders rebfix's terminal output: backup and run history
// tables, status marks, and progress indicators for the install workflow.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/rebfix/internal/backup"
	"github.com/blackwell-systems/rebfix/internal/store"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// CheckOK, CheckWarn and CheckFail prefix msg with a status mark.
func CheckOK(msg string) string   { return colorize(colorGreen, "✓") + " " + msg }
func CheckWarn(msg string) string { return colorize(colorYellow, "⚠") + " " + msg }
func CheckFail(msg string) string { return colorize(colorRed, "✗") + " " + msg }

// BackupRow is one backup with the number of files its manifest lists.
type BackupRow struct {
	Backup *backup.Backup
	Files  int
}

// RenderBackupTable renders backups in the given order; the first row is the
// one a restore would use.
func RenderBackupTable(rows []BackupRow) string {
	if len(rows) == 0 {
		return "No backups found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-24s %-20s %-15s %s\n", "Backup", "Created", "Modified", "Files"))
	sb.WriteString(strings.Repeat("─", 68))
	sb.WriteString("\n")

	for i, row := range rows {
		created := "unknown"
		if t, err := row.Backup.CreatedAt(); err == nil {
			created = t.Format("2006-01-02 15:04:05")
		}
		marker := ""
		if i == 0 {
			marker = "  (restore source)"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-20s %-15s %-5d%s\n",
			row.Backup.Name,
			created,
			formatRelativeTime(row.Backup.ModTime),
			row.Files,
			marker))
	}

	return sb.String()
}

// RenderRunTable renders journal runs, newest first as given.
func RenderRunTable(runs []*store.Run) string {
	if len(runs) == 0 {
		return "No runs recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-5s %-10s %-18s %-10s %-9s %s\n",
		"ID", "Operation", "When", "Outcome", "Variant", "Target"))
	sb.WriteString(strings.Repeat("─", 90))
	sb.WriteString("\n")

	for _, run := range runs {
		sb.WriteString(fmt.Sprintf("%-5d %-10s %-18s %-10s %-9s %s\n",
			run.ID,
			run.Operation,
			formatRelativeTime(run.StartedAt),
			formatOutcome(run.Outcome),
			run.Variant,
			truncatePath(run.Target, 36)))
	}

	return sb.String()
}

// formatOutcome pads before coloring so the escape codes do not break
// column alignment.
func formatOutcome(outcome string) string {
	padded := fmt.Sprintf("%-10s", outcome)
	switch outcome {
	case "complete", "restored":
		return colorize(colorGreen, padded)
	case "failed":
		return colorize(colorRed, padded)
	default:
		return padded
	}
}

// FormatSize converts bytes to human-readable size (GB, MB, KB).
func FormatSize(bytes uint64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.0f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.0f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/24/7), "week")
	case diff < 365*24*time.Hour:
		return plural(int(diff.Hours()/24/30), "month")
	default:
		return plural(int(diff.Hours()/24/365), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// truncatePath shortens a path from the left, keeping the final elements.
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	tail := path[len(path)-(maxLen-3):]
	// Prefer cutting at a separator when one is near.
	if i := strings.IndexAny(tail, `/\`); i >= 0 && i < len(tail)/2 {
		tail = tail[i:]
	}
	return "..." + tail
}
