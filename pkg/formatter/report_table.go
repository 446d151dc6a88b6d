package formatter

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/younsl/reapd/internal/models"
)

// PrintDecisionsTable prints a formatted table of per-instance cleanup
// decisions.
func PrintDecisionsTable(decisions []models.Decision, scanTime time.Time, scanDuration time.Duration, dryRun bool) {
	if len(decisions) == 0 {
		fmt.Println("No target instances found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)

	fmt.Fprintf(w, "Scan time: %s (completed in %.2f seconds)\n",
		scanTime.Format("2006-01-02 15:04:05"),
		scanDuration.Seconds())

	header := "INSTANCE ID\tNAME\tTYPE\tREGION\tSTATE\tAVG CPU\tSTOPPED SINCE\tDAYS\tACTION"
	fmt.Fprintln(w, header)

	for _, d := range decisions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.Instance.InstanceID,
			getInstanceName(d.Instance.Name),
			d.Instance.InstanceType,
			d.Instance.Region,
			d.Instance.State,
			formatUtilization(d),
			formatStoppedSince(d),
			formatElapsedDays(d),
			formatAction(d.Action, dryRun),
		)
	}

	w.Flush()
}

// getInstanceName returns a formatted instance name or <unnamed> if empty
func getInstanceName(name string) string {
	if name == "" {
		return "<unnamed>"
	}
	return name
}

// formatUtilization renders the averaged CPU for running instances.
func formatUtilization(d models.Decision) string {
	if d.Instance.State != models.StateRunning {
		return "-"
	}
	if !d.Utilization.Present {
		return "no data"
	}
	return fmt.Sprintf("%.2f%%", d.Utilization.AverageCPU)
}

// formatStoppedSince renders the resolved stop time as a relative
// duration, e.g. "3 days ago".
func formatStoppedSince(d models.Decision) string {
	if d.Instance.State != models.StateStopped {
		return "-"
	}
	if d.StopTime == nil {
		return "Unknown"
	}
	return humanize.Time(*d.StopTime)
}

func formatElapsedDays(d models.Decision) string {
	if d.Instance.State != models.StateStopped || d.StopTime == nil {
		return "-"
	}
	return fmt.Sprintf("%d", d.ElapsedDays)
}

// formatAction marks dry-run actions so the table never suggests a
// mutation happened.
func formatAction(action models.Action, dryRun bool) string {
	if action == models.ActionNone {
		return "-"
	}
	if dryRun {
		return action.String() + " (dry-run)"
	}
	return action.String()
}

// PrintRunSummary displays the per-action counts and the terminal
// summary line.
func PrintRunSummary(summary models.RunSummary, dryRun bool) {
	fmt.Println("\n## Cleanup Summary")

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ACTION\tINSTANCE COUNT")
	fmt.Fprintf(w, "examined\t%d\n", summary.Examined)
	fmt.Fprintf(w, "stopped\t%d\n", summary.StoppedCount)
	fmt.Fprintf(w, "terminated\t%d\n", summary.TerminatedCount)
	w.Flush()

	fmt.Println()
	if dryRun {
		fmt.Printf("(dry run) %s\n", summary.String())
		return
	}
	fmt.Println(summary.String())
}
