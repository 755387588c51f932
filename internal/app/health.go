package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/halfmoon-studio/studiodesk/internal/health"
	"github.com/halfmoon-studio/studiodesk/internal/output"
	"github.com/halfmoon-studio/studiodesk/internal/portfolio"
	"github.com/halfmoon-studio/studiodesk/internal/store"
)

var (
	healthRecord  bool
	healthHistory int
	healthStatus  string
	healthAt      string
)

var healthCmd = &cobra.Command{
	Use:   "health [project]",
	Short: "Score delivery health for one project or the whole portfolio",
	Long: `Score every project's delivery health (ON_TRACK, AT_RISK or OVERDUE)
from its deadline, progress, schedule performance, blocked tasks, overdue
milestones, inactivity and recent scope growth. Projects are listed worst
first.

Examples:
  studiodesk health                    # whole portfolio
  studiodesk health bakery             # one project with its top reasons
  studiodesk health --record           # store today's results as snapshots
  studiodesk health bakery --history 10
  studiodesk health --at 2026-04-01    # what the portfolio will look like then`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().BoolVar(&healthRecord, "record", false, "Store the results as health snapshots")
	healthCmd.Flags().IntVar(&healthHistory, "history", 0, "Show the N most recent snapshots for a project")
	healthCmd.Flags().StringVar(&healthStatus, "status", "", "Only projects with this status")
	healthCmd.Flags().StringVar(&healthAt, "at", "", "Evaluate as of this date instead of now")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	now := time.Now()
	if healthAt != "" {
		at, err := store.ParseDate(healthAt)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		now = at
	}
	if healthHistory > 0 && len(args) == 0 {
		return fmt.Errorf("--history needs a project name")
	}
	if healthStatus != "" && len(args) == 1 {
		return fmt.Errorf("--status filters the portfolio and cannot be combined with a project name")
	}

	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	if healthHistory > 0 {
		return showHealthHistory(cmd, env, args[0])
	}

	var filter store.ProjectFilter
	if healthStatus != "" {
		if filter.Status, err = health.ParseStatus(healthStatus); err != nil {
			return err
		}
	}

	var reports []portfolio.Report
	if len(args) == 1 {
		p, err := lookupProject(env.db, args[0])
		if err != nil {
			return err
		}
		_, in, err := env.db.ProjectWithSignals(p.ID, now)
		if err != nil {
			return err
		}
		reports = []portfolio.Report{{Project: *p, Input: in, Result: health.ComputeAt(in, env.cfg.HealthConfig(), now)}}
	} else {
		reports, err = portfolio.Evaluate(cmd.Context(), env.db, env.cfg.HealthConfig(), now, portfolio.Options{Filter: filter})
		if err != nil {
			return err
		}
	}

	if healthRecord {
		for _, r := range reports {
			if _, err := env.db.InsertHealthSnapshot(r.Project.ID, now, r.Result); err != nil {
				return fmt.Errorf("recording health for %s: %w", r.Project.Name, err)
			}
		}
		verbosef("recorded %d health snapshots", len(reports))
	}

	if flagJSON {
		if reports == nil {
			reports = []portfolio.Report{}
		}
		return printJSON(cmd, reports)
	}

	out := cmd.OutOrStdout()
	if len(reports) == 0 {
		fmt.Fprintln(out, output.StyleMuted.Render("No projects."))
		return nil
	}
	if len(args) == 1 {
		printHealthDetail(cmd, reports[0])
	} else {
		s := portfolio.Summarize(reports)
		fmt.Fprintln(out, output.Section("Project Health"))
		fmt.Fprintf(out, " %s on track · %s at risk · %s overdue\n\n",
			output.StyleSuccess.Render(fmt.Sprint(s.OnTrack)),
			output.StyleWarning.Render(fmt.Sprint(s.AtRisk)),
			output.StyleError.Render(fmt.Sprint(s.Overdue)))
		printHealthTable(cmd, reports, now)
	}
	if healthRecord {
		fmt.Fprintf(out, "\n%s Recorded %d snapshot(s)\n", output.StyleSuccess.Render("✓"), len(reports))
	}
	return nil
}

// printHealthTable renders reports as a table with the top reason per row.
func printHealthTable(cmd *cobra.Command, reports []portfolio.Report, now time.Time) {
	tbl := output.NewTable("Project", "Health", "Score", "Deadline", "Top reason").AlignRight(2)
	for _, r := range reports {
		reason := ""
		if len(r.Result.Reasons) > 0 {
			reason = r.Result.Reasons[0]
		}
		deadline := output.Date(r.Project.Deadline)
		if !r.Project.Deadline.IsZero() && r.Project.Deadline.After(now) {
			deadline += " " + output.StyleMuted.Render("("+output.RelativeTime(r.Project.Deadline, now)+")")
		}
		tbl.AddRow(r.Project.Name, output.HealthBadge(r.Result.Health), fmt.Sprint(r.Result.Score), deadline, reason)
	}
	fmt.Fprint(cmd.OutOrStdout(), tbl.Render())
}

func printHealthDetail(cmd *cobra.Command, r portfolio.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, output.Section(r.Project.Name))
	fmt.Fprintf(out, " %s %s\n", output.StyleLabel.Render("Health:"), output.HealthBadge(r.Result.Health))
	fmt.Fprintf(out, " %s %d\n", output.StyleLabel.Render("Score:"), r.Result.Score)
	if len(r.Result.Reasons) == 0 {
		fmt.Fprintf(out, " %s %s\n", output.StyleLabel.Render("Reasons:"), output.StyleMuted.Render("none"))
		return
	}
	fmt.Fprintf(out, " %s %s\n", output.StyleLabel.Render("Reasons:"), strings.Join(r.Result.Reasons, "; "))
}

func showHealthHistory(cmd *cobra.Command, env *env, name string) error {
	p, err := lookupProject(env.db, name)
	if err != nil {
		return err
	}
	snaps, err := env.db.ListHealthSnapshots(p.ID, healthHistory)
	if err != nil {
		return err
	}
	if flagJSON {
		if snaps == nil {
			snaps = []store.HealthSnapshot{}
		}
		return printJSON(cmd, snaps)
	}

	out := cmd.OutOrStdout()
	if len(snaps) == 0 {
		fmt.Fprintf(out, "%s\n", output.StyleMuted.Render("No snapshots for "+p.Name+". Record some with 'studiodesk health --record'."))
		return nil
	}
	fmt.Fprintln(out, output.Section("Health history: "+p.Name))
	tbl := output.NewTable("Recorded", "Health", "Score", "Change", "Reasons").AlignRight(2)
	for i, s := range snaps {
		// Snapshots are newest first; compare with the next older one.
		change := ""
		if i+1 < len(snaps) {
			change = output.ScoreDelta(s.Score - snaps[i+1].Score)
		}
		tbl.AddRow(s.ComputedAt.Local().Format("2006-01-02 15:04"), output.HealthBadge(s.Health),
			fmt.Sprint(s.Score), change, strings.Join(s.Reasons, "; "))
	}
	fmt.Fprint(out, tbl.Render())
	return nil
}
