// Package app contains the Cobra command tree for studiodesk.
package app

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/halfmoon-studio/studiodesk/internal/output"
	"github.com/halfmoon-studio/studiodesk/internal/portfolio"
	"github.com/halfmoon-studio/studiodesk/internal/store"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "studiodesk",
	Short: "Back office for a small web-design studio",
	Long: `studiodesk keeps the studio's client projects and incoming leads in a
local database, scores every project's delivery health, prices estimate
requests and watches the portfolio for projects slipping behind.

Run 'studiodesk' with no arguments to see a quick dashboard summary.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetFlags(0)
		log.SetPrefix("studiodesk: ")
		log.SetOutput(cmd.ErrOrStderr())
	},
	RunE: runDashboard,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/studiodesk/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}

// dashboard is the JSON shape of the no-argument summary.
type dashboard struct {
	Summary   portfolio.Summary  `json:"summary"`
	AtRisk    []portfolio.Report `json:"at_risk"`
	OpenLeads int                `json:"open_leads"`
}

func runDashboard(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	now := time.Now()
	reports, err := portfolio.Evaluate(cmd.Context(), env.db, env.cfg.HealthConfig(), now, portfolio.Options{})
	if err != nil {
		return err
	}
	leads, err := env.db.ListLeads("")
	if err != nil {
		return fmt.Errorf("listing leads: %w", err)
	}
	open := 0
	for _, l := range leads {
		if l.Status.IsOpen() {
			open++
		}
	}

	d := dashboard{
		Summary:   portfolio.Summarize(reports),
		AtRisk:    portfolio.AtRisk(reports),
		OpenLeads: open,
	}
	if flagJSON {
		return printJSON(cmd, d)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "studiodesk", appVersion)
	fmt.Fprintln(out, output.Section("Portfolio"))
	if d.Summary.Total == 0 {
		fmt.Fprintf(out, " %s\n\n", output.StyleMuted.Render("No projects yet. Add one with 'studiodesk project add <name>'."))
	} else {
		fmt.Fprintf(out, " %d projects: %s on track, %s at risk, %s overdue\n\n",
			d.Summary.Total,
			output.StyleSuccess.Render(fmt.Sprint(d.Summary.OnTrack)),
			output.StyleWarning.Render(fmt.Sprint(d.Summary.AtRisk)),
			output.StyleError.Render(fmt.Sprint(d.Summary.Overdue)))
	}
	if len(d.AtRisk) > 0 {
		printHealthTable(cmd, d.AtRisk, now)
	}
	fmt.Fprintf(out, " %s %d\n", output.StyleLabel.Render("Open leads:"), d.OpenLeads)
	fmt.Fprintln(out)
	fmt.Fprintln(out, output.StyleMuted.Render(" Commands: project, req, milestone, post, health, lead, estimate, audit, watch, mcp"))
	return nil
}

// lookupProject resolves a project by name with a user-facing error.
func lookupProject(db *store.DB, name string) (*store.Project, error) {
	p, err := db.GetProjectByName(name)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("no project named %q", name)
		}
		return nil, err
	}
	return p, nil
}
