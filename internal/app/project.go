package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/halfmoon-studio/studiodesk/internal/health"
	"github.com/halfmoon-studio/studiodesk/internal/output"
	"github.com/halfmoon-studio/studiodesk/internal/seed"
	"github.com/halfmoon-studio/studiodesk/internal/store"
)

var (
	projectClient   string
	projectStatus   string
	projectStart    string
	projectDeadline string
	projectBlocked  int
	projectRename   string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage client projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a project",
	Long: `Add a client project. Dates are YYYY-MM-DD or RFC3339.

Examples:
  studiodesk project add bakery --client "Crumbs Ltd" --start 2026-03-01 --deadline 2026-04-15
  studiodesk project add florist --status design`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectAdd,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a project with its health, checklist, milestones and updates",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectShow,
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Change a project's fields",
	Long: `Change only the fields whose flags are given. Pass an empty string to
clear a date.

Examples:
  studiodesk project update bakery --status review
  studiodesk project update bakery --blocked 3 --deadline 2026-05-01
  studiodesk project update bakery --rename bakery-site`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectUpdate,
}

var projectRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a project and everything attached to it",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectRm,
}

var projectImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Create projects from a YAML seed file",
	Long: `Create every project listed in a YAML seed file. Projects that already
exist are skipped.

  projects:
    - name: bakery
      client: Crumbs Ltd
      status: development
      start_date: 2026-03-01
      deadline: 2026-04-15
      requirements:
        - title: Home page
          done: true
      milestones:
        - title: Design sign-off
          due: 2026-03-08
      updates:
        - Kickoff call done`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectImport,
}

func init() {
	projectAddCmd.Flags().StringVar(&projectClient, "client", "", "Client name")
	projectAddCmd.Flags().StringVar(&projectStatus, "status", "", "Project status ("+statusList()+"; default planning)")
	projectAddCmd.Flags().StringVar(&projectStart, "start", "", "Start date")
	projectAddCmd.Flags().StringVar(&projectDeadline, "deadline", "", "Deadline")
	projectAddCmd.Flags().IntVar(&projectBlocked, "blocked", 0, "Number of blocked tasks")

	projectListCmd.Flags().StringVar(&projectStatus, "status", "", "Only projects with this status")
	projectListCmd.Flags().StringVar(&projectClient, "client", "", "Only projects for this client")

	projectUpdateCmd.Flags().StringVar(&projectClient, "client", "", "Client name")
	projectUpdateCmd.Flags().StringVar(&projectStatus, "status", "", "Project status ("+statusList()+")")
	projectUpdateCmd.Flags().StringVar(&projectStart, "start", "", "Start date")
	projectUpdateCmd.Flags().StringVar(&projectDeadline, "deadline", "", "Deadline")
	projectUpdateCmd.Flags().IntVar(&projectBlocked, "blocked", 0, "Number of blocked tasks")
	projectUpdateCmd.Flags().StringVar(&projectRename, "rename", "", "New project name")

	projectCmd.AddCommand(projectAddCmd, projectListCmd, projectShowCmd, projectUpdateCmd, projectRmCmd, projectImportCmd)
	rootCmd.AddCommand(projectCmd)
}

func statusList() string {
	names := make([]string, len(health.Statuses))
	for i, s := range health.Statuses {
		names[i] = strings.ToLower(string(s))
	}
	return strings.Join(names, ", ")
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	status := health.StatusPlanning
	if projectStatus != "" {
		st, err := health.ParseStatus(projectStatus)
		if err != nil {
			return err
		}
		status = st
	}
	start, err := store.ParseDate(projectStart)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	deadline, err := store.ParseDate(projectDeadline)
	if err != nil {
		return fmt.Errorf("--deadline: %w", err)
	}
	if projectBlocked < 0 {
		return fmt.Errorf("--blocked must not be negative")
	}
	if !start.IsZero() && !deadline.IsZero() && deadline.Before(start) {
		return fmt.Errorf("deadline %s is before start %s", output.Date(deadline), output.Date(start))
	}

	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	p := &store.Project{
		Name:         args[0],
		Client:       projectClient,
		Status:       status,
		StartDate:    start,
		Deadline:     deadline,
		BlockedTasks: projectBlocked,
	}
	if err := env.db.CreateProject(p); err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cmd, p)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Added project %s\n", output.StyleSuccess.Render("✓"), output.StyleBold.Render(p.Name))
	fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", output.StyleLabel.Render("Portal token:"), output.StyleMuted.Render(p.PortalToken))
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	var filter store.ProjectFilter
	if projectStatus != "" {
		st, err := health.ParseStatus(projectStatus)
		if err != nil {
			return err
		}
		filter.Status = st
	}
	filter.Client = projectClient

	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	projects, err := env.db.ListProjects(filter)
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}
	if flagJSON {
		if projects == nil {
			projects = []store.Project{}
		}
		return printJSON(cmd, projects)
	}
	if len(projects) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), output.StyleMuted.Render("No projects."))
		return nil
	}

	now := time.Now()
	tbl := output.NewTable("Project", "Client", "Status", "Start", "Deadline", "Last activity")
	for _, p := range projects {
		tbl.AddRow(p.Name, p.Client, string(p.Status), output.Date(p.StartDate), output.Date(p.Deadline),
			output.RelativeTime(p.LastActivityAt, now))
	}
	fmt.Fprint(cmd.OutOrStdout(), tbl.Render())
	return nil
}

// projectDetail is the JSON shape of 'project show'.
type projectDetail struct {
	Project      *store.Project      `json:"project"`
	Health       health.Result       `json:"health"`
	Signals      health.Input        `json:"signals"`
	Requirements []store.Requirement `json:"requirements"`
	Milestones   []store.Milestone   `json:"milestones"`
	Updates      []store.Update      `json:"updates"`
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	p, err := lookupProject(env.db, args[0])
	if err != nil {
		return err
	}
	now := time.Now()
	_, in, err := env.db.ProjectWithSignals(p.ID, now)
	if err != nil {
		return err
	}
	d := projectDetail{Project: p, Signals: in, Health: health.ComputeAt(in, env.cfg.HealthConfig(), now)}
	if d.Requirements, err = env.db.ListRequirements(p.ID); err != nil {
		return err
	}
	if d.Milestones, err = env.db.ListMilestones(p.ID); err != nil {
		return err
	}
	if d.Updates, err = env.db.ListUpdates(p.ID, 5); err != nil {
		return err
	}
	if flagJSON {
		return printJSON(cmd, d)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, output.Section(p.Name))
	row := func(label, value string) {
		fmt.Fprintf(out, " %s %s\n", output.StyleLabel.Render(label), value)
	}
	row("Client:", p.Client)
	row("Status:", string(p.Status))
	row("Health:", fmt.Sprintf("%s %s", output.HealthBadge(d.Health.Health), output.StyleMuted.Render(fmt.Sprintf("(score %d)", d.Health.Score))))
	for _, r := range d.Health.Reasons {
		row("", output.StyleMuted.Render("• "+r))
	}
	row("Start:", output.Date(p.StartDate))
	row("Deadline:", fmt.Sprintf("%s %s", output.Date(p.Deadline), deadlineHint(p.Deadline, now)))
	row("Progress:", output.ProgressBar(in.ReqDonePct, 20))
	row("Blocked tasks:", fmt.Sprint(p.BlockedTasks))
	row("Last activity:", output.RelativeTime(p.LastActivityAt, now))
	row("Portal token:", output.StyleMuted.Render(p.PortalToken))

	if len(d.Requirements) > 0 {
		fmt.Fprintln(out, output.Section("Checklist"))
		for _, r := range d.Requirements {
			mark := output.StyleMuted.Render("○")
			if r.Done {
				mark = output.StyleSuccess.Render("✓")
			}
			fmt.Fprintf(out, " %s %s %s\n", mark, r.Title, output.StyleMuted.Render(fmt.Sprintf("#%d", r.ID)))
		}
	}
	if len(d.Milestones) > 0 {
		fmt.Fprintln(out, output.Section("Milestones"))
		for _, m := range d.Milestones {
			fmt.Fprintf(out, " %s %s %s %s\n", milestoneMark(m, now), output.Date(m.DueDate), m.Title,
				output.StyleMuted.Render(fmt.Sprintf("#%d", m.ID)))
		}
	}
	if len(d.Updates) > 0 {
		fmt.Fprintln(out, output.Section("Recent updates"))
		for _, u := range d.Updates {
			fmt.Fprintf(out, " %s %s\n", output.StyleMuted.Render(output.RelativeTime(u.CreatedAt, now)+":"), u.Body)
		}
	}
	fmt.Fprintln(out)
	return nil
}

func deadlineHint(deadline, now time.Time) string {
	if deadline.IsZero() {
		return ""
	}
	if now.After(deadline) {
		return output.StyleError.Render("(passed)")
	}
	return output.StyleMuted.Render("(" + output.RelativeTime(deadline, now) + ")")
}

func milestoneMark(m store.Milestone, now time.Time) string {
	switch {
	case m.Done:
		return output.StyleSuccess.Render("✓")
	case m.DueDate.Before(now):
		return output.StyleError.Render("!")
	default:
		return output.StyleMuted.Render("○")
	}
}

func runProjectUpdate(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	p, err := lookupProject(env.db, args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	changed := false
	if flags.Changed("client") {
		p.Client, changed = projectClient, true
	}
	if flags.Changed("status") {
		if p.Status, err = health.ParseStatus(projectStatus); err != nil {
			return err
		}
		changed = true
	}
	if flags.Changed("start") {
		if p.StartDate, err = store.ParseDate(projectStart); err != nil {
			return fmt.Errorf("--start: %w", err)
		}
		changed = true
	}
	if flags.Changed("deadline") {
		if p.Deadline, err = store.ParseDate(projectDeadline); err != nil {
			return fmt.Errorf("--deadline: %w", err)
		}
		changed = true
	}
	if flags.Changed("blocked") {
		if projectBlocked < 0 {
			return fmt.Errorf("--blocked must not be negative")
		}
		p.BlockedTasks, changed = projectBlocked, true
	}
	if flags.Changed("rename") {
		if strings.TrimSpace(projectRename) == "" {
			return fmt.Errorf("--rename needs a name")
		}
		p.Name, changed = projectRename, true
	}
	if !changed {
		return fmt.Errorf("nothing to update; see 'studiodesk project update --help'")
	}

	if err := env.db.UpdateProject(p); err != nil {
		return err
	}
	if flagJSON {
		return printJSON(cmd, p)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Updated %s\n", output.StyleSuccess.Render("✓"), output.StyleBold.Render(p.Name))
	return nil
}

func runProjectRm(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	p, err := lookupProject(env.db, args[0])
	if err != nil {
		return err
	}
	if err := env.db.DeleteProject(p.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %s\n", output.StyleSuccess.Render("✓"), p.Name)
	return nil
}

func runProjectImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	file, err := seed.Parse(f)
	if err != nil {
		return err
	}

	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	res, err := seed.Apply(env.db, file)
	if err != nil {
		return fmt.Errorf("importing %s: %w", args[0], err)
	}
	if flagJSON {
		return printJSON(cmd, res)
	}
	out := cmd.OutOrStdout()
	for _, name := range res.Created {
		fmt.Fprintf(out, "%s Created %s\n", output.StyleSuccess.Render("✓"), name)
	}
	for _, name := range res.Skipped {
		fmt.Fprintf(out, "%s Skipped %s (already exists)\n", output.StyleMuted.Render("-"), name)
	}
	return nil
}
