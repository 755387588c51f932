package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/halfmoon-studio/studiodesk/internal/output"
	"github.com/halfmoon-studio/studiodesk/internal/store"
)

var (
	reqUndo      bool
	milestoneDue string
)

var reqCmd = &cobra.Command{
	Use:   "req",
	Short: "Manage a project's requirement checklist",
}

var reqAddCmd = &cobra.Command{
	Use:   "add <project> <title...>",
	Short: "Add a requirement",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runReqAdd,
}

var reqDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a requirement done (or reopen it with --undo)",
	Args:  cobra.ExactArgs(1),
	RunE:  runReqDone,
}

var reqListCmd = &cobra.Command{
	Use:   "list <project>",
	Short: "List a project's requirements",
	Args:  cobra.ExactArgs(1),
	RunE:  runReqList,
}

var milestoneCmd = &cobra.Command{
	Use:   "milestone",
	Short: "Manage a project's milestones",
}

var milestoneAddCmd = &cobra.Command{
	Use:     "add <project> <title...>",
	Short:   "Add a milestone",
	Example: `  studiodesk milestone add bakery Design sign-off --due 2026-03-20`,
	Args:    cobra.MinimumNArgs(2),
	RunE:    runMilestoneAdd,
}

var milestoneDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a milestone complete",
	Args:  cobra.ExactArgs(1),
	RunE:  runMilestoneDone,
}

var milestoneListCmd = &cobra.Command{
	Use:   "list <project>",
	Short: "List a project's milestones",
	Args:  cobra.ExactArgs(1),
	RunE:  runMilestoneList,
}

var postCmd = &cobra.Command{
	Use:   "post <project> <message...>",
	Short: "Post a progress update to the client portal",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runPost,
}

func init() {
	reqDoneCmd.Flags().BoolVar(&reqUndo, "undo", false, "Reopen the requirement instead")
	reqCmd.AddCommand(reqAddCmd, reqDoneCmd, reqListCmd)

	milestoneAddCmd.Flags().StringVar(&milestoneDue, "due", "", "Due date (YYYY-MM-DD or RFC3339)")
	_ = milestoneAddCmd.MarkFlagRequired("due")
	milestoneCmd.AddCommand(milestoneAddCmd, milestoneDoneCmd, milestoneListCmd)

	rootCmd.AddCommand(reqCmd, milestoneCmd, postCmd)
}

func runReqAdd(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	p, err := lookupProject(env.db, args[0])
	if err != nil {
		return err
	}
	r, err := env.db.AddRequirement(p.ID, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(cmd, r)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Added requirement #%d to %s\n", output.StyleSuccess.Render("✓"), r.ID, p.Name)
	return nil
}

func runReqDone(cmd *cobra.Command, args []string) error {
	id, err := parseID("requirement", args[0])
	if err != nil {
		return err
	}
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.db.SetRequirementDone(id, !reqUndo); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("no requirement #%d", id)
		}
		return err
	}
	verb := "Completed"
	if reqUndo {
		verb = "Reopened"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s requirement #%d\n", output.StyleSuccess.Render("✓"), verb, id)
	return nil
}

func runReqList(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	p, err := lookupProject(env.db, args[0])
	if err != nil {
		return err
	}
	reqs, err := env.db.ListRequirements(p.ID)
	if err != nil {
		return err
	}
	if flagJSON {
		if reqs == nil {
			reqs = []store.Requirement{}
		}
		return printJSON(cmd, reqs)
	}
	if len(reqs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), output.StyleMuted.Render("No requirements."))
		return nil
	}

	done := 0
	tbl := output.NewTable("ID", "Done", "Requirement", "Added").AlignRight(0)
	for _, r := range reqs {
		mark := ""
		if r.Done {
			mark = "✓"
			done++
		}
		tbl.AddRow(fmt.Sprint(r.ID), mark, r.Title, output.Date(r.CreatedAt))
	}
	fmt.Fprint(cmd.OutOrStdout(), tbl.Render())
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", output.ProgressBar(float64(done)/float64(len(reqs))*100, 20))
	return nil
}

func runMilestoneAdd(cmd *cobra.Command, args []string) error {
	due, err := store.ParseDate(milestoneDue)
	if err != nil {
		return fmt.Errorf("--due: %w", err)
	}
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	p, err := lookupProject(env.db, args[0])
	if err != nil {
		return err
	}
	m, err := env.db.AddMilestone(p.ID, strings.Join(args[1:], " "), due)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(cmd, m)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Added milestone #%d to %s (due %s)\n",
		output.StyleSuccess.Render("✓"), m.ID, p.Name, output.Date(m.DueDate))
	return nil
}

func runMilestoneDone(cmd *cobra.Command, args []string) error {
	id, err := parseID("milestone", args[0])
	if err != nil {
		return err
	}
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.db.CompleteMilestone(id); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("no milestone #%d", id)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Completed milestone #%d\n", output.StyleSuccess.Render("✓"), id)
	return nil
}

func runMilestoneList(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	p, err := lookupProject(env.db, args[0])
	if err != nil {
		return err
	}
	milestones, err := env.db.ListMilestones(p.ID)
	if err != nil {
		return err
	}
	if flagJSON {
		if milestones == nil {
			milestones = []store.Milestone{}
		}
		return printJSON(cmd, milestones)
	}
	if len(milestones) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), output.StyleMuted.Render("No milestones."))
		return nil
	}

	now := time.Now()
	tbl := output.NewTable("ID", "", "Due", "Milestone").AlignRight(0)
	for _, m := range milestones {
		tbl.AddRow(fmt.Sprint(m.ID), milestoneMark(m, now), output.Date(m.DueDate), m.Title)
	}
	fmt.Fprint(cmd.OutOrStdout(), tbl.Render())
	return nil
}

func runPost(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	p, err := lookupProject(env.db, args[0])
	if err != nil {
		return err
	}
	u, err := env.db.AddUpdate(p.ID, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(cmd, u)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Posted update to %s\n", output.StyleSuccess.Render("✓"), p.Name)
	return nil
}
