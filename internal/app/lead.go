package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/halfmoon-studio/studiodesk/internal/output"
	"github.com/halfmoon-studio/studiodesk/internal/store"
)

var (
	leadName    string
	leadEmail   string
	leadCompany string
	leadPhone   string
	leadWebsite string
	leadBudget  float64
	leadMessage string
	leadSource  string
	leadStatus  string
	leadAll     bool
)

var leadCmd = &cobra.Command{
	Use:   "lead",
	Short: "Manage inbound leads",
}

var leadAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a lead from the contact form",
	Example: `  studiodesk lead add --name "Dana Reyes" --email dana@example.com --budget 5000 \
      --message "New site for our dental practice"`,
	Args: cobra.NoArgs,
	RunE: runLeadAdd,
}

var leadListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open leads (or all with --all)",
	Args:  cobra.NoArgs,
	RunE:  runLeadList,
}

var leadStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Move a lead through the pipeline",
	Long: `Move a lead to another pipeline stage:
  new, contacted, qualified, proposal, won, lost`,
	Args: cobra.ExactArgs(2),
	RunE: runLeadStatus,
}

var leadRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a lead",
	Args:  cobra.ExactArgs(1),
	RunE:  runLeadRm,
}

func init() {
	f := leadAddCmd.Flags()
	f.StringVar(&leadName, "name", "", "Contact name")
	f.StringVar(&leadEmail, "email", "", "Contact email")
	f.StringVar(&leadCompany, "company", "", "Company")
	f.StringVar(&leadPhone, "phone", "", "Phone number")
	f.StringVar(&leadWebsite, "website", "", "Current website")
	f.Float64Var(&leadBudget, "budget", 0, "Stated budget")
	f.StringVar(&leadMessage, "message", "", "Enquiry text")
	f.StringVar(&leadSource, "source", string(store.SourceContact), "Lead source (contact, estimate, audit)")
	_ = leadAddCmd.MarkFlagRequired("name")
	_ = leadAddCmd.MarkFlagRequired("email")

	leadListCmd.Flags().StringVar(&leadStatus, "status", "", "Only leads in this stage")
	leadListCmd.Flags().BoolVar(&leadAll, "all", false, "Include won and lost leads")

	leadCmd.AddCommand(leadAddCmd, leadListCmd, leadStatusCmd, leadRmCmd)
	rootCmd.AddCommand(leadCmd)
}

func runLeadAdd(cmd *cobra.Command, args []string) error {
	src, err := store.ParseLeadSource(leadSource)
	if err != nil {
		return err
	}
	return createLead(cmd, &store.Lead{
		Name:    leadName,
		Email:   leadEmail,
		Company: leadCompany,
		Phone:   leadPhone,
		Website: leadWebsite,
		Budget:  leadBudget,
		Message: leadMessage,
		Source:  src,
	})
}

// createLead stores l and reports it.
func createLead(cmd *cobra.Command, l *store.Lead) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.db.CreateLead(l); err != nil {
		return err
	}
	if flagJSON {
		return printJSON(cmd, l)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Recorded lead #%d from %s %s\n",
		output.StyleSuccess.Render("✓"), l.ID, l.Name, output.StyleMuted.Render("("+string(l.Source)+")"))
	return nil
}

func runLeadList(cmd *cobra.Command, args []string) error {
	var status store.LeadStatus
	if leadStatus != "" {
		st, err := store.ParseLeadStatus(leadStatus)
		if err != nil {
			return err
		}
		status = st
	}

	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	all, err := env.db.ListLeads(status)
	if err != nil {
		return fmt.Errorf("listing leads: %w", err)
	}
	leads := []store.Lead{}
	for _, l := range all {
		if leadAll || status != "" || l.Status.IsOpen() {
			leads = append(leads, l)
		}
	}
	if flagJSON {
		return printJSON(cmd, leads)
	}
	if len(leads) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), output.StyleMuted.Render("No leads."))
		return nil
	}

	now := time.Now()
	cfg := env.cfg
	tbl := output.NewTable("ID", "Name", "Email", "Source", "Status", "Budget", "Received").AlignRight(0, 5)
	for _, l := range leads {
		budget := ""
		if l.Budget > 0 {
			budget = output.Money(cfg.Estimate.Currency, l.Budget)
		}
		tbl.AddRow(fmt.Sprint(l.ID), l.Name, l.Email, string(l.Source), string(l.Status), budget,
			output.RelativeTime(l.CreatedAt, now))
	}
	fmt.Fprint(cmd.OutOrStdout(), tbl.Render())
	return nil
}

func runLeadStatus(cmd *cobra.Command, args []string) error {
	id, err := parseID("lead", args[0])
	if err != nil {
		return err
	}
	status, err := store.ParseLeadStatus(args[1])
	if err != nil {
		return err
	}

	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.db.UpdateLeadStatus(id, status); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("no lead #%d", id)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Lead #%d is now %s\n", output.StyleSuccess.Render("✓"), id, status)
	return nil
}

func runLeadRm(cmd *cobra.Command, args []string) error {
	id, err := parseID("lead", args[0])
	if err != nil {
		return err
	}
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.db.DeleteLead(id); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("no lead #%d", id)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted lead #%d\n", output.StyleSuccess.Render("✓"), id)
	return nil
}
