package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/halfmoon-studio/studiodesk/internal/estimate"
	"github.com/halfmoon-studio/studiodesk/internal/output"
	"github.com/halfmoon-studio/studiodesk/internal/store"
)

var (
	estimateType     string
	estimatePages    int
	estimateFeatures []string
	estimateRush     bool
	estimateSave     bool
	estimateName     string
	estimateEmail    string
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Price a website request",
	Long: `Price a website request the way the estimate wizard does: a base package
for the site type, a page rate beyond the included pages, feature add-ons
and an optional rush multiplier. The quote is a range of +/-15%.

Site types: ` + strings.Join(estimate.SiteTypeNames(), ", ") + `
Features:   cms, blog, booking, payments, seo, multilingual, integrations

Examples:
  studiodesk estimate --type brochure --pages 8 --features cms,seo
  studiodesk estimate --type ecommerce --rush --save-lead --name Dana --email dana@example.com`,
	Args: cobra.NoArgs,
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().StringVar(&estimateType, "type", "", "Site type")
	estimateCmd.Flags().IntVar(&estimatePages, "pages", 0, "Number of pages")
	estimateCmd.Flags().StringSliceVar(&estimateFeatures, "features", nil, "Comma-separated feature add-ons")
	estimateCmd.Flags().BoolVar(&estimateRush, "rush", false, "Rush delivery")
	estimateCmd.Flags().BoolVar(&estimateSave, "save-lead", false, "Record the request as a lead")
	estimateCmd.Flags().StringVar(&estimateName, "name", "", "Contact name (with --save-lead)")
	estimateCmd.Flags().StringVar(&estimateEmail, "email", "", "Contact email (with --save-lead)")
	_ = estimateCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	siteType, err := estimate.ParseSiteType(estimateType)
	if err != nil {
		return err
	}
	features, err := estimate.ParseFeatures(estimateFeatures)
	if err != nil {
		return err
	}
	if estimateSave && (estimateName == "" || estimateEmail == "") {
		return fmt.Errorf("--save-lead needs --name and --email")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pricing := estimate.Pricing{
		PageRate:       cfg.Estimate.PageRate,
		RushMultiplier: cfg.Estimate.RushMultiplier,
		Currency:       cfg.Estimate.Currency,
	}
	est, err := estimate.Calculate(estimate.Request{
		SiteType: siteType,
		Pages:    estimatePages,
		Features: features,
		Rush:     estimateRush,
	}, pricing)
	if err != nil {
		return err
	}

	if estimateSave {
		if err := saveEstimateLead(est); err != nil {
			return err
		}
	}

	if flagJSON {
		return printJSON(cmd, est)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, output.Section("Estimate"))
	for _, it := range est.Items {
		fmt.Fprintf(out, " %-40s %12s\n", it.Label, output.Money(est.Currency, it.Amount))
	}
	fmt.Fprintf(out, " %s\n", output.StyleMuted.Render(strings.Repeat("─", 53)))
	fmt.Fprintf(out, " %-40s %12s\n", output.StyleBold.Render("Total"), output.StyleBold.Render(output.Money(est.Currency, est.Total)))
	fmt.Fprintf(out, "\n Quote range: %s to %s, about %d week(s)\n",
		output.Money(est.Currency, est.Low), output.Money(est.Currency, est.High), est.Weeks)
	if estimateSave {
		fmt.Fprintf(out, " %s Saved as a lead for %s\n", output.StyleSuccess.Render("✓"), estimateName)
	}
	return nil
}

func saveEstimateLead(est *estimate.Estimate) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	names := make([]string, len(est.Request.Features))
	for i, f := range est.Request.Features {
		names[i] = string(f)
	}
	msg := fmt.Sprintf("Estimate: %s, %d pages", est.Request.SiteType, est.Request.Pages)
	if len(names) > 0 {
		msg += ", features " + strings.Join(names, ", ")
	}
	if est.Request.Rush {
		msg += ", rush"
	}
	return env.db.CreateLead(&store.Lead{
		Name:    estimateName,
		Email:   estimateEmail,
		Source:  store.SourceEstimate,
		Budget:  est.Total,
		Message: msg,
	})
}
