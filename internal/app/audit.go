package app

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/halfmoon-studio/studiodesk/internal/store"
)

var (
	auditEmail string
	auditName  string
)

var auditCmd = &cobra.Command{
	Use:   "audit <url>",
	Short: "Record a free website audit request as a lead",
	Example: `  studiodesk audit example.com --email owner@example.com
  studiodesk audit https://shop.example.com --email sam@example.com --name "Sam Lee"`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().StringVar(&auditEmail, "email", "", "Where to send the audit")
	auditCmd.Flags().StringVar(&auditName, "name", "", "Contact name (default: the site's host)")
	_ = auditCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	site, err := normalizeSiteURL(args[0])
	if err != nil {
		return err
	}
	name := auditName
	if name == "" {
		name = site.Hostname()
	}
	return createLead(cmd, &store.Lead{
		Name:    name,
		Email:   auditEmail,
		Website: site.String(),
		Source:  store.SourceAudit,
		Message: "Website audit request",
	})
}

// normalizeSiteURL accepts a bare host or an http(s) URL.
func normalizeSiteURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid site URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("site URL must be http or https, got %q", u.Scheme)
	}
	if u.Hostname() == "" || !strings.Contains(u.Hostname(), ".") {
		return nil, fmt.Errorf("site URL %q has no valid host", raw)
	}
	return u, nil
}
