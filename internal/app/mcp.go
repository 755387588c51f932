package app

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/halfmoon-studio/studiodesk/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP stdio server over the project database",
	Long: `Start a Model Context Protocol stdio server that an assistant can query
for project health. The server exposes four tools:

  get_project_health     Current health, score and reasons for one project
  list_at_risk_projects  Every project that is AT_RISK or OVERDUE, worst first
  compute_health         Score an arbitrary set of project facts
  list_open_leads        Leads that are not yet won or lost

Add to an MCP client configuration:
  {"mcpServers":{"studiodesk":{"command":"studiodesk","args":["mcp"]}}}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	srv := mcp.NewServer(env.db, env.cfg.HealthConfig())
	return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
}
