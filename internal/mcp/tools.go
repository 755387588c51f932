package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/halfmoon-studio/studiodesk/internal/health"
	"github.com/halfmoon-studio/studiodesk/internal/portfolio"
	"github.com/halfmoon-studio/studiodesk/internal/store"
)

// ProjectHealthResult is one project's current health.
type ProjectHealthResult struct {
	Name    string        `json:"name"`
	Client  string        `json:"client,omitempty"`
	Status  health.Status `json:"status"`
	Health  health.Health `json:"health"`
	Score   int           `json:"score"`
	Reasons []string      `json:"reasons"`
	Signals health.Input  `json:"signals"`
}

// AtRiskProjectsResult lists every project that is not ON_TRACK.
type AtRiskProjectsResult struct {
	Summary  portfolio.Summary     `json:"summary"`
	Projects []ProjectHealthResult `json:"projects"`
}

// OpenLeadsResult lists leads still in the pipeline.
type OpenLeadsResult struct {
	Leads []store.Lead `json:"leads"`
}

// computeHealthArgs is an ad hoc scorer input. Dates are RFC3339 or
// YYYY-MM-DD; empty means absent.
type computeHealthArgs struct {
	Status                 string          `json:"status"`
	StartDate              string          `json:"start_date"`
	Deadline               string          `json:"deadline"`
	LastActivityAt         string          `json:"last_activity_at"`
	ReqDonePct             float64         `json:"req_done_pct"`
	BlockedTasksCount      int             `json:"blocked_tasks_count"`
	OverdueMilestonesCount int             `json:"overdue_milestones_count"`
	ScopeGrowthPctLast7d   float64         `json:"scope_growth_pct_last_7d"`
	Now                    string          `json:"now"`
	Config                 json.RawMessage `json:"config"`
}

var (
	noArgsSchema = json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
	nameSchema   = json.RawMessage(`{"type":"object","properties":{"name":{"type":"string","description":"Project name"}},"required":["name"],"additionalProperties":false}`)

	computeHealthSchema = json.RawMessage(`{"type":"object","properties":{` +
		`"status":{"type":"string","enum":["PLANNING","DESIGN","DEVELOPMENT","REVIEW","DEPLOYED","SUPPORT"]},` +
		`"start_date":{"type":"string","description":"RFC3339 or YYYY-MM-DD"},` +
		`"deadline":{"type":"string","description":"RFC3339 or YYYY-MM-DD"},` +
		`"last_activity_at":{"type":"string","description":"RFC3339 or YYYY-MM-DD"},` +
		`"req_done_pct":{"type":"number"},` +
		`"blocked_tasks_count":{"type":"integer"},` +
		`"overdue_milestones_count":{"type":"integer"},` +
		`"scope_growth_pct_last_7d":{"type":"number"},` +
		`"now":{"type":"string","description":"Evaluation time (default: current time)"},` +
		`"config":{"type":"object","description":"Threshold overrides, e.g. {\"stale_warn_days\":5}. Omitted keys keep the server thresholds; values must be positive."}` +
		`},"required":["status"],"additionalProperties":false}`)
)

// addTools registers all MCP tool handlers on s.
func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "get_project_health",
		Description: "Current delivery health, risk score and top reasons for one project.",
		InputSchema: nameSchema,
		Handler:     s.handleGetProjectHealth,
	})
	s.registerTool(toolDef{
		Name:        "list_at_risk_projects",
		Description: "Every project that is AT_RISK or OVERDUE, worst first, with a portfolio summary.",
		InputSchema: noArgsSchema,
		Handler:     s.handleListAtRisk,
	})
	s.registerTool(toolDef{
		Name:        "compute_health",
		Description: "Score an ad hoc project record without storing it.",
		InputSchema: computeHealthSchema,
		Handler:     s.handleComputeHealth,
	})
	s.registerTool(toolDef{
		Name:        "list_open_leads",
		Description: "Leads that are neither WON nor LOST, newest first.",
		InputSchema: noArgsSchema,
		Handler:     s.handleListOpenLeads,
	})
}

// handleGetProjectHealth scores the named project.
func (s *Server) handleGetProjectHealth(_ context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if params.Name == "" {
		return nil, errors.New("name is required")
	}

	p, err := s.db.GetProjectByName(params.Name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("no project named %q", params.Name)
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	in, err := s.db.ProjectSignals(p.ID, now)
	if err != nil {
		return nil, err
	}
	return projectResult(*p, in, health.ComputeAt(in, s.cfg, now)), nil
}

// handleListAtRisk scores the whole portfolio and keeps the troubled projects.
func (s *Server) handleListAtRisk(ctx context.Context, _ json.RawMessage) (any, error) {
	reports, err := portfolio.Evaluate(ctx, s.db, s.cfg, s.now(), portfolio.Options{})
	if err != nil {
		return nil, err
	}

	result := AtRiskProjectsResult{
		Summary:  portfolio.Summarize(reports),
		Projects: []ProjectHealthResult{},
	}
	for _, r := range portfolio.AtRisk(reports) {
		result.Projects = append(result.Projects, projectResult(r.Project, r.Input, r.Result))
	}
	return result, nil
}

// handleComputeHealth scores an ad hoc input record.
func (s *Server) handleComputeHealth(_ context.Context, args json.RawMessage) (any, error) {
	var params computeHealthArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	status, err := health.ParseStatus(params.Status)
	if err != nil {
		return nil, err
	}
	in := health.Input{
		Status:                 status,
		ReqDonePct:             params.ReqDonePct,
		BlockedTasksCount:      params.BlockedTasksCount,
		OverdueMilestonesCount: params.OverdueMilestonesCount,
		ScopeGrowthPctLast7d:   params.ScopeGrowthPctLast7d,
	}
	if in.StartDate, err = parseDate("start_date", params.StartDate); err != nil {
		return nil, err
	}
	if in.Deadline, err = parseDate("deadline", params.Deadline); err != nil {
		return nil, err
	}
	if in.LastActivityAt, err = parseDate("last_activity_at", params.LastActivityAt); err != nil {
		return nil, err
	}

	now := s.now()
	if params.Now != "" {
		if now, err = parseDate("now", params.Now); err != nil {
			return nil, err
		}
	}

	cfg := s.cfg
	if len(params.Config) > 0 && string(params.Config) != "null" {
		if err := json.Unmarshal(params.Config, &cfg); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}

	return health.ComputeAt(in, cfg, now), nil
}

// handleListOpenLeads returns leads still being worked.
func (s *Server) handleListOpenLeads(_ context.Context, _ json.RawMessage) (any, error) {
	leads, err := s.db.ListLeads("")
	if err != nil {
		return nil, err
	}
	result := OpenLeadsResult{Leads: []store.Lead{}}
	for _, l := range leads {
		if l.Status.IsOpen() {
			result.Leads = append(result.Leads, l)
		}
	}
	return result, nil
}

func projectResult(p store.Project, in health.Input, r health.Result) ProjectHealthResult {
	return ProjectHealthResult{
		Name:    p.Name,
		Client:  p.Client,
		Status:  p.Status,
		Health:  r.Health,
		Score:   r.Score,
		Reasons: r.Reasons,
		Signals: in,
	}
}

// parseDate parses an optional date argument.
func parseDate(field, s string) (time.Time, error) {
	t, err := store.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}
