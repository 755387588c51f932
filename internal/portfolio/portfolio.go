// Package portfolio scores every project in the studio at once.
package portfolio

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/halfmoon-studio/studiodesk/internal/health"
	"github.com/halfmoon-studio/studiodesk/internal/store"
)

// Source supplies projects and their scorer inputs. *store.DB satisfies it.
type Source interface {
	ListProjects(f store.ProjectFilter) ([]store.Project, error)
	ProjectSignals(projectID int64, now time.Time) (health.Input, error)
}

// Report is one project's health as of a batch evaluation.
type Report struct {
	Project store.Project `json:"project"`
	Input   health.Input  `json:"input"`
	Result  health.Result `json:"result"`
}

// Summary counts projects per health level.
type Summary struct {
	Total   int `json:"total"`
	OnTrack int `json:"on_track"`
	AtRisk  int `json:"at_risk"`
	Overdue int `json:"overdue"`
}

// Options tunes Evaluate.
type Options struct {
	// Filter restricts which projects are evaluated.
	Filter store.ProjectFilter

	// Concurrency bounds the number of projects scored at once.
	// Zero uses GOMAXPROCS.
	Concurrency int
}

// Evaluate scores every project matching opts.Filter against a single now.
// Reports are ordered worst first: by health severity, then score, then
// name.
func Evaluate(ctx context.Context, src Source, cfg health.Config, now time.Time, opts Options) ([]Report, error) {
	projects, err := src.ListProjects(opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	reports := make([]Report, len(projects))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range projects {
		p := projects[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			in, err := src.ProjectSignals(p.ID, now)
			if err != nil {
				return fmt.Errorf("collecting signals for %q: %w", p.Name, err)
			}
			reports[i] = Report{
				Project: p,
				Input:   in,
				Result:  health.ComputeAt(in, cfg, now),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	Sort(reports)
	return reports, nil
}

// Sort orders reports worst first: by health severity, then score, then
// project name.
func Sort(reports []Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		a, b := reports[i].Result, reports[j].Result
		if sa, sb := a.Health.Severity(), b.Health.Severity(); sa != sb {
			return sa > sb
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return reports[i].Project.Name < reports[j].Project.Name
	})
}

// Summarize counts reports per health level.
func Summarize(reports []Report) Summary {
	s := Summary{Total: len(reports)}
	for _, r := range reports {
		switch r.Result.Health {
		case health.OnTrack:
			s.OnTrack++
		case health.AtRisk:
			s.AtRisk++
		case health.Overdue:
			s.Overdue++
		}
	}
	return s
}

// AtRisk returns the reports that are not ON_TRACK, preserving order.
func AtRisk(reports []Report) []Report {
	var out []Report
	for _, r := range reports {
		if r.Result.Health != health.OnTrack {
			out = append(out, r)
		}
	}
	return out
}
