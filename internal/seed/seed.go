// Package seed loads projects from YAML seed files into the store.
package seed

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/halfmoon-studio/studiodesk/internal/health"
	"github.com/halfmoon-studio/studiodesk/internal/store"
)

// File is the top-level shape of a seed file.
type File struct {
	Projects []Project `yaml:"projects"`
}

// Project is one seeded project with its checklist, milestones and updates.
type Project struct {
	Name         string        `yaml:"name"`
	Client       string        `yaml:"client"`
	Status       string        `yaml:"status"`
	StartDate    string        `yaml:"start_date"`
	Deadline     string        `yaml:"deadline"`
	BlockedTasks int           `yaml:"blocked_tasks"`
	Requirements []Requirement `yaml:"requirements"`
	Milestones   []Milestone   `yaml:"milestones"`
	Updates      []string      `yaml:"updates"`
}

// Requirement is a seeded checklist item.
type Requirement struct {
	Title string `yaml:"title"`
	Done  bool   `yaml:"done"`
}

// Milestone is a seeded milestone.
type Milestone struct {
	Title string `yaml:"title"`
	Due   string `yaml:"due"`
	Done  bool   `yaml:"done"`
}

// Writer is the subset of the store a seed file is applied to.
type Writer interface {
	GetProjectByName(name string) (*store.Project, error)
	CreateProject(p *store.Project) error
	AddRequirement(projectID int64, title string) (*store.Requirement, error)
	SetRequirementDone(id int64, done bool) error
	AddMilestone(projectID int64, title string, due time.Time) (*store.Milestone, error)
	CompleteMilestone(id int64) error
	AddUpdate(projectID int64, body string) (*store.Update, error)
}

// Result reports what Apply did.
type Result struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

// Parse decodes a seed file and validates every project in it.
func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	seen := make(map[string]bool)
	for i, p := range f.Projects {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("project %d: name is required", i+1)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("project %q listed twice", p.Name)
		}
		seen[p.Name] = true
		if _, err := p.toStore(); err != nil {
			return nil, fmt.Errorf("project %q: %w", p.Name, err)
		}
		for _, m := range p.Milestones {
			if _, err := store.ParseDate(m.Due); err != nil || m.Due == "" {
				return nil, fmt.Errorf("project %q: milestone %q needs a due date", p.Name, m.Title)
			}
		}
	}
	return &f, nil
}

// Apply creates every project in f that does not already exist. Existing
// projects are skipped untouched.
func Apply(w Writer, f *File) (*Result, error) {
	res := &Result{Created: []string{}, Skipped: []string{}}
	for _, sp := range f.Projects {
		if _, err := w.GetProjectByName(sp.Name); err == nil {
			res.Skipped = append(res.Skipped, sp.Name)
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return res, err
		}

		p, err := sp.toStore()
		if err != nil {
			return res, fmt.Errorf("project %q: %w", sp.Name, err)
		}
		if err := w.CreateProject(p); err != nil {
			return res, err
		}

		for _, r := range sp.Requirements {
			req, err := w.AddRequirement(p.ID, r.Title)
			if err != nil {
				return res, fmt.Errorf("project %q: %w", sp.Name, err)
			}
			if r.Done {
				if err := w.SetRequirementDone(req.ID, true); err != nil {
					return res, err
				}
			}
		}
		for _, m := range sp.Milestones {
			due, _ := store.ParseDate(m.Due)
			ms, err := w.AddMilestone(p.ID, m.Title, due)
			if err != nil {
				return res, fmt.Errorf("project %q: %w", sp.Name, err)
			}
			if m.Done {
				if err := w.CompleteMilestone(ms.ID); err != nil {
					return res, err
				}
			}
		}
		for _, body := range sp.Updates {
			if _, err := w.AddUpdate(p.ID, body); err != nil {
				return res, fmt.Errorf("project %q: %w", sp.Name, err)
			}
		}
		res.Created = append(res.Created, sp.Name)
	}
	return res, nil
}

func (p Project) toStore() (*store.Project, error) {
	out := &store.Project{
		Name:         p.Name,
		Client:       p.Client,
		BlockedTasks: p.BlockedTasks,
	}
	if p.Status != "" {
		st, err := health.ParseStatus(p.Status)
		if err != nil {
			return nil, err
		}
		out.Status = st
	}
	var err error
	if out.StartDate, err = store.ParseDate(p.StartDate); err != nil {
		return nil, err
	}
	if out.Deadline, err = store.ParseDate(p.Deadline); err != nil {
		return nil, err
	}
	return out, nil
}
