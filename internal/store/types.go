// Package store provides SQLite database access for studiodesk projects,
// leads and health history.
package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/halfmoon-studio/studiodesk/internal/health"
)

// Project is a client engagement tracked by the studio.
type Project struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	Client         string        `json:"client,omitempty"`
	Status         health.Status `json:"status"`
	StartDate      time.Time     `json:"start_date,omitzero"`
	Deadline       time.Time     `json:"deadline,omitzero"`
	BlockedTasks   int           `json:"blocked_tasks"`
	PortalToken    string        `json:"portal_token"`
	LastActivityAt time.Time     `json:"last_activity_at,omitzero"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// ProjectFilter narrows ListProjects. Zero fields match everything.
type ProjectFilter struct {
	Status health.Status
	Client string
}

// Requirement is one checklist item in a project's scope.
type Requirement struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Title     string    `json:"title"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
	DoneAt    time.Time `json:"done_at,omitzero"`
}

// Milestone is a dated delivery checkpoint.
type Milestone struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	Title       string    `json:"title"`
	DueDate     time.Time `json:"due_date"`
	Done        bool      `json:"done"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
}

// Update is a progress post shown to the client in the portal.
type Update struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// HealthSnapshot is a recorded health.Result for a project.
type HealthSnapshot struct {
	ID         int64         `json:"id"`
	ProjectID  int64         `json:"project_id"`
	ComputedAt time.Time     `json:"computed_at"`
	Health     health.Health `json:"health"`
	Score      int           `json:"score"`
	Reasons    []string      `json:"reasons"`
}

// LeadSource records which public form produced a lead.
type LeadSource string

const (
	SourceContact  LeadSource = "contact"
	SourceEstimate LeadSource = "estimate"
	SourceAudit    LeadSource = "audit"
)

// LeadStatus is a lead's position in the sales pipeline.
type LeadStatus string

const (
	LeadNew       LeadStatus = "NEW"
	LeadContacted LeadStatus = "CONTACTED"
	LeadQualified LeadStatus = "QUALIFIED"
	LeadProposal  LeadStatus = "PROPOSAL"
	LeadWon       LeadStatus = "WON"
	LeadLost      LeadStatus = "LOST"
)

// LeadStatuses lists the pipeline stages in order.
var LeadStatuses = []LeadStatus{LeadNew, LeadContacted, LeadQualified, LeadProposal, LeadWon, LeadLost}

// ParseLeadStatus converts a case-insensitive name to a LeadStatus.
func ParseLeadStatus(s string) (LeadStatus, error) {
	st := LeadStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range LeadStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown lead status %q", s)
}

// IsOpen reports whether the lead still needs attention.
func (s LeadStatus) IsOpen() bool {
	return s != LeadWon && s != LeadLost
}

// ParseLeadSource converts a case-insensitive name to a LeadSource.
func ParseLeadSource(s string) (LeadSource, error) {
	src := LeadSource(strings.ToLower(strings.TrimSpace(s)))
	switch src {
	case SourceContact, SourceEstimate, SourceAudit:
		return src, nil
	}
	return "", fmt.Errorf("unknown lead source %q", s)
}

// Lead is an inbound enquiry from the marketing site.
type Lead struct {
	ID        int64      `json:"id"`
	Ref       string     `json:"ref"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Company   string     `json:"company,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Website   string     `json:"website,omitempty"`
	Source    LeadSource `json:"source"`
	Status    LeadStatus `json:"status"`
	Budget    float64    `json:"budget,omitempty"`
	Message   string     `json:"message,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
