package domain

import (
	"strings"
	"time"
)

// AuditEntry records one access decision. Seq is the append position inside
// the log and breaks timestamp ties.
type AuditEntry struct {
	Seq            uint64    `json:"seq"`
	UserID         string    `json:"user_id"`
	Action         string    `json:"action"`
	ResourceType   string    `json:"resource"`
	ResourceID     string    `json:"resource_id,omitempty"`
	OrganizationID string    `json:"organization_id"`
	Timestamp      time.Time `json:"timestamp"`
	Success        bool      `json:"success"`
	Reason         string    `json:"reason,omitempty"`
	IPAddress      string    `json:"ip_address,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty"`
}

// AuditFilter predicates are AND-composed; zero values match everything.
// Action and Resource match by substring, From and To are inclusive.
type AuditFilter struct {
	UserID         string
	OrganizationID string
	Action         string
	Resource       string
	From           *time.Time
	To             *time.Time
}

func (f AuditFilter) Matches(e AuditEntry) bool {
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.OrganizationID != "" && e.OrganizationID != f.OrganizationID {
		return false
	}
	if f.Action != "" && !strings.Contains(e.Action, f.Action) {
		return false
	}
	if f.Resource != "" && !strings.Contains(e.ResourceType, f.Resource) {
		return false
	}
	if f.From != nil && e.Timestamp.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Timestamp.After(*f.To) {
		return false
	}
	return true
}
