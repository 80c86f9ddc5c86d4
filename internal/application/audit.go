package application

import (
	"context"
	"time"

	"task-rbac/internal/domain"
	"task-rbac/internal/ports"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 100
)

type AuditQuery struct {
	UserID   string
	Action   string
	Resource string
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

type AuditPage struct {
	Entries []domain.AuditEntry `json:"data"`
	Total   int                 `json:"total"`
	Page    int                 `json:"page"`
	Limit   int                 `json:"limit"`
}

// AuditService serves the administrative audit report. The log itself does
// not restrict readers; the Owner/Admin gate lives here.
type AuditService struct {
	log   ports.AuditLog
	authz *AuthorizationService
}

func NewAuditService(log ports.AuditLog, authz *AuthorizationService) *AuditService {
	return &AuditService{log: log, authz: authz}
}

var auditReaders = domain.AccessRequirement{
	Roles:       []domain.RoleKind{domain.RoleOwner, domain.RoleAdmin},
	Permissions: []domain.PermissionKind{domain.PermPermissionRead},
}

// Query returns the caller's organization entries, newest first.
func (s *AuditService) Query(ctx context.Context, user *domain.User, q AuditQuery) (AuditPage, error) {
	if d := s.authz.Decide(ctx, user, auditReaders); !d.Allowed {
		return AuditPage{}, d.Err()
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return AuditPage{}, domain.ErrInvalidInput
	}
	entries := s.log.Query(ctx, domain.AuditFilter{
		UserID:         q.UserID,
		OrganizationID: user.OrganizationID,
		Action:         q.Action,
		Resource:       q.Resource,
		From:           q.From,
		To:             q.To,
	})

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	switch {
	case limit <= 0:
		limit = defaultAuditLimit
	case limit > maxAuditLimit:
		limit = maxAuditLimit
	}
	start := len(entries)
	if page-1 <= len(entries)/limit {
		start = min((page-1)*limit, len(entries))
	}
	end := min(start+limit, len(entries))
	return AuditPage{Entries: entries[start:end], Total: len(entries), Page: page, Limit: limit}, nil
}
