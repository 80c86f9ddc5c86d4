package ports

import (
	"context"

	"task-rbac/internal/domain"
)

// AuditLog is the append-only sink every access decision is written to.
// Implementations must be safe for concurrent use.
type AuditLog interface {
	Record(ctx context.Context, entry domain.AuditEntry)
	Query(ctx context.Context, filter domain.AuditFilter) []domain.AuditEntry
	Len() int
}

// AuditStore persists audit entries outside the process.
type AuditStore interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
}

type DecisionMetrics interface {
	ObserveDecision(check string, allowed bool)
}
