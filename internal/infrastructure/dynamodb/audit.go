package dynamodb

import (
	"context"
	"fmt"
	"time"

	"task-rbac/internal/domain"
)

type auditRecord struct {
	PK             string    `dynamodbav:"PK"`
	SK             string    `dynamodbav:"SK"`
	EntityType     string    `dynamodbav:"EntityType"`
	Seq            uint64    `dynamodbav:"Seq"`
	UserID         string    `dynamodbav:"UserID"`
	Action         string    `dynamodbav:"Action"`
	ResourceType   string    `dynamodbav:"ResourceType"`
	ResourceID     string    `dynamodbav:"ResourceID,omitempty"`
	OrganizationID string    `dynamodbav:"OrganizationID"`
	Timestamp      time.Time `dynamodbav:"Timestamp"`
	Success        bool      `dynamodbav:"Success"`
	Reason         string    `dynamodbav:"Reason,omitempty"`
	IPAddress      string    `dynamodbav:"IPAddress,omitempty"`
	UserAgent      string    `dynamodbav:"UserAgent,omitempty"`
}

// auditSK sorts lexically by time then append position. Entries without an
// organization share the "-" partition.
func auditSK(e domain.AuditEntry) string {
	return fmt.Sprintf("%s#%020d", e.Timestamp.UTC().Format("2006-01-02T15:04:05.000000000Z"), e.Seq)
}

// AuditStore is the durable mirror of the in-memory audit log.
type AuditStore struct{ client *Client }

func NewAuditStore(client *Client) *AuditStore {
	return &AuditStore{client: client}
}

func (s *AuditStore) Append(ctx context.Context, e domain.AuditEntry) error {
	org := e.OrganizationID
	if org == "" {
		org = "-"
	}
	return s.client.putNew(ctx, "DynamoDB.PutAuditEntry", auditRecord{
		PK:             auditPK(org),
		SK:             auditSK(e),
		EntityType:     "AUDIT",
		Seq:            e.Seq,
		UserID:         e.UserID,
		Action:         e.Action,
		ResourceType:   e.ResourceType,
		ResourceID:     e.ResourceID,
		OrganizationID: e.OrganizationID,
		Timestamp:      e.Timestamp,
		Success:        e.Success,
		Reason:         e.Reason,
		IPAddress:      e.IPAddress,
		UserAgent:      e.UserAgent,
	})
}
