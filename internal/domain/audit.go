package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditAction enumerates the security events the audit trail records.
// Any other value is rejected at write time.
type AuditAction string

const (
	ActionAuthorizationBreach AuditAction = "authorization_breach"
	ActionException           AuditAction = "exception"
	ActionSlowPerformance     AuditAction = "slow_performance"
)

// Valid reports whether a is one of the defined audit actions.
func (a AuditAction) Valid() bool {
	switch a {
	case ActionAuthorizationBreach, ActionException, ActionSlowPerformance:
		return true
	}
	return false
}

// Field bounds and defaulting sentinels for audit entries.
const (
	AuditDetailsMaxLen = 1000
	AuditAddressMaxLen = 40 // fits a textual IPv6 address

	AnonymousUser  = "Anonymous"
	UnknownAddress = "Unknown"
	UnknownPath    = "Unknown Path"
)

// AuditLog is a single append-only audit entry. The ID is assigned by the
// store on insert from an ascending sequence; entries are immutable after
// creation except for deletion.
type AuditLog struct {
	ID        int64       `json:"id"`
	TenantID  uuid.UUID   `json:"tenant_id"` // uuid.Nil for anonymous callers
	Action    AuditAction `json:"action"`
	UserID    string      `json:"user_id"`
	Details   string      `json:"details"`
	IPAddress string      `json:"ip_address"`
	Timestamp time.Time   `json:"timestamp"` // UTC
}

// AuditFilter restricts and pages an audit listing. Offset/Limit are computed
// by the query service from page/page_size.
type AuditFilter struct {
	Action *AuditAction
	Offset int
	Limit  int
}

// PageMeta describes one page of a listing alongside post-filter totals.
type PageMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

type AuditRepository interface {
	// Insert appends an entry and assigns entry.ID.
	Insert(ctx context.Context, entry *AuditLog) error
	// List returns one page ordered by id ascending plus the post-filter,
	// pre-pagination total count.
	List(ctx context.Context, filter AuditFilter) ([]*AuditLog, int, error)
	GetByID(ctx context.Context, id int64) (*AuditLog, error)
	// Delete removes an entry and reports the number of rows affected.
	Delete(ctx context.Context, id int64) (int64, error)
}
