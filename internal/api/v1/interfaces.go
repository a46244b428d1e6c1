package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/keyfort/keyfort/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Tenants() domain.TenantRepository
	Users() domain.UserRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, tenantID uuid.UUID, email, password, name string) (*domain.User, error)
	Login(ctx context.Context, tenantID uuid.UUID, email, password string) (accessToken, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	ChangePassword(ctx context.Context, tenantID, userID uuid.UUID, oldPassword, newPassword string) error
	ResetPassword(ctx context.Context, tenantID, userID uuid.UUID, newPassword string) error
}

// PermissionService abstracts the access-control check for handler testing.
// *authz.Service satisfies this interface.
type PermissionService interface {
	ValidatePermissions(ctx context.Context, id string) (domain.Result, error)
}

// AuditService abstracts the audit read/delete path for handler testing.
// *audit.Service satisfies this interface.
type AuditService interface {
	GetLogs(ctx context.Context, page, pageSize int, action *domain.AuditAction) ([]*domain.AuditLog, domain.PageMeta, error)
	DeleteLog(ctx context.Context, id string) (domain.Result, error)
}
