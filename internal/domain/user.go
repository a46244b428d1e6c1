package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role constants define the three-tier access hierarchy:
// superadmin > admin > user.
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleUser       = "user"
)

// ValidRole reports whether r is one of the defined role tiers.
func ValidRole(r string) bool {
	return r == RoleSuperAdmin || r == RoleAdmin || r == RoleUser
}

type User struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Email        string
	PasswordHash string `json:"-"` // argon2id
	Name         string
	Role         string // "superadmin", "admin", or "user"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID) ([]*User, error)
}
