// Package authz implements the role-tiered access-control engine and the
// permission service that fronts it. Decisions are computed fresh on every
// check; roles can change between requests, so nothing here is cached.
package authz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/keyfort/keyfort/internal/domain"
	"github.com/keyfort/keyfort/internal/requestctx"
)

// BreachLogger records a denied access attempt in the audit trail.
// *audit.Recorder satisfies this interface.
type BreachLogger interface {
	LogAuthorizationBreach(ctx context.Context) error
}

// Authorizer decides whether the ambient caller may act on a target user's
// data. It returns only true/false; lookup faults propagate to the caller.
type Authorizer struct {
	users domain.UserRepository
}

func NewAuthorizer(users domain.UserRepository) *Authorizer {
	return &Authorizer{users: users}
}

// CanAccess evaluates the tiered access rules, in order:
//
//  1. admin callers go through the admin check below;
//  2. superadmin callers are always allowed;
//  3. everyone else is allowed only on their own id (case-insensitive).
//
// The self-access path compares ids only and does not require the target to
// exist; existence is the resource layer's concern, not authorization's.
func (a *Authorizer) CanAccess(ctx context.Context, targetID string) (bool, error) {
	role, _ := requestctx.Role(ctx)
	callerID, _ := requestctx.UserID(ctx)

	switch role {
	case domain.RoleAdmin:
		return a.adminCanAccess(ctx, targetID, callerID)
	case domain.RoleSuperAdmin:
		return true, nil
	default:
		if callerID == uuid.Nil {
			return false, nil
		}
		return strings.EqualFold(targetID, callerID.String()), nil
	}
}

// adminCanAccess resolves the target fresh and applies the admin-tier rules:
// a missing target is denied, a superadmin target is never reachable by an
// admin, and an admin may not act on another admin's data. Admins acting on
// themselves or on plain users are allowed.
func (a *Authorizer) adminCanAccess(ctx context.Context, targetID string, callerID uuid.UUID) (bool, error) {
	id, err := uuid.Parse(targetID)
	if err != nil {
		// Not a resolvable user id; nothing for an admin to act on.
		return false, nil
	}

	target, err := a.users.GetByID(ctx, requestctx.TenantIDOrNil(ctx), id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("authz.adminCanAccess: %w", err)
	}

	switch {
	case target.Role == domain.RoleSuperAdmin:
		return false, nil
	case target.Role == domain.RoleAdmin && target.ID != callerID:
		return false, nil
	}

	return true, nil
}

// Service orchestrates authorization checks, breach logging, and uniform
// result shaping.
type Service struct {
	authorizer *Authorizer
	breaches   BreachLogger
}

func NewService(authorizer *Authorizer, breaches BreachLogger) *Service {
	return &Service{authorizer: authorizer, breaches: breaches}
}

// ValidatePermissions checks whether the ambient caller may act on the user
// identified by id. A denial writes exactly one authorization-breach entry
// before the Forbidden result is returned; an approval writes nothing.
func (s *Service) ValidatePermissions(ctx context.Context, id string) (domain.Result, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Result{}, fmt.Errorf("authz.ValidatePermissions: empty target id: %w", domain.ErrInvalidArgument)
	}

	allowed, err := s.authorizer.CanAccess(ctx, id)
	if err != nil {
		return domain.Result{}, fmt.Errorf("authz.ValidatePermissions: %w", err)
	}

	if !allowed {
		if logErr := s.breaches.LogAuthorizationBreach(ctx); logErr != nil {
			return domain.Result{}, fmt.Errorf("authz.ValidatePermissions: breach log: %w", logErr)
		}
		return domain.Fail(domain.MsgForbidden), nil
	}

	return domain.OK(), nil
}
