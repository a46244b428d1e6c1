// Package requestctx carries the ambient request identity (principal, role,
// tenant, client address, request path) through context.Context. The
// middleware stack populates it; authorization and audit logging consume it.
package requestctx

import (
	"context"

	"github.com/google/uuid"

	"github.com/keyfort/keyfort/internal/domain"
)

type contextKey string

const (
	keyTenantID contextKey = "tenant_id"
	keyUserID   contextKey = "user_id"
	keyRole     contextKey = "role"
	keyAddr     contextKey = "client_addr"
	keyPath     contextKey = "request_path"
)

func WithTenantID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, keyTenantID, id)
}

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, keyUserID, id)
}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, keyRole, role)
}

func WithClientAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, keyAddr, addr)
}

func WithRequestPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, keyPath, path)
}

func TenantID(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(keyTenantID).(uuid.UUID)
	return v, ok
}

func UserID(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(keyUserID).(uuid.UUID)
	return v, ok
}

func Role(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRole).(string)
	return v, ok
}

func ClientAddr(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyAddr).(string)
	return v, ok
}

func RequestPath(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyPath).(string)
	return v, ok
}

// TenantIDOrNil returns the tenant id or uuid.Nil when unauthenticated.
func TenantIDOrNil(ctx context.Context) uuid.UUID {
	v, _ := TenantID(ctx)
	return v
}

// PrincipalOrAnonymous returns the caller's id, or the Anonymous sentinel
// when no authenticated principal is present.
func PrincipalOrAnonymous(ctx context.Context) string {
	if id, ok := UserID(ctx); ok && id != uuid.Nil {
		return id.String()
	}
	return domain.AnonymousUser
}

// AddrOrUnknown returns the caller's IP, or the Unknown sentinel.
func AddrOrUnknown(ctx context.Context) string {
	if addr, ok := ClientAddr(ctx); ok && addr != "" {
		return addr
	}
	return domain.UnknownAddress
}

// PathOrUnknown returns the request path, or the Unknown Path sentinel.
func PathOrUnknown(ctx context.Context) string {
	if path, ok := RequestPath(ctx); ok && path != "" {
		return path
	}
	return domain.UnknownPath
}
