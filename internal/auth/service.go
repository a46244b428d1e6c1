package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"github.com/keyfort/keyfort/internal/domain"
)

// Sentinel errors for the auth package.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUserAlreadyExists  = errors.New("auth: user already exists")
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrTokenRevoked       = errors.New("auth: token revoked")
)

// argon2id parameters following OWASP recommendations.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// RevocationStore tracks refresh tokens invalidated before their natural
// expiry. *redis.RevocationStore satisfies this interface.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Service provides authentication operations: registration, login, token
// refresh and revocation, and the password lifecycle.
type Service struct {
	users       domain.UserRepository
	revocations RevocationStore
	jwtSecret   string
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

// NewService creates a new auth service.
func NewService(users domain.UserRepository, revocations RevocationStore, jwtSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		users:       users,
		revocations: revocations,
		jwtSecret:   jwtSecret,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
	}
}

// Register creates a new user with email/password. Returns the created user.
// The password is hashed with argon2id before storage.
func (s *Service) Register(ctx context.Context, tenantID uuid.UUID, email, password, name string) (*domain.User, error) {
	existing, err := s.users.GetByEmail(ctx, tenantID, email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("auth.Register: %w", ErrUserAlreadyExists)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	return user, nil
}

// Login validates email/password and returns access + refresh JWT tokens.
func (s *Service) Login(ctx context.Context, tenantID uuid.UUID, email, password string) (accessToken, refreshToken string, err error) {
	user, err := s.users.GetByEmail(ctx, tenantID, email)
	if err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	if !verifyPassword(password, user.PasswordHash) {
		return "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	accessToken, err = IssueAccessToken(s.jwtSecret, user.TenantID, user.ID, user.Role, s.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", err)
	}

	refreshToken, err = IssueRefreshToken(s.jwtSecret, user.TenantID, user.ID, user.Role, s.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", err)
	}

	return accessToken, refreshToken, nil
}

// RefreshToken validates a refresh token and issues a new access token. The
// token is rejected when revoked, and the user's role is re-read so a role
// change takes effect on the next refresh.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := ValidateToken(s.jwtSecret, refreshToken)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	if claims.TokenType != tokenTypeRefresh {
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrInvalidToken)
	}

	if s.revocations != nil {
		revoked, revErr := s.revocations.IsRevoked(ctx, claims.ID)
		if revErr != nil {
			return "", fmt.Errorf("auth.RefreshToken: %w", revErr)
		}
		if revoked {
			return "", fmt.Errorf("auth.RefreshToken: %w", ErrTokenRevoked)
		}
	}

	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: invalid tenant id: %w", err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: invalid user id: %w", err)
	}

	user, err := s.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrUserNotFound)
	}

	newAccess, err := IssueAccessToken(s.jwtSecret, user.TenantID, user.ID, user.Role, s.accessTTL)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	return newAccess, nil
}

// Logout revokes a refresh token for its remaining lifetime. An already-dead
// token is a no-op success.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := ValidateToken(s.jwtSecret, refreshToken)
	if err != nil {
		return nil
	}
	if claims.TokenType != tokenTypeRefresh || s.revocations == nil {
		return nil
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return nil
	}

	if err := s.revocations.Revoke(ctx, claims.ID, remaining); err != nil {
		return fmt.Errorf("auth.Logout: %w", err)
	}

	return nil
}

// ChangePassword verifies the current password before replacing it.
func (s *Service) ChangePassword(ctx context.Context, tenantID, userID uuid.UUID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("auth.ChangePassword: empty new password: %w", domain.ErrInvalidArgument)
	}

	user, err := s.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		return fmt.Errorf("auth.ChangePassword: %w", ErrUserNotFound)
	}

	if !verifyPassword(oldPassword, user.PasswordHash) {
		return fmt.Errorf("auth.ChangePassword: %w", ErrInvalidCredentials)
	}

	return s.setPassword(ctx, user, newPassword, "auth.ChangePassword")
}

// ResetPassword replaces a user's password without checking the old one.
// Callers must gate this behind an authorization check.
func (s *Service) ResetPassword(ctx context.Context, tenantID, userID uuid.UUID, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("auth.ResetPassword: empty new password: %w", domain.ErrInvalidArgument)
	}

	user, err := s.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		return fmt.Errorf("auth.ResetPassword: %w", ErrUserNotFound)
	}

	return s.setPassword(ctx, user, newPassword, "auth.ResetPassword")
}

func (s *Service) setPassword(ctx context.Context, user *domain.User, newPassword, caller string) error {
	hash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", caller, err)
	}

	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("%s: %w", caller, err)
	}

	return nil
}

// GetUser returns a user by ID (for middleware use).
func (s *Service) GetUser(ctx context.Context, tenantID, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("auth.GetUser: %w", err)
	}

	return user, nil
}

// hashPassword generates an argon2id hash with a random salt.
// Format: hex(salt) + "$" + hex(hash)
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

// verifyPassword checks a password against an argon2id hash.
func verifyPassword(password, encoded string) bool {
	saltHex, hashHex, ok := strings.Cut(encoded, "$")
	if !ok || saltHex == "" || hashHex == "" {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	expected, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return subtle.ConstantTimeCompare(computed, expected) == 1
}
