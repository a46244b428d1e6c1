package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/keyfort/keyfort/internal/domain"
	"github.com/keyfort/keyfort/internal/requestctx"
)

// ---------------------------------------------------------------------------
// Context helpers — inject tenant/user/role into context for DoCtx
// ---------------------------------------------------------------------------

func fixedTenantID() uuid.UUID {
	return uuid.MustParse("7f3e9a14-2c5b-4d8e-9f01-6a7b8c9d0e1f")
}

func tenantCtx(tenantID uuid.UUID) context.Context {
	return requestctx.WithTenantID(context.Background(), tenantID)
}

func roleCtx(tenantID, userID uuid.UUID, role string) context.Context {
	ctx := tenantCtx(tenantID)
	ctx = requestctx.WithUserID(ctx, userID)
	ctx = requestctx.WithRole(ctx, role)
	return ctx
}

func superadminCtx(tenantID uuid.UUID) context.Context {
	return roleCtx(tenantID, uuid.New(), domain.RoleSuperAdmin)
}

func adminCtx(tenantID uuid.UUID) context.Context {
	return roleCtx(tenantID, uuid.New(), domain.RoleAdmin)
}

func userCtx(tenantID, userID uuid.UUID) context.Context {
	return roleCtx(tenantID, userID, domain.RoleUser)
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	tenants domain.TenantRepository
	users   domain.UserRepository
}

func (m *mockDataStore) Tenants() domain.TenantRepository { return m.tenants }
func (m *mockDataStore) Users() domain.UserRepository     { return m.users }

// ---------------------------------------------------------------------------
// Mock TenantRepository
// ---------------------------------------------------------------------------

type mockTenantRepo struct {
	createFunc    func(ctx context.Context, t *domain.Tenant) error
	getByIDFunc   func(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	getBySlugFunc func(ctx context.Context, slug string) (*domain.Tenant, error)
	updateFunc    func(ctx context.Context, t *domain.Tenant) error
	listFunc      func(ctx context.Context) ([]*domain.Tenant, error)
}

func (m *mockTenantRepo) Create(ctx context.Context, t *domain.Tenant) error {
	return m.createFunc(ctx, t)
}

func (m *mockTenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockTenantRepo) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	return m.getBySlugFunc(ctx, slug)
}

func (m *mockTenantRepo) Update(ctx context.Context, t *domain.Tenant) error {
	return m.updateFunc(ctx, t)
}

func (m *mockTenantRepo) List(ctx context.Context) ([]*domain.Tenant, error) {
	return m.listFunc(ctx)
}

// ---------------------------------------------------------------------------
// Mock UserRepository
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	createFunc     func(ctx context.Context, u *domain.User) error
	getByIDFunc    func(ctx context.Context, tenantID, id uuid.UUID) (*domain.User, error)
	getByEmailFunc func(ctx context.Context, tenantID uuid.UUID, email string) (*domain.User, error)
	updateFunc     func(ctx context.Context, u *domain.User) error
	deleteFunc     func(ctx context.Context, tenantID, id uuid.UUID) error
	listFunc       func(ctx context.Context, tenantID uuid.UUID) ([]*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.createFunc(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFunc(ctx, tenantID, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*domain.User, error) {
	return m.getByEmailFunc(ctx, tenantID, email)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	return m.updateFunc(ctx, u)
}

func (m *mockUserRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.deleteFunc(ctx, tenantID, id)
}

func (m *mockUserRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*domain.User, error) {
	return m.listFunc(ctx, tenantID)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc       func(ctx context.Context, tenantID uuid.UUID, email, password, name string) (*domain.User, error)
	loginFunc          func(ctx context.Context, tenantID uuid.UUID, email, password string) (string, string, error)
	refreshFunc        func(ctx context.Context, refreshToken string) (string, error)
	logoutFunc         func(ctx context.Context, refreshToken string) error
	changePasswordFunc func(ctx context.Context, tenantID, userID uuid.UUID, oldPassword, newPassword string) error
	resetPasswordFunc  func(ctx context.Context, tenantID, userID uuid.UUID, newPassword string) error
}

func (m *mockAuthService) Register(ctx context.Context, tenantID uuid.UUID, email, password, name string) (*domain.User, error) {
	return m.registerFunc(ctx, tenantID, email, password, name)
}

func (m *mockAuthService) Login(ctx context.Context, tenantID uuid.UUID, email, password string) (string, string, error) {
	return m.loginFunc(ctx, tenantID, email, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshFunc(ctx, refreshToken)
}

func (m *mockAuthService) Logout(ctx context.Context, refreshToken string) error {
	return m.logoutFunc(ctx, refreshToken)
}

func (m *mockAuthService) ChangePassword(ctx context.Context, tenantID, userID uuid.UUID, oldPassword, newPassword string) error {
	return m.changePasswordFunc(ctx, tenantID, userID, oldPassword, newPassword)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, tenantID, userID uuid.UUID, newPassword string) error {
	return m.resetPasswordFunc(ctx, tenantID, userID, newPassword)
}

// ---------------------------------------------------------------------------
// Mock PermissionService
// ---------------------------------------------------------------------------

type mockPermissionService struct {
	validateFunc func(ctx context.Context, id string) (domain.Result, error)
}

func (m *mockPermissionService) ValidatePermissions(ctx context.Context, id string) (domain.Result, error) {
	return m.validateFunc(ctx, id)
}

func allowAll() *mockPermissionService {
	return &mockPermissionService{
		validateFunc: func(context.Context, string) (domain.Result, error) {
			return domain.OK(), nil
		},
	}
}

func denyAll() *mockPermissionService {
	return &mockPermissionService{
		validateFunc: func(context.Context, string) (domain.Result, error) {
			return domain.Fail(domain.MsgForbidden), nil
		},
	}
}

// ---------------------------------------------------------------------------
// Mock AuditService
// ---------------------------------------------------------------------------

type mockAuditService struct {
	getLogsFunc   func(ctx context.Context, page, pageSize int, action *domain.AuditAction) ([]*domain.AuditLog, domain.PageMeta, error)
	deleteLogFunc func(ctx context.Context, id string) (domain.Result, error)
}

func (m *mockAuditService) GetLogs(ctx context.Context, page, pageSize int, action *domain.AuditAction) ([]*domain.AuditLog, domain.PageMeta, error) {
	return m.getLogsFunc(ctx, page, pageSize, action)
}

func (m *mockAuditService) DeleteLog(ctx context.Context, id string) (domain.Result, error) {
	return m.deleteLogFunc(ctx, id)
}
