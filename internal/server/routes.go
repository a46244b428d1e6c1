package server

import (
	"github.com/danielgtaylor/huma/v2"

	v1 "github.com/keyfort/keyfort/internal/api/v1"
	"github.com/keyfort/keyfort/internal/audit"
	"github.com/keyfort/keyfort/internal/auth"
	"github.com/keyfort/keyfort/internal/authz"
	"github.com/keyfort/keyfort/internal/store/postgres"
)

func registerAuthRoutes(api huma.API, store *postgres.Store, authSvc *auth.Service) {
	v1.RegisterAuthRoutes(api, store, authSvc)
}

func registerAPIRoutes(api huma.API, store *postgres.Store, authSvc *auth.Service, perms *authz.Service, auditSvc *audit.Service) {
	v1.RegisterTenantRoutes(api, store)
	v1.RegisterUserRoutes(api, store, authSvc, perms)
	v1.RegisterAuditRoutes(api, auditSvc)
}
