package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/keyfort/keyfort/internal/auth"
	"github.com/keyfort/keyfort/internal/domain"
	"github.com/keyfort/keyfort/internal/requestctx"
)

type ListUsersInput struct{}

type ListUsersOutput struct {
	Body []*domain.User
}

type GetUserInput struct {
	ID string `path:"id" maxLength:"36" doc:"User ID"`
}

type GetUserOutput struct {
	Body *domain.User
}

type UpdateUserInput struct {
	ID   string `path:"id" maxLength:"36" doc:"User ID"`
	Body struct {
		Email string `json:"email,omitempty" maxLength:"255" doc:"New email"`
		Name  string `json:"name,omitempty" maxLength:"255" doc:"New display name"`
	}
}

type UpdateUserOutput struct {
	Body *domain.User
}

type DeleteUserInput struct {
	ID string `path:"id" maxLength:"36" doc:"User ID"`
}

type DeleteUserOutput struct {
	Body domain.Result
}

type ChangePasswordInput struct {
	ID   string `path:"id" maxLength:"36" doc:"User ID"`
	Body struct {
		OldPassword string `json:"old_password" minLength:"1" maxLength:"128" doc:"Current password"` //nolint:gosec // G117: password DTO
		NewPassword string `json:"new_password" minLength:"8" maxLength:"128" doc:"New password"`     //nolint:gosec // G117: password DTO
	}
}

type ChangePasswordOutput struct {
	Body domain.Result
}

type ResetPasswordInput struct {
	ID   string `path:"id" maxLength:"36" doc:"User ID"`
	Body struct {
		NewPassword string `json:"new_password" minLength:"8" maxLength:"128" doc:"New password"` //nolint:gosec // G117: password DTO
	}
}

type ResetPasswordOutput struct {
	Body domain.Result
}

type AssignRoleInput struct {
	ID   string `path:"id" maxLength:"36" doc:"User ID"`
	Body struct {
		Role string `json:"role" enum:"superadmin,admin,user" doc:"Role to assign"`
	}
}

type AssignRoleOutput struct {
	Body *domain.User
}

// guard runs the permission check for the target id and converts a denial
// into a 403. Invalid-argument and store faults surface as server errors.
func guard(ctx context.Context, perms PermissionService, targetID string) error {
	res, err := perms.ValidatePermissions(ctx, targetID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return huma.Error422UnprocessableEntity("invalid user id")
		}
		return huma.Error500InternalServerError("permission check failed", err)
	}
	if !res.Success {
		return huma.Error403Forbidden(domain.MsgForbidden)
	}
	return nil
}

// targetUser resolves a path id within the caller's tenant.
func targetUser(ctx context.Context, store DataStore, rawID string) (*domain.User, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, huma.Error404NotFound("user not found")
	}

	user, err := store.Users().GetByID(ctx, requestctx.TenantIDOrNil(ctx), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, huma.Error404NotFound("user not found")
		}
		return nil, huma.Error500InternalServerError("failed to look up user", err)
	}

	return user, nil
}

func RegisterUserRoutes(api huma.API, store DataStore, authSvc AuthService, perms PermissionService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List users in the caller's tenant",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, _ *ListUsersInput) (*ListUsersOutput, error) {
		role, _ := requestctx.Role(ctx)
		if role != domain.RoleAdmin && role != domain.RoleSuperAdmin {
			return nil, huma.Error403Forbidden(domain.MsgForbidden)
		}

		users, err := store.Users().List(ctx, requestctx.TenantIDOrNil(ctx))
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list users", err)
		}

		for _, u := range users {
			u.PasswordHash = ""
		}

		return &ListUsersOutput{Body: users}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-user",
		Method:      http.MethodGet,
		Path:        "/users/{id}",
		Summary:     "Get a user by ID",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *GetUserInput) (*GetUserOutput, error) {
		if err := guard(ctx, perms, input.ID); err != nil {
			return nil, err
		}

		user, err := targetUser(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		user.PasswordHash = ""
		return &GetUserOutput{Body: user}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-user",
		Method:      http.MethodPatch,
		Path:        "/users/{id}",
		Summary:     "Update a user's profile",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *UpdateUserInput) (*UpdateUserOutput, error) {
		if err := guard(ctx, perms, input.ID); err != nil {
			return nil, err
		}

		user, err := targetUser(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		if input.Body.Email != "" {
			user.Email = input.Body.Email
		}
		if input.Body.Name != "" {
			user.Name = input.Body.Name
		}

		if err := store.Users().Update(ctx, user); err != nil {
			return nil, huma.Error500InternalServerError("failed to update user", err)
		}

		user.PasswordHash = ""
		return &UpdateUserOutput{Body: user}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-user",
		Method:      http.MethodDelete,
		Path:        "/users/{id}",
		Summary:     "Delete a user",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *DeleteUserInput) (*DeleteUserOutput, error) {
		if err := guard(ctx, perms, input.ID); err != nil {
			return nil, err
		}

		user, err := targetUser(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		if err := store.Users().Delete(ctx, user.TenantID, user.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("user not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete user", err)
		}

		out := &DeleteUserOutput{}
		out.Body = domain.OK()
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "change-password",
		Method:      http.MethodPost,
		Path:        "/users/{id}/password",
		Summary:     "Change a user's password (requires current password)",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *ChangePasswordInput) (*ChangePasswordOutput, error) {
		if err := guard(ctx, perms, input.ID); err != nil {
			return nil, err
		}

		user, err := targetUser(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		err = authSvc.ChangePassword(ctx, user.TenantID, user.ID, input.Body.OldPassword, input.Body.NewPassword)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return nil, huma.Error401Unauthorized("current password is incorrect")
			}
			return nil, huma.Error500InternalServerError("failed to change password", err)
		}

		out := &ChangePasswordOutput{}
		out.Body = domain.OK()
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reset-password",
		Method:      http.MethodPost,
		Path:        "/users/{id}/password/reset",
		Summary:     "Reset a user's password (admin path, no current password)",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *ResetPasswordInput) (*ResetPasswordOutput, error) {
		role, _ := requestctx.Role(ctx)
		if role != domain.RoleAdmin && role != domain.RoleSuperAdmin {
			return nil, huma.Error403Forbidden(domain.MsgForbidden)
		}

		if err := guard(ctx, perms, input.ID); err != nil {
			return nil, err
		}

		user, err := targetUser(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		if err := authSvc.ResetPassword(ctx, user.TenantID, user.ID, input.Body.NewPassword); err != nil {
			return nil, huma.Error500InternalServerError("failed to reset password", err)
		}

		out := &ResetPasswordOutput{}
		out.Body = domain.OK()
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "assign-role",
		Method:      http.MethodPost,
		Path:        "/users/{id}/role",
		Summary:     "Assign a role to a user",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *AssignRoleInput) (*AssignRoleOutput, error) {
		role, _ := requestctx.Role(ctx)
		if role != domain.RoleSuperAdmin {
			return nil, huma.Error403Forbidden(domain.MsgForbidden)
		}

		if !domain.ValidRole(input.Body.Role) {
			return nil, huma.Error422UnprocessableEntity("unknown role")
		}

		user, err := targetUser(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		user.Role = input.Body.Role
		if err := store.Users().Update(ctx, user); err != nil {
			return nil, huma.Error500InternalServerError("failed to assign role", err)
		}

		user.PasswordHash = ""
		return &AssignRoleOutput{Body: user}, nil
	})
}
