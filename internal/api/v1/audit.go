package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/keyfort/keyfort/internal/domain"
	"github.com/keyfort/keyfort/internal/requestctx"
)

type ListAuditLogsInput struct {
	Page     int    `query:"page" minimum:"1" default:"1" doc:"Page number (1-based)"`
	PageSize int    `query:"page_size" minimum:"1" maximum:"200" default:"50" doc:"Entries per page"`
	Action   string `query:"action" enum:"authorization_breach,exception,slow_performance," doc:"Optional action filter"`
}

type ListAuditLogsOutput struct {
	Body struct {
		Logs []*domain.AuditLog `json:"logs"`
		Meta domain.PageMeta    `json:"meta"`
	}
}

type DeleteAuditLogInput struct {
	ID string `path:"id" minLength:"1" maxLength:"20" doc:"Audit log entry ID"`
}

type DeleteAuditLogOutput struct {
	Body domain.Result
}

func RegisterAuditRoutes(api huma.API, auditSvc AuditService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-audit-logs",
		Method:      http.MethodGet,
		Path:        "/audit/logs",
		Summary:     "List audit log entries with filtering and pagination",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *ListAuditLogsInput) (*ListAuditLogsOutput, error) {
		role, _ := requestctx.Role(ctx)
		if role != domain.RoleSuperAdmin {
			return nil, huma.Error403Forbidden("superadmin role required")
		}

		var action *domain.AuditAction
		if input.Action != "" {
			a := domain.AuditAction(input.Action)
			action = &a
		}

		logs, meta, err := auditSvc.GetLogs(ctx, input.Page, input.PageSize, action)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				return nil, huma.Error422UnprocessableEntity("invalid pagination or filter parameters")
			}
			return nil, huma.Error500InternalServerError("failed to list audit logs", err)
		}

		out := &ListAuditLogsOutput{}
		out.Body.Logs = logs
		out.Body.Meta = meta
		if out.Body.Logs == nil {
			out.Body.Logs = []*domain.AuditLog{}
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-audit-log",
		Method:      http.MethodDelete,
		Path:        "/audit/logs/{id}",
		Summary:     "Delete a single audit log entry",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *DeleteAuditLogInput) (*DeleteAuditLogOutput, error) {
		role, _ := requestctx.Role(ctx)
		if role != domain.RoleSuperAdmin {
			return nil, huma.Error403Forbidden("superadmin role required")
		}

		res, err := auditSvc.DeleteLog(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				return nil, huma.Error422UnprocessableEntity("invalid audit log id")
			}
			return nil, huma.Error500InternalServerError("failed to delete audit log", err)
		}

		if !res.Success {
			switch {
			case len(res.Errors) > 0 && res.Errors[0] == domain.MsgDeletionFailed:
				return nil, huma.Error409Conflict(domain.MsgDeletionFailed)
			default:
				return nil, huma.Error404NotFound(domain.MsgNotFound)
			}
		}

		out := &DeleteAuditLogOutput{}
		out.Body = res
		return out, nil
	})
}
