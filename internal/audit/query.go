package audit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/keyfort/keyfort/internal/domain"
)

// Service is the read/delete side of the audit trail.
type Service struct {
	repo domain.AuditRepository
}

func NewService(repo domain.AuditRepository) *Service {
	return &Service{repo: repo}
}

// GetLogs returns one page of audit entries ordered by id ascending, plus
// pagination metadata computed from the post-filter total. A page beyond the
// available data is a valid response: empty list, accurate metadata.
func (s *Service) GetLogs(ctx context.Context, page, pageSize int, action *domain.AuditAction) ([]*domain.AuditLog, domain.PageMeta, error) {
	if page < 1 || pageSize < 1 {
		return nil, domain.PageMeta{}, fmt.Errorf("audit.GetLogs: page=%d pageSize=%d: %w",
			page, pageSize, domain.ErrInvalidArgument)
	}
	if action != nil && !action.Valid() {
		return nil, domain.PageMeta{}, fmt.Errorf("audit.GetLogs: unknown action %q: %w",
			*action, domain.ErrInvalidArgument)
	}

	entries, total, err := s.repo.List(ctx, domain.AuditFilter{
		Action: action,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		return nil, domain.PageMeta{}, fmt.Errorf("audit.GetLogs: %w", err)
	}

	meta := domain.PageMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	return entries, meta, nil
}

// DeleteLog removes a single entry by id. A missing entry is a NotFound
// business outcome; a delete that affects zero rows after the entry was just
// located loses the race to a concurrent delete and reports DeletionFailed
// without retrying.
func (s *Service) DeleteLog(ctx context.Context, id string) (domain.Result, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Result{}, fmt.Errorf("audit.DeleteLog: empty id: %w", domain.ErrInvalidArgument)
	}

	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return domain.Fail(domain.MsgNotFound), nil
	}

	if _, err := s.repo.GetByID(ctx, n); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Fail(domain.MsgNotFound), nil
		}
		return domain.Result{}, fmt.Errorf("audit.DeleteLog: %w", err)
	}

	affected, err := s.repo.Delete(ctx, n)
	if err != nil {
		return domain.Result{}, fmt.Errorf("audit.DeleteLog: %w", err)
	}
	if affected == 0 {
		return domain.Fail(domain.MsgDeletionFailed), nil
	}

	return domain.OK(), nil
}
