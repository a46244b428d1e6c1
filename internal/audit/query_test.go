package audit_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyfort/keyfort/internal/audit"
	"github.com/keyfort/keyfort/internal/domain"
)

func seedEntries(t *testing.T, repo *memAuditRepo, n int, action domain.AuditAction) {
	t.Helper()

	for i := 0; i < n; i++ {
		entry := &domain.AuditLog{
			TenantID:  uuid.New(),
			Action:    action,
			UserID:    uuid.New().String(),
			Details:   fmt.Sprintf("entry %d", i),
			IPAddress: "192.0.2.1",
			Timestamp: time.Now().UTC(),
		}
		require.NoError(t, repo.Insert(context.Background(), entry))
	}
}

func TestGetLogs(t *testing.T) {
	t.Parallel()

	t.Run("empty store yields empty page with zero totals", func(t *testing.T) {
		t.Parallel()

		svc := audit.NewService(newMemAuditRepo())

		logs, meta, err := svc.GetLogs(context.Background(), 1, 10, nil)

		require.NoError(t, err)
		assert.Empty(t, logs)
		assert.Equal(t, 0, meta.TotalCount)
		assert.Equal(t, 0, meta.TotalPages)
	})

	t.Run("last partial page", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		seedEntries(t, repo, 25, domain.ActionException)
		svc := audit.NewService(repo)

		logs, meta, err := svc.GetLogs(context.Background(), 3, 10, nil)

		require.NoError(t, err)
		require.Len(t, logs, 5)
		assert.Equal(t, 25, meta.TotalCount)
		assert.Equal(t, 3, meta.TotalPages)
		assert.Equal(t, "entry 20", logs[0].Details)
		assert.Equal(t, "entry 24", logs[4].Details)
	})

	t.Run("page beyond the data is empty but metadata stays accurate", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		seedEntries(t, repo, 5, domain.ActionException)
		svc := audit.NewService(repo)

		logs, meta, err := svc.GetLogs(context.Background(), 4, 10, nil)

		require.NoError(t, err)
		assert.Empty(t, logs)
		assert.Equal(t, 5, meta.TotalCount)
		assert.Equal(t, 1, meta.TotalPages)
	})

	t.Run("ids ascend within a page", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		seedEntries(t, repo, 8, domain.ActionAuthorizationBreach)
		svc := audit.NewService(repo)

		logs, _, err := svc.GetLogs(context.Background(), 1, 8, nil)

		require.NoError(t, err)
		require.Len(t, logs, 8)
		for i := 1; i < len(logs); i++ {
			assert.Greater(t, logs[i].ID, logs[i-1].ID)
		}
	})

	t.Run("action filter restricts both page and total", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		seedEntries(t, repo, 4, domain.ActionException)
		seedEntries(t, repo, 3, domain.ActionSlowPerformance)
		svc := audit.NewService(repo)

		action := domain.ActionSlowPerformance
		logs, meta, err := svc.GetLogs(context.Background(), 1, 10, &action)

		require.NoError(t, err)
		require.Len(t, logs, 3)
		assert.Equal(t, 3, meta.TotalCount)
		for _, l := range logs {
			assert.Equal(t, domain.ActionSlowPerformance, l.Action)
		}
	})

	t.Run("invalid paging and actions fault", func(t *testing.T) {
		t.Parallel()

		svc := audit.NewService(newMemAuditRepo())
		bogus := domain.AuditAction("made_up")

		tests := []struct {
			name     string
			page     int
			pageSize int
			action   *domain.AuditAction
		}{
			{"zero page", 0, 10, nil},
			{"negative page", -1, 10, nil},
			{"zero page size", 1, 0, nil},
			{"unknown action", 1, 10, &bogus},
		}

		for _, tt := range tests {
			_, _, err := svc.GetLogs(context.Background(), tt.page, tt.pageSize, tt.action)
			require.ErrorIs(t, err, domain.ErrInvalidArgument, tt.name)
		}
	})
}

func TestDeleteLog(t *testing.T) {
	t.Parallel()

	t.Run("existing entry is removed", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		seedEntries(t, repo, 1, domain.ActionException)
		svc := audit.NewService(repo)

		res, err := svc.DeleteLog(context.Background(), "1")

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Empty(t, repo.all())
	})

	t.Run("missing, unparsable, and non-positive ids are NotFound", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		seedEntries(t, repo, 1, domain.ActionException)
		svc := audit.NewService(repo)

		for _, id := range []string{"99", "missing-id", "-4", "0"} {
			res, err := svc.DeleteLog(context.Background(), id)

			require.NoError(t, err, id)
			assert.False(t, res.Success, id)
			assert.Equal(t, []string{domain.MsgNotFound}, res.Errors, id)
		}
	})

	t.Run("second delete of the same entry is NotFound", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		seedEntries(t, repo, 1, domain.ActionException)
		svc := audit.NewService(repo)

		res, err := svc.DeleteLog(context.Background(), "1")
		require.NoError(t, err)
		require.True(t, res.Success)

		res, err = svc.DeleteLog(context.Background(), "1")
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, []string{domain.MsgNotFound}, res.Errors)
	})

	t.Run("zero rows affected after a successful read is DeletionFailed", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		seedEntries(t, repo, 1, domain.ActionException)
		zero := int64(0)
		repo.deleteN = &zero
		svc := audit.NewService(repo)

		res, err := svc.DeleteLog(context.Background(), "1")

		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, []string{domain.MsgDeletionFailed}, res.Errors)
	})

	t.Run("empty id is an invalid-argument fault", func(t *testing.T) {
		t.Parallel()

		svc := audit.NewService(newMemAuditRepo())

		for _, id := range []string{"", "   "} {
			_, err := svc.DeleteLog(context.Background(), id)
			require.ErrorIs(t, err, domain.ErrInvalidArgument)
		}
	})

	t.Run("store faults propagate", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		seedEntries(t, repo, 1, domain.ActionException)
		faulty := &faultyGetRepo{memAuditRepo: repo, err: errors.New("connection reset")}

		res, err := audit.NewService(faulty).DeleteLog(context.Background(), "1")

		require.ErrorContains(t, err, "connection reset")
		assert.False(t, res.Success)
	})
}

// faultyGetRepo fails GetByID to simulate a store outage mid-delete.
type faultyGetRepo struct {
	*memAuditRepo
	err error
}

func (f *faultyGetRepo) GetByID(context.Context, int64) (*domain.AuditLog, error) {
	return nil, f.err
}
