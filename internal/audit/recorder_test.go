package audit_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyfort/keyfort/internal/audit"
	"github.com/keyfort/keyfort/internal/domain"
	"github.com/keyfort/keyfort/internal/requestctx"
)

// --- in-memory AuditRepository ---

// memAuditRepo is an in-memory domain.AuditRepository with the same id and
// ordering semantics as the postgres store: ascending ids assigned on insert.
type memAuditRepo struct {
	mu      sync.Mutex
	nextID  int64
	entries map[int64]*domain.AuditLog

	insertErr error // when set, Insert fails with this error
	deleteN   *int64 // when set, Delete reports this many rows affected
}

func newMemAuditRepo() *memAuditRepo {
	return &memAuditRepo{nextID: 1, entries: make(map[int64]*domain.AuditLog)}
}

func (m *memAuditRepo) Insert(_ context.Context, entry *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.insertErr != nil {
		return m.insertErr
	}

	entry.ID = m.nextID
	m.nextID++

	stored := *entry
	m.entries[entry.ID] = &stored
	return nil
}

func (m *memAuditRepo) List(_ context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*domain.AuditLog
	for _, e := range m.entries {
		if filter.Action != nil && e.Action != *filter.Action {
			continue
		}
		matched = append(matched, e)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := len(matched)

	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	return matched, total, nil
}

func (m *memAuditRepo) GetByID(_ context.Context, id int64) (*domain.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (m *memAuditRepo) Delete(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteN != nil {
		return *m.deleteN, nil
	}

	if _, ok := m.entries[id]; !ok {
		return 0, nil
	}
	delete(m.entries, id)
	return 1, nil
}

func (m *memAuditRepo) all() []*domain.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.AuditLog
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- context helpers ---

func requestContext(tenantID, userID uuid.UUID, addr, path string) context.Context {
	ctx := context.Background()
	ctx = requestctx.WithTenantID(ctx, tenantID)
	ctx = requestctx.WithUserID(ctx, userID)
	ctx = requestctx.WithClientAddr(ctx, addr)
	ctx = requestctx.WithRequestPath(ctx, path)
	return ctx
}

func newRecorder(repo domain.AuditRepository) *audit.Recorder {
	return audit.NewRecorder(repo, zerolog.Nop())
}

// --- LogAuthorizationBreach ---

func TestLogAuthorizationBreach(t *testing.T) {
	t.Parallel()

	t.Run("authenticated caller", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		rec := newRecorder(repo)
		userID := uuid.New()
		ctx := requestContext(uuid.New(), userID, "203.0.113.7", "/api/v1/users/42")

		require.NoError(t, rec.LogAuthorizationBreach(ctx))

		entries := repo.all()
		require.Len(t, entries, 1)
		e := entries[0]
		assert.Equal(t, domain.ActionAuthorizationBreach, e.Action)
		assert.Equal(t, userID.String(), e.UserID)
		assert.Equal(t, "203.0.113.7", e.IPAddress)
		assert.Equal(t, "Unauthorized access attempt to /api/v1/users/42", e.Details)
		assert.False(t, e.Timestamp.IsZero())
	})

	t.Run("anonymous caller gets sentinels", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		rec := newRecorder(repo)

		require.NoError(t, rec.LogAuthorizationBreach(context.Background()))

		entries := repo.all()
		require.Len(t, entries, 1)
		e := entries[0]
		assert.Equal(t, domain.AnonymousUser, e.UserID)
		assert.Equal(t, domain.UnknownAddress, e.IPAddress)
		assert.Equal(t, "Unauthorized access attempt to "+domain.UnknownPath, e.Details)
	})

	t.Run("store fault propagates", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		repo.insertErr = errors.New("insert failed")
		rec := newRecorder(repo)

		err := rec.LogAuthorizationBreach(context.Background())

		require.ErrorContains(t, err, "insert failed")
	})

	t.Run("oversized request path still yields a bounded entry", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		rec := newRecorder(repo)
		longPath := "/api/v1/users/" + strings.Repeat("a", 1500)
		ctx := requestContext(uuid.New(), uuid.New(), "203.0.113.7", longPath)

		require.NoError(t, rec.LogAuthorizationBreach(ctx))

		entries := repo.all()
		require.Len(t, entries, 1)
		e := entries[0]
		assert.Len(t, e.Details, domain.AuditDetailsMaxLen)
		assert.True(t, strings.HasPrefix(e.Details, "Unauthorized access attempt to /api/v1/users/"))
	})
}

// --- LogException ---

func TestLogException(t *testing.T) {
	t.Parallel()

	t.Run("nil cause is an invalid-argument fault", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		rec := newRecorder(repo)

		err := rec.LogException(context.Background(), nil)

		require.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Empty(t, repo.all())
	})

	t.Run("details carry the full error string", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		rec := newRecorder(repo)
		cause := errors.New("panic: index out of range [3] with length 2\ngoroutine 1 [running]:\nmain.main()")

		require.NoError(t, rec.LogException(context.Background(), cause))

		entries := repo.all()
		require.Len(t, entries, 1)
		assert.Equal(t, domain.ActionException, entries[0].Action)
		assert.Equal(t, cause.Error(), entries[0].Details)
	})

	t.Run("oversized details are truncated to the bound", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		rec := newRecorder(repo)
		long := make([]byte, 5000)
		for i := range long {
			long[i] = 'x'
		}

		require.NoError(t, rec.LogException(context.Background(), errors.New(string(long))))

		entries := repo.all()
		require.Len(t, entries, 1)
		assert.Len(t, entries[0].Details, domain.AuditDetailsMaxLen)
	})
}

// --- LogSlowPerformance ---

func TestLogSlowPerformance(t *testing.T) {
	t.Parallel()

	t.Run("non-positive durations fault", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		rec := newRecorder(repo)

		for _, ms := range []int64{0, -1} {
			err := rec.LogSlowPerformance(context.Background(), ms)
			require.ErrorIs(t, err, domain.ErrInvalidArgument)
		}
		assert.Empty(t, repo.all())
	})

	t.Run("records path and duration", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		rec := newRecorder(repo)
		ctx := requestContext(uuid.New(), uuid.New(), "198.51.100.9", "/api/v1/tenants")

		require.NoError(t, rec.LogSlowPerformance(ctx, 500))

		entries := repo.all()
		require.Len(t, entries, 1)
		e := entries[0]
		assert.Equal(t, domain.ActionSlowPerformance, e.Action)
		assert.Equal(t, "Action: /api/v1/tenants, Response Time: 500 ms", e.Details)
		assert.Contains(t, e.Details, "500 ms")
	})

	t.Run("oversized request path still yields a bounded entry", func(t *testing.T) {
		t.Parallel()

		repo := newMemAuditRepo()
		rec := newRecorder(repo)
		longPath := "/api/v1/" + strings.Repeat("b", 1500)
		ctx := requestContext(uuid.New(), uuid.New(), "198.51.100.9", longPath)

		require.NoError(t, rec.LogSlowPerformance(ctx, 500))

		entries := repo.all()
		require.Len(t, entries, 1)
		e := entries[0]
		assert.Len(t, e.Details, domain.AuditDetailsMaxLen)
		assert.True(t, strings.HasPrefix(e.Details, "Action: /api/v1/"))
	})
}

// --- round-trip through the query service ---

func TestLoggerQueryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newMemAuditRepo()
	rec := newRecorder(repo)
	svc := audit.NewService(repo)

	userID := uuid.New()
	ctx := requestContext(uuid.New(), userID, "203.0.113.77", "/api/v1/users/abc")

	require.NoError(t, rec.LogAuthorizationBreach(ctx))
	require.NoError(t, rec.LogException(ctx, errors.New("boom")))
	require.NoError(t, rec.LogSlowPerformance(ctx, 1200))

	tests := []struct {
		action      domain.AuditAction
		wantDetails string
	}{
		{domain.ActionAuthorizationBreach, "Unauthorized access attempt to /api/v1/users/abc"},
		{domain.ActionException, "boom"},
		{domain.ActionSlowPerformance, "Action: /api/v1/users/abc, Response Time: 1200 ms"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			t.Parallel()

			action := tt.action
			logs, meta, err := svc.GetLogs(context.Background(), 1, 10, &action)

			require.NoError(t, err)
			require.Len(t, logs, 1)
			assert.Equal(t, 1, meta.TotalCount)
			assert.Equal(t, tt.action, logs[0].Action)
			assert.Equal(t, tt.wantDetails, logs[0].Details)
			assert.Equal(t, userID.String(), logs[0].UserID)
			assert.Equal(t, "203.0.113.77", logs[0].IPAddress)
		})
	}
}
