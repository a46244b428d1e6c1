package audit

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyfort/keyfort/internal/domain"
)

type captureRepo struct {
	inserted []*domain.AuditLog
}

func (c *captureRepo) Insert(_ context.Context, entry *domain.AuditLog) error {
	c.inserted = append(c.inserted, entry)
	return nil
}

func (c *captureRepo) List(context.Context, domain.AuditFilter) ([]*domain.AuditLog, int, error) {
	panic("unexpected List")
}

func (c *captureRepo) GetByID(context.Context, int64) (*domain.AuditLog, error) {
	panic("unexpected GetByID")
}

func (c *captureRepo) Delete(context.Context, int64) (int64, error) {
	panic("unexpected Delete")
}

func validEntry() *domain.AuditLog {
	return &domain.AuditLog{
		TenantID:  uuid.New(),
		Action:    domain.ActionException,
		UserID:    uuid.New().String(),
		Details:   "something broke",
		IPAddress: "192.0.2.10",
		Timestamp: time.Now().UTC(),
	}
}

func TestAddLogValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*domain.AuditLog)
	}{
		{"empty user id", func(e *domain.AuditLog) { e.UserID = "" }},
		{"empty details", func(e *domain.AuditLog) { e.Details = "" }},
		{"empty ip address", func(e *domain.AuditLog) { e.IPAddress = "" }},
		{"oversized details", func(e *domain.AuditLog) {
			b := make([]byte, domain.AuditDetailsMaxLen+1)
			for i := range b {
				b[i] = 'a'
			}
			e.Details = string(b)
		}},
		{"oversized ip address", func(e *domain.AuditLog) {
			b := make([]byte, domain.AuditAddressMaxLen+1)
			for i := range b {
				b[i] = '1'
			}
			e.IPAddress = string(b)
		}},
		{"unknown action", func(e *domain.AuditLog) { e.Action = "totally_fine" }},
		{"timestamp too far in the past", func(e *domain.AuditLog) {
			e.Timestamp = time.Now().UTC().Add(-timestampTolerance - time.Second)
		}},
		{"timestamp too far in the future", func(e *domain.AuditLog) {
			e.Timestamp = time.Now().UTC().Add(timestampTolerance + time.Second)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &captureRepo{}
			rec := NewRecorder(repo, zerolog.Nop())

			entry := validEntry()
			tt.mutate(entry)

			err := rec.addLog(context.Background(), entry)

			require.ErrorIs(t, err, domain.ErrInvalidArgument)
			assert.Empty(t, repo.inserted)
		})
	}
}

func TestAddLogNilEntry(t *testing.T) {
	t.Parallel()

	rec := NewRecorder(&captureRepo{}, zerolog.Nop())

	err := rec.addLog(context.Background(), nil)

	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTruncateStopsAtRuneBoundary(t *testing.T) {
	t.Parallel()

	short := "plain ascii"
	assert.Equal(t, short, truncate(short, 100))
	assert.Equal(t, "plain", truncate(short, 5))

	// Two-byte runes: an odd byte budget would split one in half.
	multi := strings.Repeat("é", 600)
	got := truncate(multi, 999)

	assert.LessOrEqual(t, len(got), 999)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 998, len(got))
}

func TestAddLogAcceptsDriftWithinTolerance(t *testing.T) {
	t.Parallel()

	repo := &captureRepo{}
	rec := NewRecorder(repo, zerolog.Nop())

	entry := validEntry()
	entry.Timestamp = time.Now().UTC().Add(-timestampTolerance + time.Second)

	require.NoError(t, rec.addLog(context.Background(), entry))
	assert.Len(t, repo.inserted, 1)
}
