// Package audit writes and reads the security audit trail: authorization
// breaches, request-pipeline exceptions, and slow requests. Entries are
// append-only; the trail is persisted separately from infrastructure logging
// and the two are never conflated.
package audit

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/keyfort/keyfort/internal/domain"
	"github.com/keyfort/keyfort/internal/requestctx"
)

// timestampTolerance bounds how far an entry's timestamp may drift from the
// clock at write time. Entries are never backdated or future-dated beyond
// this window; violating it is a programming error, not something to clamp.
const timestampTolerance = 30 * time.Second

// Recorder assembles audit entries from the ambient request context and
// appends them to the store. One shared append path serves all three event
// kinds; each public method only contributes the variant-specific payload.
type Recorder struct {
	repo domain.AuditRepository
	log  zerolog.Logger
}

func NewRecorder(repo domain.AuditRepository, log zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

// LogAuthorizationBreach records a denied access attempt against the current
// request's principal, address, and path. The path is caller-controlled, so
// the details are truncated to the storage bound at assembly; an oversized
// request must not be able to suppress its own breach entry.
func (r *Recorder) LogAuthorizationBreach(ctx context.Context) error {
	userID := requestctx.PrincipalOrAnonymous(ctx)
	addr := requestctx.AddrOrUnknown(ctx)
	path := requestctx.PathOrUnknown(ctx)

	// The defaults above can never be empty, but the append contract is
	// enforced regardless.
	if userID == "" || addr == "" || path == "" {
		return fmt.Errorf("audit.LogAuthorizationBreach: empty context field: %w", domain.ErrInvalidArgument)
	}

	entry := &domain.AuditLog{
		TenantID:  requestctx.TenantIDOrNil(ctx),
		Action:    domain.ActionAuthorizationBreach,
		UserID:    userID,
		Details:   truncate(fmt.Sprintf("Unauthorized access attempt to %s", path), domain.AuditDetailsMaxLen),
		IPAddress: addr,
		Timestamp: time.Now().UTC(),
	}

	return r.addLog(ctx, entry)
}

// LogException records a request-pipeline failure. The details carry the full
// error string; the recoverer middleware wraps panic values with their stack
// before handing them here.
func (r *Recorder) LogException(ctx context.Context, cause error) error {
	if cause == nil {
		return fmt.Errorf("audit.LogException: nil cause: %w", domain.ErrInvalidArgument)
	}

	entry := &domain.AuditLog{
		TenantID:  requestctx.TenantIDOrNil(ctx),
		Action:    domain.ActionException,
		UserID:    requestctx.PrincipalOrAnonymous(ctx),
		Details:   truncate(cause.Error(), domain.AuditDetailsMaxLen),
		IPAddress: requestctx.AddrOrUnknown(ctx),
		Timestamp: time.Now().UTC(),
	}

	return r.addLog(ctx, entry)
}

// LogSlowPerformance records a request that exceeded the latency budget.
// responseTimeMillis must be positive.
func (r *Recorder) LogSlowPerformance(ctx context.Context, responseTimeMillis int64) error {
	if responseTimeMillis <= 0 {
		return fmt.Errorf("audit.LogSlowPerformance: non-positive response time %d: %w",
			responseTimeMillis, domain.ErrInvalidArgument)
	}

	path := requestctx.PathOrUnknown(ctx)

	entry := &domain.AuditLog{
		TenantID:  requestctx.TenantIDOrNil(ctx),
		Action:    domain.ActionSlowPerformance,
		UserID:    requestctx.PrincipalOrAnonymous(ctx),
		Details:   truncate(fmt.Sprintf("Action: %s, Response Time: %d ms", path, responseTimeMillis), domain.AuditDetailsMaxLen),
		IPAddress: requestctx.AddrOrUnknown(ctx),
		Timestamp: time.Now().UTC(),
	}

	return r.addLog(ctx, entry)
}

// addLog validates an assembled entry and persists it. Validation failures
// are invalid-argument faults; store failures propagate untouched as
// infrastructure faults.
func (r *Recorder) addLog(ctx context.Context, entry *domain.AuditLog) error {
	if entry == nil {
		return fmt.Errorf("audit.addLog: nil entry: %w", domain.ErrInvalidArgument)
	}
	if entry.UserID == "" || entry.Details == "" || entry.IPAddress == "" {
		return fmt.Errorf("audit.addLog: empty required field: %w", domain.ErrInvalidArgument)
	}
	if len(entry.Details) > domain.AuditDetailsMaxLen {
		return fmt.Errorf("audit.addLog: details exceed %d chars: %w", domain.AuditDetailsMaxLen, domain.ErrInvalidArgument)
	}
	if len(entry.IPAddress) > domain.AuditAddressMaxLen {
		return fmt.Errorf("audit.addLog: ip address exceeds %d chars: %w", domain.AuditAddressMaxLen, domain.ErrInvalidArgument)
	}
	if !entry.Action.Valid() {
		return fmt.Errorf("audit.addLog: unknown action %q: %w", entry.Action, domain.ErrInvalidArgument)
	}

	drift := time.Since(entry.Timestamp)
	if drift > timestampTolerance || drift < -timestampTolerance {
		return fmt.Errorf("audit.addLog: timestamp outside ±%s tolerance: %w", timestampTolerance, domain.ErrInvalidArgument)
	}

	if err := r.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("audit.addLog: %w", err)
	}

	r.log.Debug().
		Str("action", string(entry.Action)).
		Str("user_id", entry.UserID).
		Str("ip", entry.IPAddress).
		Msg("audit entry recorded")

	return nil
}

// truncate bounds s to at most n bytes, backing the cut up to a rune
// boundary so the stored string is never invalid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
