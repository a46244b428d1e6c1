package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keyfort/keyfort/internal/domain"
)

// AuditRepo persists audit entries. The id column is a bigserial, so id
// order is insertion order and pagination over it is stable.
type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Insert(ctx context.Context, entry *domain.AuditLog) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO audit_logs (tenant_id, action, user_id, details, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		entry.TenantID, entry.Action, entry.UserID, entry.Details,
		entry.IPAddress, entry.Timestamp,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("auditRepo.Insert: %w", err)
	}

	return nil
}

func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, int, error) {
	// Count is taken post-filter, pre-pagination.
	var total int
	var err error

	if filter.Action != nil {
		err = r.pool.QueryRow(ctx,
			`SELECT count(*) FROM audit_logs WHERE action = $1`, *filter.Action,
		).Scan(&total)
	} else {
		err = r.pool.QueryRow(ctx,
			`SELECT count(*) FROM audit_logs`,
		).Scan(&total)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("auditRepo.List: count: %w", err)
	}

	var rows pgx.Rows
	if filter.Action != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT id, tenant_id, action, user_id, details, ip_address, created_at
			 FROM audit_logs WHERE action = $1
			 ORDER BY id
			 LIMIT $2 OFFSET $3`,
			*filter.Action, filter.Limit, filter.Offset,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT id, tenant_id, action, user_id, details, ip_address, created_at
			 FROM audit_logs
			 ORDER BY id
			 LIMIT $1 OFFSET $2`,
			filter.Limit, filter.Offset,
		)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("auditRepo.List: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuditLog
	for rows.Next() {
		var e domain.AuditLog

		err = rows.Scan(&e.ID, &e.TenantID, &e.Action, &e.UserID, &e.Details, &e.IPAddress, &e.Timestamp)
		if err != nil {
			return nil, 0, fmt.Errorf("auditRepo.List: scan: %w", err)
		}

		entries = append(entries, &e)
	}
	err = rows.Err()
	if err != nil {
		return nil, 0, fmt.Errorf("auditRepo.List: rows: %w", err)
	}

	return entries, total, nil
}

func (r *AuditRepo) GetByID(ctx context.Context, id int64) (*domain.AuditLog, error) {
	var e domain.AuditLog

	err := r.pool.QueryRow(ctx,
		`SELECT id, tenant_id, action, user_id, details, ip_address, created_at
		 FROM audit_logs WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.TenantID, &e.Action, &e.UserID, &e.Details, &e.IPAddress, &e.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("auditRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("auditRepo.GetByID: %w", err)
	}

	return &e, nil
}

func (r *AuditRepo) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM audit_logs WHERE id = $1`,
		id,
	)
	if err != nil {
		return 0, fmt.Errorf("auditRepo.Delete: %w", err)
	}

	return tag.RowsAffected(), nil
}
