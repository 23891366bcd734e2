package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sanctuary-platform/console/backend/internal/domain"
)

func insertAuditRecord(ctx context.Context, tx *sql.Tx, audit *domain.AuditRecord) error {
	query := `
		INSERT INTO audit_records (entity_kind, entity_id, actor_id, from_status, to_status, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	args := []any{audit.EntityKind, audit.EntityID, audit.ActorID, audit.FromStatus, audit.ToStatus, audit.Note}
	return tx.QueryRowContext(ctx, query, args...).Scan(&audit.ID, &audit.CreatedAt)
}

func (r *Repository) GetAuditRecords(entityKind string, entityID int64) ([]*domain.AuditRecord, error) {
	query := `
		SELECT id, entity_kind, entity_id, actor_id, from_status, to_status, note, created_at
		FROM audit_records
		WHERE entity_kind = $1 AND entity_id = $2
		ORDER BY created_at ASC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, entityKind, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.AuditRecord, 0)
	for rows.Next() {
		record := &domain.AuditRecord{}
		dst := []any{&record.ID, &record.EntityKind, &record.EntityID, &record.ActorID, &record.FromStatus, &record.ToStatus, &record.Note, &record.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
