package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sanctuary-platform/console/backend/internal/domain"
)

// InsertContentItem writes the item and its audit record in one transaction.
func (r *Repository) InsertContentItem(item *domain.ContentItem, audit *domain.AuditRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO content_items (site_id, kind, status, is_active, created_by, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at, version
	`

	args := []any{item.SiteID, item.Kind, item.Status, item.IsActive, item.CreatedBy, item.Payload}
	dst := []any{&item.ID, &item.CreatedAt, &item.UpdatedAt, &item.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "content_items_site_id_fkey" {
			return domain.NewNotFoundError("site", item.SiteID)
		}
		return err
	}

	audit.EntityID = item.ID
	if err := insertAuditRecord(ctx, tx, audit); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) GetContentItemByID(id int64) (*domain.ContentItem, error) {
	query := `
		SELECT site_id, kind, status, is_active, rejection_reason, created_by,
			created_at, updated_at, reviewed_at, reviewed_by, payload, version
		FROM content_items WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	item := &domain.ContentItem{
		ID: id,
	}

	var rejectionReason sql.NullString
	dst := []any{
		&item.SiteID,
		&item.Kind,
		&item.Status,
		&item.IsActive,
		&rejectionReason,
		&item.CreatedBy,
		&item.CreatedAt,
		&item.UpdatedAt,
		&item.ReviewedAt,
		&item.ReviewedBy,
		&item.Payload,
		&item.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("content item", id)
		}
		return nil, err
	}
	item.RejectionReason = rejectionReason.String

	return item, nil
}

// UpdateContentItem is a version-guarded write; it fails with
// domain.ErrVersionConflict when the row moved underneath the caller. The
// audit record lands in the same transaction.
func (r *Repository) UpdateContentItem(item *domain.ContentItem, audit *domain.AuditRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE content_items
		SET
			status = $1,
			is_active = $2,
			rejection_reason = NULLIF($3, ''),
			reviewed_at = $4,
			reviewed_by = $5,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING updated_at, version
	`

	args := []any{item.Status, item.IsActive, item.RejectionReason, item.ReviewedAt, item.ReviewedBy, item.ID, item.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&item.UpdatedAt, &item.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.contentWriteConflict(ctx, tx, item.ID)
		}
		return err
	}

	if err := insertAuditRecord(ctx, tx, audit); err != nil {
		return err
	}

	return tx.Commit()
}

// contentWriteConflict tells a vanished row apart from a stale version.
func (r *Repository) contentWriteConflict(ctx context.Context, tx *sql.Tx, id int64) error {
	exists := false
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM content_items WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.NewNotFoundError("content item", id)
	}
	return domain.ErrVersionConflict
}

func (r *Repository) GetContentItemsBySiteAndKind(siteID int64, kind domain.ContentKind) ([]*domain.ContentItem, error) {
	query := `
		SELECT id, site_id, kind, status, is_active, rejection_reason, created_by,
			created_at, updated_at, reviewed_at, reviewed_by, payload, version
		FROM content_items
		WHERE site_id = $1 AND kind = $2
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, siteID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.ContentItem, 0)
	for rows.Next() {
		item := &domain.ContentItem{}
		var rejectionReason sql.NullString
		dst := []any{
			&item.ID,
			&item.SiteID,
			&item.Kind,
			&item.Status,
			&item.IsActive,
			&rejectionReason,
			&item.CreatedBy,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.ReviewedAt,
			&item.ReviewedBy,
			&item.Payload,
			&item.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		item.RejectionReason = rejectionReason.String
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
