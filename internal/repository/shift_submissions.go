package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/sanctuary-platform/console/backend/internal/domain"
)

func (r *Repository) InsertShiftSubmission(sub *domain.ShiftSubmission, audit *domain.AuditRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// The frozen diff snapshot is stored as a json document; it is written
	// once here and never updated.
	var changes []byte
	if sub.Changes != nil {
		changes, err = json.Marshal(sub.Changes)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO shift_submissions (guide_id, site_id, submission_type, week_start_date, status, changes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	args := []any{sub.GuideID, sub.SiteID, sub.SubmissionType, sub.WeekStartDate, sub.Status, changes}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&sub.ID, &sub.CreatedAt, &sub.Version); err != nil {
		return err
	}

	for _, shift := range sub.Shifts {
		query := `
			INSERT INTO shift_submission_shifts (shift_submission_id, day_of_week, start_time, end_time)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, query, sub.ID, shift.DayOfWeek, shift.StartTime, shift.EndTime); err != nil {
			return err
		}
	}

	audit.EntityID = sub.ID
	if err := insertAuditRecord(ctx, tx, audit); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) GetShiftSubmissionByID(id int64) (*domain.ShiftSubmission, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT guide_id, site_id, submission_type, week_start_date, status,
			rejection_reason, changes, created_at, reviewed_at, reviewed_by, superseded_at, version
		FROM shift_submissions WHERE id = $1
	`

	sub := &domain.ShiftSubmission{
		ID: id,
	}

	var rejectionReason sql.NullString
	var changes []byte
	dst := []any{
		&sub.GuideID,
		&sub.SiteID,
		&sub.SubmissionType,
		&sub.WeekStartDate,
		&sub.Status,
		&rejectionReason,
		&changes,
		&sub.CreatedAt,
		&sub.ReviewedAt,
		&sub.ReviewedBy,
		&sub.SupersededAt,
		&sub.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("shift submission", id)
		}
		return nil, err
	}
	sub.RejectionReason = rejectionReason.String

	if len(changes) > 0 {
		sub.Changes = &domain.ChangeSet{}
		if err := json.Unmarshal(changes, sub.Changes); err != nil {
			return nil, err
		}
	}

	shifts, err := r.getSubmissionShifts(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	sub.Shifts = shifts

	return sub, nil
}

// GetCurrentApprovedSubmission returns the guide's approved and unsuperseded
// submission, or (nil, nil) when there is none.
func (r *Repository) GetCurrentApprovedSubmission(guideID int64) (*domain.ShiftSubmission, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id FROM shift_submissions
		WHERE guide_id = $1 AND status = 'approved' AND superseded_at IS NULL
	`

	var id int64
	if err := r.dbpool.QueryRowContext(ctx, query, guideID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return r.GetShiftSubmissionByID(id)
}

func (r *Repository) GetCurrentApprovedSubmissionsBySite(siteID int64) ([]*domain.ShiftSubmission, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			ss.id,
			ss.guide_id,
			ss.submission_type,
			ss.week_start_date,
			ss.created_at,
			ss.reviewed_at,
			ss.reviewed_by,
			ss.version,
			sss.day_of_week,
			sss.start_time,
			sss.end_time
		FROM shift_submissions ss
		LEFT JOIN shift_submission_shifts sss ON ss.id = sss.shift_submission_id
		WHERE ss.site_id = $1 AND ss.status = 'approved' AND ss.superseded_at IS NULL
		ORDER BY ss.id, sss.day_of_week
	`

	rows, err := r.dbpool.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subsMap := make(map[int64]*domain.ShiftSubmission)
	order := make([]int64, 0)

	for rows.Next() {
		var row struct {
			id             int64
			guideID        int64
			submissionType domain.SubmissionType
			weekStartDate  time.Time
			createdAt      time.Time
			reviewedAt     *time.Time
			reviewedBy     *int64
			version        int32
			dayOfWeek      sql.NullInt32
			startTime      sql.NullString
			endTime        sql.NullString
		}

		dst := []any{
			&row.id,
			&row.guideID,
			&row.submissionType,
			&row.weekStartDate,
			&row.createdAt,
			&row.reviewedAt,
			&row.reviewedBy,
			&row.version,
			&row.dayOfWeek,
			&row.startTime,
			&row.endTime,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if _, exists := subsMap[row.id]; !exists {
			subsMap[row.id] = &domain.ShiftSubmission{
				ID:             row.id,
				GuideID:        row.guideID,
				SiteID:         siteID,
				SubmissionType: row.submissionType,
				WeekStartDate:  row.weekStartDate,
				Status:         domain.StatusApproved,
				Shifts:         make([]domain.ShiftDefinition, 0),
				CreatedAt:      row.createdAt,
				ReviewedAt:     row.reviewedAt,
				ReviewedBy:     row.reviewedBy,
				Version:        row.version,
			}
			order = append(order, row.id)
		}

		if !row.dayOfWeek.Valid {
			// An approved submission without shifts should not exist, but a
			// left join makes the case representable.
			continue
		}

		subsMap[row.id].Shifts = append(subsMap[row.id].Shifts, domain.ShiftDefinition{
			DayOfWeek: row.dayOfWeek.Int32,
			StartTime: row.startTime.String,
			EndTime:   row.endTime.String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	subs := make([]*domain.ShiftSubmission, 0, len(order))
	for _, id := range order {
		subs = append(subs, subsMap[id])
	}

	return subs, nil
}

func (r *Repository) GetShiftSubmissionsByGuide(guideID int64) ([]*domain.ShiftSubmission, error) {
	return r.getSubmissionsWhere(`guide_id = $1`, guideID)
}

func (r *Repository) GetShiftSubmissionsBySite(siteID int64) ([]*domain.ShiftSubmission, error) {
	return r.getSubmissionsWhere(`site_id = $1`, siteID)
}

func (r *Repository) getSubmissionsWhere(where string, arg any) ([]*domain.ShiftSubmission, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id FROM shift_submissions
		WHERE ` + where + `
		ORDER BY created_at DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	subs := make([]*domain.ShiftSubmission, 0, len(ids))
	for _, id := range ids {
		sub, err := r.GetShiftSubmissionByID(id)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	return subs, nil
}

// UpdateShiftSubmission is a version-guarded write of the review fields; the
// audit record lands in the same transaction.
func (r *Repository) UpdateShiftSubmission(sub *domain.ShiftSubmission, audit *domain.AuditRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := updateSubmissionTx(ctx, tx, sub); err != nil {
		return err
	}
	if err := insertAuditRecord(ctx, tx, audit); err != nil {
		return err
	}

	return tx.Commit()
}

// ApproveShiftSubmission applies the approve+supersede pair atomically. When
// either guarded write loses its version check the whole transaction rolls
// back, so a half-applied supersession is never observable.
func (r *Repository) ApproveShiftSubmission(approved *domain.ShiftSubmission, previous *domain.ShiftSubmission, audits []*domain.AuditRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := updateSubmissionTx(ctx, tx, approved); err != nil {
		return err
	}
	if previous != nil {
		if err := updateSubmissionTx(ctx, tx, previous); err != nil {
			return err
		}
	}
	for _, audit := range audits {
		if err := insertAuditRecord(ctx, tx, audit); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func updateSubmissionTx(ctx context.Context, tx *sql.Tx, sub *domain.ShiftSubmission) error {
	query := `
		UPDATE shift_submissions
		SET
			status = $1,
			rejection_reason = NULLIF($2, ''),
			reviewed_at = $3,
			reviewed_by = $4,
			superseded_at = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	args := []any{sub.Status, sub.RejectionReason, sub.ReviewedAt, sub.ReviewedBy, sub.SupersededAt, sub.ID, sub.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&sub.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			exists := false
			if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM shift_submissions WHERE id = $1)`, sub.ID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return domain.NewNotFoundError("shift submission", sub.ID)
			}
			return domain.ErrVersionConflict
		}
		return err
	}

	return nil
}

func (r *Repository) getSubmissionShifts(ctx context.Context, submissionID int64) ([]domain.ShiftDefinition, error) {
	query := `
		SELECT day_of_week, start_time, end_time
		FROM shift_submission_shifts
		WHERE shift_submission_id = $1
		ORDER BY day_of_week
	`

	rows, err := r.dbpool.QueryContext(ctx, query, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]domain.ShiftDefinition, 0)
	for rows.Next() {
		var shift domain.ShiftDefinition
		if err := rows.Scan(&shift.DayOfWeek, &shift.StartTime, &shift.EndTime); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}
