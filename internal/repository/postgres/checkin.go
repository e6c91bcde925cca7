package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-ops-api/internal/model"
	"github.com/jwalitptl/clinic-ops-api/internal/repository"
)

func (r *checkinRepository) Create(ctx context.Context, checkin *model.Checkin) error {
	query := `
		INSERT INTO checkins (
			id, patient_id, checkin_time, payment_method, amount,
			status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		checkin.ID,
		checkin.PatientID,
		checkin.CheckinTime,
		checkin.PaymentMethod,
		checkin.Amount,
		checkin.Status,
		checkin.Notes,
		checkin.CreatedAt,
		checkin.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create checkin: %w", err)
	}
	return nil
}

func (r *checkinRepository) Get(ctx context.Context, id uuid.UUID) (*model.Checkin, error) {
	query := `
		SELECT id, patient_id, checkin_time, payment_method, amount,
		       status, attended_at, waiting_time_minutes, notes,
		       created_at, updated_at
		FROM checkins
		WHERE id = $1
	`
	var checkin model.Checkin
	err := r.db.GetContext(ctx, &checkin, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkin: %w", err)
	}
	return &checkin, nil
}

// MarkAttended is a compare-and-swap on status: the WHERE clause only
// matches while the record is still waiting, so concurrent attends can
// never both succeed. Waiting time and note concatenation happen inside
// the same statement to keep the transition atomic.
func (r *checkinRepository) MarkAttended(ctx context.Context, id uuid.UUID, attendedAt time.Time, notes string) (*model.Checkin, error) {
	query := `
		UPDATE checkins
		SET status = $2,
		    attended_at = $3,
		    waiting_time_minutes = ROUND(EXTRACT(EPOCH FROM ($3::timestamptz - checkin_time)) / 60),
		    notes = CASE
		        WHEN $4 = '' THEN notes
		        WHEN notes = '' THEN $4
		        ELSE notes || E'\n' || $4
		    END,
		    updated_at = $3
		WHERE id = $1 AND status = $5
		RETURNING id, patient_id, checkin_time, payment_method, amount,
		          status, attended_at, waiting_time_minutes, notes,
		          created_at, updated_at
	`
	var checkin model.Checkin
	err := r.db.GetContext(ctx, &checkin, query,
		id, model.CheckinStatusAttended, attendedAt, notes, model.CheckinStatusWaiting)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark checkin attended: %w", err)
	}
	return &checkin, nil
}

func (r *checkinRepository) HasWaiting(ctx context.Context, patientID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM checkins
			WHERE patient_id = $1 AND status = $2
		)
	`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, patientID, model.CheckinStatusWaiting)
	if err != nil {
		return false, fmt.Errorf("failed to check waiting checkin: %w", err)
	}
	return exists, nil
}

func (r *checkinRepository) ListWaiting(ctx context.Context, limit int) ([]*model.Checkin, error) {
	query := `
		SELECT id, patient_id, checkin_time, payment_method, amount,
		       status, attended_at, waiting_time_minutes, notes,
		       created_at, updated_at
		FROM checkins
		WHERE status = $1
		ORDER BY checkin_time ASC
		LIMIT $2
	`
	var checkins []*model.Checkin
	err := r.db.SelectContext(ctx, &checkins, query, model.CheckinStatusWaiting, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list waiting checkins: %w", err)
	}
	return checkins, nil
}

func (r *checkinRepository) ListByTimeRange(ctx context.Context, from, to time.Time) ([]*model.Checkin, error) {
	query := `
		SELECT id, patient_id, checkin_time, payment_method, amount,
		       status, attended_at, waiting_time_minutes, notes,
		       created_at, updated_at
		FROM checkins
		WHERE checkin_time >= $1 AND checkin_time < $2
		ORDER BY checkin_time ASC
	`
	var checkins []*model.Checkin
	err := r.db.SelectContext(ctx, &checkins, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkins by time range: %w", err)
	}
	return checkins, nil
}

func (r *checkinRepository) CountByTimeRange(ctx context.Context, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM checkins
		WHERE checkin_time >= $1 AND checkin_time < $2
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to count checkins: %w", err)
	}
	return count, nil
}
