package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-ops-api/internal/model"
)

// ErrNotFound is returned when a lookup matches no row, including the
// conditional attend update losing to a concurrent transition.
var ErrNotFound = errors.New("not found")

type (
	// CheckinRepository is the durable store of check-in records.
	// Records are appended by Create, transitioned at most once by
	// MarkAttended, and never deleted.
	CheckinRepository interface {
		Create(ctx context.Context, checkin *model.Checkin) error
		Get(ctx context.Context, id uuid.UUID) (*model.Checkin, error)
		// MarkAttended performs the waiting -> attended transition as a
		// single conditional update: it only succeeds while the record is
		// still waiting, and returns ErrNotFound otherwise. Notes are
		// appended to any prior notes with a newline separator. The
		// returned record carries the computed waiting time.
		MarkAttended(ctx context.Context, id uuid.UUID, attendedAt time.Time, notes string) (*model.Checkin, error)
		HasWaiting(ctx context.Context, patientID uuid.UUID) (bool, error)
		ListWaiting(ctx context.Context, limit int) ([]*model.Checkin, error)
		// ListByTimeRange returns records with checkin_time in [from, to),
		// ordered ascending by checkin_time.
		ListByTimeRange(ctx context.Context, from, to time.Time) ([]*model.Checkin, error)
		CountByTimeRange(ctx context.Context, from, to time.Time) (int, error)
	}

	// PatientRepository is the read-only view of the patient collaborator.
	PatientRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
