package checkin

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-ops-api/internal/model"
	"github.com/jwalitptl/clinic-ops-api/internal/repository"
	"github.com/jwalitptl/clinic-ops-api/internal/service/event"
	apperrors "github.com/jwalitptl/clinic-ops-api/pkg/errors"
	"github.com/jwalitptl/clinic-ops-api/pkg/metrics"
)

const (
	patientCacheTTL     = 5 * time.Minute
	patientCacheCleanup = 10 * time.Minute

	// Postgres unique_violation; a partial unique index on
	// (patient_id) WHERE status = 'waiting' backs the duplicate guard
	// at the storage level.
	pqUniqueViolation = "23505"
)

// Clock supplies the current time. Injected so waiting-time math is
// deterministic under test.
type Clock func() time.Time

// Service owns the check-in lifecycle: create (waiting), attend
// (terminal) and the live queue view. Cancellation is applied by an
// external collaborator; this service only recognizes the status.
type Service struct {
	repo         repository.CheckinRepository
	patients     repository.PatientRepository
	events       *event.Service
	metrics      *metrics.Metrics
	patientCache *gocache.Cache
	now          Clock
}

func NewService(repo repository.CheckinRepository, patients repository.PatientRepository, events *event.Service, m *metrics.Metrics, clock Clock) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:         repo,
		patients:     patients,
		events:       events,
		metrics:      m,
		patientCache: gocache.New(patientCacheTTL, patientCacheCleanup),
		now:          clock,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateCheckinRequest) (*model.CheckinDetail, error) {
	patientID, err := s.validatePatientID(req.PatientID)
	if err != nil {
		return nil, err
	}

	method, err := validatePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	amount, err := validateAmount(method, req.Amount)
	if err != nil {
		return nil, err
	}

	patient, err := s.lookupPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	if method.UsesMedicalAid() && !patient.HasMedicalAidInfo() {
		return nil, apperrors.New(apperrors.CodeMissingMedicalAidInfo, "patient has no medical aid information on file")
	}

	waiting, err := s.repo.HasWaiting(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to check waiting checkins: %w", err))
	}
	if waiting {
		return nil, apperrors.New(apperrors.CodeDuplicateCheckin, "patient is already checked in")
	}

	now := s.now()
	checkin := &model.Checkin{
		ID:            uuid.New(),
		PatientID:     patientID,
		CheckinTime:   now,
		PaymentMethod: method,
		Amount:        amount,
		Status:        model.CheckinStatusWaiting,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, checkin); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return nil, apperrors.New(apperrors.CodeDuplicateCheckin, "patient is already checked in")
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to create checkin: %w", err))
	}

	s.metrics.CheckinsCreated.WithLabelValues(string(method)).Inc()

	if err := s.events.Emit(ctx, model.EventCheckinCreated, checkin); err != nil {
		log.Warn().Err(err).Str("checkin_id", checkin.ID.String()).Msg("failed to emit checkin.created event")
	}

	return &model.CheckinDetail{
		Checkin: *checkin,
		Patient: patient.Summary(),
	}, nil
}

// Attend finalizes the waiting -> attended transition. The repository
// update is conditional on the record still being waiting, so of two
// concurrent attends exactly one succeeds and the other observes
// CheckinNotFound.
func (s *Service) Attend(ctx context.Context, id uuid.UUID, notes string) (*model.CheckinDetail, error) {
	checkin, err := s.repo.MarkAttended(ctx, id, s.now(), notes)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeCheckinNotFound, "checkin not found or not waiting")
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to attend checkin: %w", err))
	}

	s.metrics.CheckinsAttended.Inc()
	if checkin.WaitingTimeMinutes != nil {
		s.metrics.WaitingTimeMinutes.Observe(float64(*checkin.WaitingTimeMinutes))
	}

	if err := s.events.Emit(ctx, model.EventCheckinAttended, checkin); err != nil {
		log.Warn().Err(err).Str("checkin_id", checkin.ID.String()).Msg("failed to emit checkin.attended event")
	}

	patient, err := s.lookupPatient(ctx, checkin.PatientID)
	if err != nil {
		return nil, err
	}

	return &model.CheckinDetail{
		Checkin: *checkin,
		Patient: patient.Summary(),
	}, nil
}

// Queue returns the currently waiting patients in arrival order. Waiting
// time is the floor of elapsed whole minutes against the injected clock;
// a fresh call recomputes from current time.
func (s *Service) Queue(ctx context.Context, limit int) ([]model.QueueEntry, error) {
	if limit < 0 {
		return nil, apperrors.New(apperrors.CodeInvalidLimit, "limit must be a positive integer")
	}
	if limit == 0 {
		limit = model.DefaultQueueLimit
	}
	if limit > model.MaxQueueLimit {
		limit = model.MaxQueueLimit
	}

	checkins, err := s.repo.ListWaiting(ctx, limit)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list waiting checkins: %w", err))
	}

	now := s.now()
	entries := make([]model.QueueEntry, 0, len(checkins))
	for _, c := range checkins {
		patient, err := s.lookupPatient(ctx, c.PatientID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.QueueEntry{
			CheckinID:          c.ID,
			PatientID:          c.PatientID,
			CheckinTime:        c.CheckinTime,
			PaymentMethod:      c.PaymentMethod,
			Amount:             c.Amount,
			WaitingTimeMinutes: int(math.Floor(now.Sub(c.CheckinTime).Minutes())),
			Patient:            patient.Summary(),
		})
	}

	s.metrics.QueueLength.Set(float64(len(entries)))
	return entries, nil
}

func (s *Service) validatePatientID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, apperrors.New(apperrors.CodeMissingPatientID, "patient_id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apperrors.New(apperrors.CodeInvalidPatientID, "patient_id must be a valid id")
	}
	return id, nil
}

func validatePaymentMethod(raw string) (model.PaymentMethod, error) {
	if raw == "" {
		return "", apperrors.New(apperrors.CodeMissingPaymentMethod, "payment_method is required")
	}
	method := model.PaymentMethod(raw)
	if !method.Valid() {
		return "", apperrors.New(apperrors.CodeInvalidPaymentMethod, "payment_method must be one of medical_aid, cash, both")
	}
	return method, nil
}

// validateAmount enforces the payment rules: mandatory for cash/both,
// non-negative and finite, rounded to 2 decimals, capped.
func validateAmount(method model.PaymentMethod, amount *float64) (*float64, error) {
	if amount == nil {
		if method.RequiresPayment() {
			return nil, apperrors.New(apperrors.CodeMissingAmount, "amount is required for this payment method")
		}
		return nil, nil
	}
	v := *amount
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, apperrors.New(apperrors.CodeInvalidAmount, "amount must be a non-negative number")
	}
	rounded := math.Round(v*100) / 100
	if rounded > model.MaxCheckinAmount {
		return nil, apperrors.New(apperrors.CodeAmountTooLarge, fmt.Sprintf("amount exceeds the maximum of %.2f", model.MaxCheckinAmount))
	}
	return &rounded, nil
}

func (s *Service) lookupPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	if cached, ok := s.patientCache.Get(id.String()); ok {
		return cached.(*model.Patient), nil
	}

	patient, err := s.patients.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodePatientNotFound, "patient not found")
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get patient: %w", err))
	}
	if !patient.Active() {
		return nil, apperrors.New(apperrors.CodePatientNotFound, "patient is not active")
	}

	s.patientCache.Set(id.String(), patient, gocache.DefaultExpiration)
	return patient, nil
}
