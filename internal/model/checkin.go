package model

import (
	"time"

	"github.com/google/uuid"
)

type CheckinStatus string

const (
	CheckinStatusWaiting   CheckinStatus = "waiting"
	CheckinStatusAttended  CheckinStatus = "attended"
	CheckinStatusCancelled CheckinStatus = "cancelled"
)

func (s CheckinStatus) Valid() bool {
	switch s {
	case CheckinStatusWaiting, CheckinStatusAttended, CheckinStatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodMedicalAid PaymentMethod = "medical_aid"
	PaymentMethodCash       PaymentMethod = "cash"
	PaymentMethodBoth       PaymentMethod = "both"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodMedicalAid, PaymentMethodCash, PaymentMethodBoth:
		return true
	}
	return false
}

// RequiresPayment reports whether an amount must accompany the check-in.
func (m PaymentMethod) RequiresPayment() bool {
	return m == PaymentMethodCash || m == PaymentMethodBoth
}

// UsesMedicalAid reports whether the patient must have medical aid
// identifiers on file.
func (m PaymentMethod) UsesMedicalAid() bool {
	return m == PaymentMethodMedicalAid || m == PaymentMethodBoth
}

// MaxCheckinAmount is the ceiling for a single check-in payment.
const MaxCheckinAmount = 999999.99

// Checkin is one arrival event. CheckinTime is immutable after creation;
// AttendedAt and WaitingTimeMinutes are set exactly once, by the attend
// transition. Records are never deleted, historical reports depend on them.
type Checkin struct {
	ID                 uuid.UUID     `db:"id" json:"id"`
	PatientID          uuid.UUID     `db:"patient_id" json:"patient_id"`
	CheckinTime        time.Time     `db:"checkin_time" json:"checkin_time"`
	PaymentMethod      PaymentMethod `db:"payment_method" json:"payment_method"`
	Amount             *float64      `db:"amount" json:"amount,omitempty"`
	Status             CheckinStatus `db:"status" json:"status"`
	AttendedAt         *time.Time    `db:"attended_at" json:"attended_at,omitempty"`
	WaitingTimeMinutes *int          `db:"waiting_time_minutes" json:"waiting_time_minutes,omitempty"`
	Notes              string        `db:"notes" json:"notes,omitempty"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updated_at"`
}

// CheckinDetail is a Checkin joined with the patient summary fields used
// for display. The join happens at read time, nothing is duplicated into
// the checkins table.
type CheckinDetail struct {
	Checkin
	Patient PatientSummary `json:"patient"`
}

type CreateCheckinRequest struct {
	PatientID     string   `json:"patient_id" binding:"required,uuid"`
	PaymentMethod string   `json:"payment_method" binding:"required,payment_method"`
	Amount        *float64 `json:"amount"`
	Notes         string   `json:"notes" binding:"max=2000"`
}

type AttendCheckinRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

// QueueEntry is one row of the live waiting queue. WaitingTimeMinutes is
// computed against the request's clock, floor of elapsed whole minutes,
// because the wait is still in progress.
type QueueEntry struct {
	CheckinID          uuid.UUID      `json:"checkin_id"`
	PatientID          uuid.UUID      `json:"patient_id"`
	CheckinTime        time.Time      `json:"checkin_time"`
	PaymentMethod      PaymentMethod  `json:"payment_method"`
	Amount             *float64       `json:"amount,omitempty"`
	WaitingTimeMinutes int            `json:"waiting_time_minutes"`
	Patient            PatientSummary `json:"patient"`
}

const (
	DefaultQueueLimit = 50
	MaxQueueLimit     = 100
)
