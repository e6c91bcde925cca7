package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-ops-api/internal/repository"
)

type checkinRepository struct {
	db *sqlx.DB
}

type patientRepository struct {
	db *sqlx.DB
}

type outboxRepository struct {
	db *sqlx.DB
}

func NewCheckinRepository(db *sqlx.DB) repository.CheckinRepository {
	return &checkinRepository{db: db}
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}
