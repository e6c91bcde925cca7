package model

import (
	"github.com/google/uuid"
)

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
)

type IDType string

const (
	IDTypeNationalID IDType = "national_id"
	IDTypePassport   IDType = "passport"
)

// Patient is the read model served by the patient collaborator. The
// check-in core never mutates patients; it validates against them and
// denormalizes their display fields at read time.
type Patient struct {
	ID               uuid.UUID     `db:"id" json:"id"`
	FirstName        string        `db:"first_name" json:"first_name"`
	LastName         string        `db:"last_name" json:"last_name"`
	Phone            string        `db:"phone" json:"phone"`
	Email            string        `db:"email" json:"email"`
	Status           PatientStatus `db:"status" json:"status"`
	IDType           IDType        `db:"id_type" json:"id_type"`
	NationalID       *string       `db:"national_id" json:"national_id,omitempty"`
	Passport         *string       `db:"passport" json:"passport,omitempty"`
	MedicalAid       *string       `db:"medical_aid" json:"medical_aid,omitempty"`
	MedicalAidNumber *string       `db:"medical_aid_number" json:"medical_aid_number,omitempty"`
}

func (p *Patient) Active() bool {
	return p.Status == PatientStatusActive
}

// HasMedicalAidInfo reports whether both medical aid identifiers are on
// file. Required before a medical_aid or both check-in is accepted.
func (p *Patient) HasMedicalAidInfo() bool {
	return p.MedicalAid != nil && *p.MedicalAid != "" &&
		p.MedicalAidNumber != nil && *p.MedicalAidNumber != ""
}

// Identification returns the value matching the patient's id type.
func (p *Patient) Identification() string {
	switch p.IDType {
	case IDTypePassport:
		if p.Passport != nil {
			return *p.Passport
		}
	default:
		if p.NationalID != nil {
			return *p.NationalID
		}
	}
	return ""
}

// PatientSummary is the denormalized subset joined onto check-in and
// queue responses.
type PatientSummary struct {
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Identification   string `json:"identification,omitempty"`
	MedicalAid       string `json:"medical_aid,omitempty"`
	MedicalAidNumber string `json:"medical_aid_number,omitempty"`
}

func (p *Patient) Summary() PatientSummary {
	s := PatientSummary{
		Name:           p.FirstName + " " + p.LastName,
		Phone:          p.Phone,
		Identification: p.Identification(),
	}
	if p.MedicalAid != nil {
		s.MedicalAid = *p.MedicalAid
	}
	if p.MedicalAidNumber != nil {
		s.MedicalAidNumber = *p.MedicalAidNumber
	}
	return s
}
