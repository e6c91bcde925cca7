package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error code. Codes are part of the
// API contract and never change meaning between releases.
type Code string

const (
	CodeMissingPatientID      Code = "MISSING_PATIENT_ID"
	CodeMissingPaymentMethod  Code = "MISSING_PAYMENT_METHOD"
	CodeInvalidPatientID      Code = "INVALID_PATIENT_ID"
	CodeInvalidPaymentMethod  Code = "INVALID_PAYMENT_METHOD"
	CodeMissingAmount         Code = "MISSING_AMOUNT"
	CodeInvalidAmount         Code = "INVALID_AMOUNT"
	CodeAmountTooLarge        Code = "AMOUNT_TOO_LARGE"
	CodePatientNotFound       Code = "PATIENT_NOT_FOUND"
	CodeMissingMedicalAidInfo Code = "MISSING_MEDICAL_AID_INFO"
	CodeDuplicateCheckin      Code = "DUPLICATE_CHECKIN"
	CodeMissingCheckinID      Code = "MISSING_CHECKIN_ID"
	CodeInvalidCheckinID      Code = "INVALID_CHECKIN_ID"
	CodeCheckinNotFound       Code = "CHECKIN_NOT_FOUND"
	CodeInvalidLimit          Code = "INVALID_LIMIT"
	CodeInvalidPeriod         Code = "INVALID_PERIOD"
	CodeInvalidPayload        Code = "INVALID_PAYLOAD"
	CodeInvalidDateFormat     Code = "INVALID_DATE_FORMAT"
	CodeInvalidDateRange      Code = "INVALID_DATE_RANGE"
	CodeDateRangeTooLarge     Code = "DATE_RANGE_TOO_LARGE"
	CodeInternal              Code = "INTERNAL_ERROR"
)

// AppError carries a stable code plus a human-readable message. The
// wrapped error is for logs only and never reaches the client.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the code onto an HTTP status. State conflicts are 409,
// lookups 404, validation 400, everything else 500.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodePatientNotFound, CodeCheckinNotFound:
		return http.StatusNotFound
	case CodeDuplicateCheckin:
		return http.StatusConflict
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func Internal(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "internal server error", Err: err}
}

// As unwraps err into an *AppError if one is anywhere in the chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the stable code for err, or CodeInternal when err did
// not originate from this package.
func CodeOf(err error) Code {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return CodeInternal
}
