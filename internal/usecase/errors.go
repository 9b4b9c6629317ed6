package usecase

import "errors"

const (
	CodeValidation             = "VALIDATION_ERROR"
	CodeRotationNotFound       = "ROTATION_NOT_FOUND"
	CodeRotationNotLaunched    = "ROTATION_NOT_LAUNCHED"
	CodeEmptyRoster            = "EMPTY_ROSTER"
	CodeNoAvailableParticipant = "NO_AVAILABLE_PARTICIPANT"
	CodeNoRotationForSource    = "NO_ROTATION_FOR_SOURCE"
	CodeLeadNotFound           = "LEAD_NOT_FOUND"
	CodeSlotNotFound           = "SLOT_NOT_FOUND"
	CodeInvalidOrder           = "INVALID_ORDER"
	CodeInvalidJunkRule        = "INVALID_JUNK_RULE"
	CodeDatabase               = "DATABASE_ERROR"
)

// DomainError é uma falha de negócio: o chamador corrige a entrada ou tenta de novo.
type DomainError struct {
	Code      string
	Message   string
	Fields    []ValidationError
	Retryable bool
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError é falha de infraestrutura. Nada foi gravado, então retry é seguro.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// ErrorCode extrai o código do erro; o que não for DomainError vira CodeDatabase.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	var te *TechnicalError
	if errors.As(err, &te) {
		return te.Code
	}
	return CodeDatabase
}

func newDomainError(code, msg string) *DomainError {
	return &DomainError{Code: code, Message: msg}
}

func databaseError(msg string, err error) *TechnicalError {
	return &TechnicalError{Code: CodeDatabase, Message: msg, Err: err}
}
