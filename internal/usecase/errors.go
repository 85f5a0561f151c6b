package usecase

import "errors"

// DomainError é um erro que o chamador consegue corrigir (400/404).
type DomainError struct {
	Code    string
	Message string
	Details []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError é falha de infraestrutura (banco, disco). Vira 500.
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

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeLeadNotFound = "LEAD_NOT_FOUND"
	CodeStorage      = "STORAGE_ERROR"
)
