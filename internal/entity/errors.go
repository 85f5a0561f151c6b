package entity

import "errors"

var (
	ErrLeadNotFound  = errors.New("lead não encontrado")
	ErrNotConfigured = errors.New("not configured")
)
