package models

import "errors"

// Ошибки доменного уровня. Слои ниже оборачивают их через %w,
// HTTP-слой сопоставляет их с кодами ответа.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrAdmissionDenied    = errors.New("booking limit reached")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidTransition  = errors.New("booking is cancelled and can no longer be changed")
)
