package service

import "errors"

// Ошибки движка занятий. Всё, что не из этого списка, считается ошибкой хранилища.
var (
	ErrValidation             = errors.New("validation failed")
	ErrInvalidRole            = errors.New("invalid role")
	ErrInvalidTimeRange       = errors.New("end time must be after start time")
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrAlreadyRated           = errors.New("session already rated")
	ErrQuotaExceeded          = errors.New("daily booking limit exceeded")
	ErrCancellationLocked     = errors.New("cancellation locked")
	ErrConflict               = errors.New("concurrent update conflict")
)
