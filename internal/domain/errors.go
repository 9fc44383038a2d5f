package domain

import "errors"

var (
	// ErrInvalidAuth is a credential rejection during onboarding.
	ErrInvalidAuth = errors.New("invalid auth")
	// ErrUnknown covers every other upstream failure.
	ErrUnknown = errors.New("unknown error")

	ErrEmptySchedule        = errors.New("pickup schedule is empty")
	ErrInconsistentState    = errors.New("onboarding state is inconsistent")
	ErrNotReady             = errors.New("not ready")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSecretNotFound       = errors.New("secret not found")
)
