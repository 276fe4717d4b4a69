package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrSecretNotFound  = errors.New("secret not found")

	// ErrAuthorizationRequired is returned when a save would push a dimension
	// past its hard limit and no authorization key has been captured.
	ErrAuthorizationRequired = errors.New("authorization required: pending change exceeds a hard limit")
	ErrDimensionLocked       = errors.New("dimension is at or above its hard limit")
	ErrUnknownDimension      = errors.New("unknown restraint dimension")

	ErrNothingToRepay       = errors.New("no outstanding cognitive debt")
	ErrConfirmationRequired = errors.New("confirmation required")

	ErrValidation = errors.New("validation failed")
)

// RequireText rejects empty or whitespace-only input before any request is made.
func RequireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	return nil
}
