package auction

import "errors"

// Errors returned by engine operations. All are caller-recoverable; the HTTP
// layer maps them onto response codes.
var (
	ErrNotFound           = errors.New("player not found")
	ErrInvalidState       = errors.New("operation not valid in current auction state")
	ErrInsufficientBudget = errors.New("insufficient budget")
	ErrTeamFull           = errors.New("team has reached maximum player limit")
	ErrValidation         = errors.New("invalid input")
)
