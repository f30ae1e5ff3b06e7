// Package apperror contains the sentinel errors shared by services and
// controllers, and the mapping of those errors onto HTTP responses.
package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

var (
	// ErrIdentity indicates an OAuth profile that cannot be mapped to a user.
	ErrIdentity = errors.New("identity could not be resolved")

	// ErrInvalidPlan indicates an unknown subscription plan.
	ErrInvalidPlan = errors.New("invalid plan")

	// ErrAccessDenied indicates an ownership or entitlement violation.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound indicates the requested template or copy does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStorage indicates a blob store failure.
	ErrStorage = errors.New("storage failure")

	// ErrConflict indicates a unique constraint violation (e.g. already saved).
	ErrConflict = errors.New("already exists")

	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
)

// Reason codes carried in the "error" field of failure responses.
const (
	ReasonLoginRequired   = "login_required"
	ReasonPremiumRequired = "premium_required"
	ReasonNotOwner        = "not_owner"
	ReasonAdminRequired   = "admin_required"
	ReasonNotFound        = "not_found"
	ReasonInvalidPlan     = "invalid_plan"
	ReasonStorage         = "storage_error"
	ReasonConflict        = "conflict"
	ReasonValidation      = "validation_error"
	ReasonIdentity        = "identity_error"
	ReasonInternal        = "internal_error"
)

// Error is a classified error with a user-facing message and a reason code.
type Error struct {
	Kind    error
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func New(kind error, reason, message string) error {
	return &Error{Kind: kind, Reason: reason, Message: message}
}

func Wrap(kind error, reason, message string, err error) error {
	return &Error{Kind: kind, Reason: reason, Message: message, Err: err}
}

func Denied(reason, message string) error {
	return New(ErrAccessDenied, reason, message)
}

func NotFound(message string) error {
	return New(ErrNotFound, ReasonNotFound, message)
}

func Storage(message string, err error) error {
	return Wrap(ErrStorage, ReasonStorage, message, err)
}

func Invalid(message string, err error) error {
	return Wrap(ErrValidation, ReasonValidation, message, err)
}

// FromDB translates gorm.ErrRecordNotFound into ErrNotFound and passes
// everything else through.
func FromDB(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(what + " not found")
	}
	return err
}

// Status maps an error onto an HTTP status code.
func Status(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, ErrInvalidPlan), errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrIdentity):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrAccessDenied):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ReasonOf returns the machine-readable reason carried by err.
func ReasonOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Reason != "" {
		return ae.Reason
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrInvalidPlan):
		return ReasonInvalidPlan
	case errors.Is(err, ErrConflict):
		return ReasonConflict
	case errors.Is(err, ErrValidation):
		return ReasonValidation
	case errors.Is(err, ErrStorage):
		return ReasonStorage
	}
	return ReasonInternal
}

// MessageOf returns the user-facing message of err. Unclassified errors never
// leak their text.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrInvalidPlan):
		return "Invalid plan type"
	case errors.Is(err, ErrAccessDenied):
		return "Access denied"
	case errors.Is(err, ErrConflict):
		return "Already exists"
	}
	return "Internal server error"
}

// Respond writes the JSON failure envelope {success:false, message, error}.
func Respond(c *fiber.Ctx, err error) error {
	status := Status(err)
	if status >= fiber.StatusInternalServerError {
		log.Errorf("[API] %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": MessageOf(err),
		"error":   ReasonOf(err),
	})
}
