// ABOUTME: Error taxonomy for catalog calls: transport, service and local validation failures
// ABOUTME: UserMessage maps any error to the text shown in the console

package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

// GenericMessage is shown when the service gives no usable message.
const GenericMessage = "Something went wrong"

// Sentinel errors matched with errors.Is against an *Error.
var (
	// ErrMissingID is returned before any request when a book id is empty.
	ErrMissingID = errors.New("invalid book id")

	// ErrUnauthorized matches service responses with status 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound matches service responses with status 404.
	ErrNotFound = errors.New("not found")
)

// Kind classifies where a failure happened.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindService
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindService:
		return "service"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is returned by every Client method.
type Error struct {
	Kind    Kind
	Op      string // e.g. "list books"
	Status  int    // HTTP status for KindService
	Field   string // offending field for KindValidation
	Message string // service- or validation-provided message, may be empty
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindService:
		if e.Message != "" {
			return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
		}
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	case KindValidation:
		if e.Field != "" {
			return fmt.Sprintf("%s: %s: %s", e.Op, e.Field, e.Message)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets callers match service statuses against the package sentinels.
func (e *Error) Is(target error) bool {
	if e.Kind != KindService {
		return false
	}
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// NewValidationError builds a local validation failure. It is never sent to the service.
func NewValidationError(op, field, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Field: field, Message: message}
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var cerr *Error
	return errors.As(err, &cerr) && cerr.Kind == KindValidation
}

// UserMessage returns the operator-facing text for err: the service message when
// present, the validation message for local failures, GenericMessage otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var cerr *Error
	if !errors.As(err, &cerr) {
		return GenericMessage
	}
	switch cerr.Kind {
	case KindService, KindValidation:
		if cerr.Message != "" {
			return cerr.Message
		}
	}
	return GenericMessage
}
