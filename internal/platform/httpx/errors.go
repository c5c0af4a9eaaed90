package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind is the closed set of failure classes the API can produce. The central
// handler switches exhaustively over it instead of inspecting arbitrary
// fields on caught errors.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindRateLimit
)

// FieldError is one violated constraint on one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the tagged error variant carried from any layer to the central
// response mapping.
type Error struct {
	Kind    Kind
	Message string
	Details []FieldError
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// ValidationError builds a 400-class error with field-level details.
func ValidationError(message string, details []FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// AuthenticationError builds a 401-class error.
func AuthenticationError(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// AuthorizationError builds a 403-class error.
func AuthorizationError(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// NotFoundError builds a 404-class error.
func NotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// ConflictError builds a 409-class error.
func ConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// InternalError wraps an unexpected failure.
func InternalError(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// uniqueViolation is the PostgreSQL error code for unique constraint failures.
const uniqueViolation = "23505"

// Classify folds storage and token failures into the closed taxonomy.
// Anything unrecognized becomes an internal error.
func Classify(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ConflictError("resource already exists")
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFoundError("resource not found")
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return AuthenticationError("token expired")
	}
	if errors.Is(err, jwt.ErrTokenMalformed) || errors.Is(err, jwt.ErrSignatureInvalid) ||
		errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenUnverifiable) {
		return AuthenticationError("invalid token")
	}

	return InternalError("internal server error", err)
}

func (k Kind) status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// RespondError maps any failure to the error envelope. It is the single
// source of truth for error status codes and shapes.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	apiErr := Classify(err)
	if apiErr.Kind == KindInternal && logger != nil {
		logger.Error("unhandled request error", slog.Any("error", err))
	}
	// Error messages are constructed deliberately by each layer; causes never
	// reach the envelope.
	JSON(w, apiErr.Kind.status(), ErrorEnvelope{Error: apiErr.Message, Details: apiErr.Details})
}
