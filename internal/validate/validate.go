// Package validate turns declarative struct constraints and raw query strings
// into normalized inputs or field-level validation errors.
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/plumeblog/plume/internal/platform/httpx"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report field names as they appear on the wire.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Registration passwords need one lowercase letter, one uppercase letter
	// and one digit on top of the length constraint.
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		var lower, upper, digit bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsLower(r):
				lower = true
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsDigit(r):
				digit = true
			}
		}
		return lower && upper && digit
	})
	return v
}

// Struct validates a decoded request body against its constraint tags. On
// failure it returns a validation error carrying one {field, message} pair
// per violated constraint.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return httpx.InternalError("validation failed", err)
	}
	details := make([]httpx.FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, httpx.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return httpx.ValidationError("invalid request data", details)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.Join(strings.Fields(fe.Param()), ", "))
	case "password":
		return "must contain an uppercase letter, a lowercase letter, and a digit"
	case "containsany":
		return fmt.Sprintf("must contain at least one of %q", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// Defaults and bounds for list queries.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	maxQueryLength = 100
)

// ListParams is the normalized view of pagination and search query strings.
// Handlers consume it instead of the raw URL values.
type ListParams struct {
	Page      int
	Limit     int
	Query     string
	SortBy    string
	SortOrder string
}

// ListQuery coerces pagination and search parameters. Absent or unparseable
// numerics fall back to defaults and limit is clamped into [1, MaxLimit];
// malformed enum values and oversized search terms are rejected.
func ListQuery(values url.Values) (ListParams, error) {
	params := ListParams{
		Page:      intOrDefault(values.Get("page"), DefaultPage),
		Limit:     intOrDefault(values.Get("limit"), DefaultLimit),
		Query:     strings.TrimSpace(values.Get("query")),
		SortBy:    values.Get("sortBy"),
		SortOrder: values.Get("sortOrder"),
	}
	if params.Page < 1 {
		params.Page = DefaultPage
	}
	if params.Limit < 1 {
		params.Limit = DefaultLimit
	}
	if params.Limit > MaxLimit {
		params.Limit = MaxLimit
	}
	if params.SortBy == "" {
		params.SortBy = "createdAt"
	}
	if params.SortOrder == "" {
		params.SortOrder = "desc"
	}

	var details []httpx.FieldError
	if len(params.Query) > maxQueryLength {
		details = append(details, httpx.FieldError{Field: "query", Message: fmt.Sprintf("must be at most %d characters", maxQueryLength)})
	}
	switch params.SortBy {
	case "createdAt", "title", "updatedAt":
	default:
		details = append(details, httpx.FieldError{Field: "sortBy", Message: "must be one of: createdAt, title, updatedAt"})
	}
	switch params.SortOrder {
	case "asc", "desc":
	default:
		details = append(details, httpx.FieldError{Field: "sortOrder", Message: "must be one of: asc, desc"})
	}
	if len(details) > 0 {
		return ListParams{}, httpx.ValidationError("invalid query parameters", details)
	}
	return params, nil
}

func intOrDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
