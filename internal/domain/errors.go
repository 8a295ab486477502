package domain

import (
	"errors"
	"fmt"
)

// Coded is implemented by every domain error. ErrorCode is the stable,
// machine-readable value sent to clients as "code".
type Coded interface {
	error
	ErrorCode() string
}

func codeOr(code, fallback string) string {
	if code != "" {
		return code
	}
	return fallback
}

type ValidationError struct {
	Field string
	Msg   string
	Code  string
	Err   error
}

func (e ValidationError) Error() string {
	switch {
	case e.Msg != "" && e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) ErrorCode() string { return codeOr(e.Code, "validation_error") }
func (e ValidationError) Unwrap() error     { return e.Err }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return e.Resource + " not found"
}

func (e NotFoundError) ErrorCode() string { return "not_found" }
func (e NotFoundError) Unwrap() error     { return e.Err }

// ConflictError reports a state clash: duplicate slug, booking already paid,
// transition not allowed from the current status.
type ConflictError struct {
	Resource string
	Msg      string
	Code     string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return e.Resource + " conflict"
	}
	return "conflict"
}

func (e ConflictError) ErrorCode() string { return codeOr(e.Code, "conflict") }
func (e ConflictError) Unwrap() error     { return e.Err }

type UnauthorizedError struct {
	Msg string
	Err error
}

func (e UnauthorizedError) Error() string     { return codeOr(e.Msg, "unauthorized") }
func (e UnauthorizedError) ErrorCode() string { return "unauthorized" }
func (e UnauthorizedError) Unwrap() error     { return e.Err }

type ForbiddenError struct {
	Code string
	Msg  string
	Err  error
}

func (e ForbiddenError) Error() string     { return codeOr(e.Msg, "forbidden") }
func (e ForbiddenError) ErrorCode() string { return codeOr(e.Code, "forbidden") }
func (e ForbiddenError) Unwrap() error     { return e.Err }

// UnavailableError means an optional integration (payments, object storage)
// is not configured on this instance.
type UnavailableError struct {
	Service string
	Err     error
}

func (e UnavailableError) Error() string {
	if e.Service == "" {
		return "service unavailable"
	}
	return e.Service + " is not configured"
}

func (e UnavailableError) ErrorCode() string { return "service_unavailable" }
func (e UnavailableError) Unwrap() error     { return e.Err }

// InternalError text is logged, never returned to clients.
type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string     { return codeOr(e.Msg, "internal error") }
func (e InternalError) ErrorCode() string { return "internal_error" }
func (e InternalError) Unwrap() error     { return e.Err }

func is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

func IsValidation(err error) bool   { return is[ValidationError](err) }
func IsNotFound(err error) bool     { return is[NotFoundError](err) }
func IsConflict(err error) bool     { return is[ConflictError](err) }
func IsUnauthorized(err error) bool { return is[UnauthorizedError](err) }
func IsForbidden(err error) bool    { return is[ForbiddenError](err) }
func IsUnavailable(err error) bool  { return is[UnavailableError](err) }
func IsInternal(err error) bool     { return is[InternalError](err) }

// IsDomain reports whether err (or anything it wraps) is a domain error.
func IsDomain(err error) bool {
	var c Coded
	return errors.As(err, &c)
}

// CodeOf returns the code of the outermost domain error in err's chain, or
// fallback when there is none.
func CodeOf(err error, fallback string) string {
	var c Coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return fallback
}
