package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind distinguishes the workflow's failure modes so callers can react
// programmatically; the message is for humans only.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "NotFound"           // tender, project or offer reference does not resolve
	KindNotInvited         ErrorKind = "NotInvited"         // offer from a company without an invitation
	KindInvalidOffer       ErrorKind = "InvalidOffer"       // winning offer absent or belongs to another tender
	KindAlreadyAdjudicated ErrorKind = "AlreadyAdjudicated" // award attempted on a terminal tender
	KindValidation         ErrorKind = "ValidationError"    // missing or malformed required fields
	KindInternal           ErrorKind = "Internal"
)

// Error is a domain error carrying its kind.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError creates a domain error of the given kind.
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of err, or KindInternal for infrastructure errors.
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error kind to the status code the handlers return.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindNotInvited:
		return http.StatusForbidden
	case KindInvalidOffer, KindValidation:
		return http.StatusBadRequest
	case KindAlreadyAdjudicated:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse describes the JSON error body sent to clients.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Message    string `json:"reason"`
}

// NewErrorResponse creates an error body with a status code and message.
func NewErrorResponse(statusCode int, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Message:    message}
}

func (e *ErrorResponse) Error() string {
	return e.Message
}
