package server

import (
	"errors"
	"net/http"
)

// Error kinds mirror the façade's response mapping: NotFound → 404,
// Conflict and InvalidInput → 400, Unauthorized → 401, Upstream → 502,
// everything else → 500.
type errorKind int

const (
	kindNotFound errorKind = iota + 1
	kindConflict
	kindInvalidInput
	kindUnauthorized
	kindUpstream
	kindInternal
)

type apiError struct {
	kind    errorKind
	message string
}

func (e *apiError) Error() string {
	return e.message
}

func errNotFound(message string) error {
	return &apiError{kind: kindNotFound, message: message}
}

func errConflict(message string) error {
	return &apiError{kind: kindConflict, message: message}
}

func errInvalidInput(message string) error {
	return &apiError{kind: kindInvalidInput, message: message}
}

func errUnauthorized(message string) error {
	return &apiError{kind: kindUnauthorized, message: message}
}

func errUpstream(message string) error {
	return &apiError{kind: kindUpstream, message: message}
}

func kindOf(err error) errorKind {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.kind
	}
	return kindInternal
}

func statusForError(err error) int {
	switch kindOf(err) {
	case kindNotFound:
		return http.StatusNotFound
	case kindConflict, kindInvalidInput:
		return http.StatusBadRequest
	case kindUnauthorized:
		return http.StatusUnauthorized
	case kindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
