package server

import (
	"errors"
	"net/http"

	"github.com/etnz/debrepod/deb"
)

// httpError is a service-level error carrying the status code it should
// translate to. Errors surfaced by the deb package (parse, validation,
// archive) are always client errors, an upload whose destination already
// exists is a conflict, and everything else is a server error.
type httpError struct {
	status int
	msg    string
	err    error
}

func (e *httpError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *httpError) Unwrap() error { return e.err }

func badRequest(msg string, err error) *httpError {
	return &httpError{status: http.StatusBadRequest, msg: msg, err: err}
}

func internal(msg string, err error) *httpError {
	return &httpError{status: http.StatusInternalServerError, msg: msg, err: err}
}

// classify maps an arbitrary error from the pipeline into an httpError,
// treating caller-input problems (parse, validation, archive errors) as 400s,
// an already-stored package as a 409, and everything else as a 500.
func classify(msg string, err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var parseErr *deb.ParseError
	var validationErr *deb.ValidationError
	var archiveErr *deb.ArchiveError
	switch {
	case errors.Is(err, errAlreadyExists):
		return &httpError{status: http.StatusConflict, msg: msg, err: err}
	case errors.As(err, &parseErr), errors.As(err, &validationErr), errors.As(err, &archiveErr):
		return badRequest(msg, err)
	default:
		return internal(msg, err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	he := classify("request failed", err)
	http.Error(w, he.Error(), he.status)
}
