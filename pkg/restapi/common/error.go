/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"errors"
	"net/http"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
)

// HTTPError holds an error and an HTTP status code
type HTTPError struct {
	err    error
	status int
}

// NewHTTPError returns a new HTTPError
func NewHTTPError(status int, err error) *HTTPError {
	return &HTTPError{
		err:    err,
		status: status,
	}
}

// Error returns the error string
func (e *HTTPError) Error() string {
	return e.err.Error()
}

// Status returns the status code
func (e *HTTPError) Status() int {
	return e.status
}

// Unwrap returns the wrapped error
func (e *HTTPError) Unwrap() error {
	return e.err
}

var statusByKind = []struct {
	kind   error
	status int
}{
	{mlerr.ErrUnknownDID, http.StatusNotFound},
	{mlerr.ErrOutOfRange, http.StatusBadRequest},
	{mlerr.ErrMalformedMessage, http.StatusBadRequest},
	{mlerr.ErrMalformedTxn, http.StatusBadRequest},
	{mlerr.ErrInvalidSignature, http.StatusUnauthorized},
	{mlerr.ErrUnauthorized, http.StatusForbidden},
	{mlerr.ErrDivergentRoot, http.StatusConflict},
	{mlerr.ErrInvalidLedgerUpdate, http.StatusUnprocessableEntity},
	{mlerr.ErrInvalidTxn, http.StatusUnprocessableEntity},
	{mlerr.ErrUnknownKey, http.StatusUnprocessableEntity},
}

// StatusFor returns the HTTP status of an error. Errors of no known kind are internal
// server errors.
func StatusFor(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status()
	}

	for _, s := range statusByKind {
		if errors.Is(err, s.kind) {
			return s.status
		}
	}

	return http.StatusInternalServerError
}
