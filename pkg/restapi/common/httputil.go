/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"encoding/json"
	"net/http"
)

const (
	// ContentTypeJSON is the content type of JSON responses.
	ContentTypeJSON = "application/json"

	// ContentTypeDIDLDJSON is the content type of DID resolution responses.
	ContentTypeDIDLDJSON = "application/did+ld+json"
)

// ErrorResponse is the body of an error response
type ErrorResponse struct {
	Message string `json:"message"`
}

// WriteResponse writes a JSON response to the response writer
func WriteResponse(rw http.ResponseWriter, status int, v interface{}) {
	WriteResponseWithType(rw, status, ContentTypeJSON, v)
}

// WriteResponseWithType writes a response of the given content type to the response writer
func WriteResponseWithType(rw http.ResponseWriter, status int, contentType string, v interface{}) {
	rw.Header().Set("Content-Type", contentType)
	rw.WriteHeader(status)

	err := json.NewEncoder(rw).Encode(v)
	if err != nil {
		logger.Errorf("Unable to write response: %s", err)
	}
}

// WriteError writes an error to the response writer
func WriteError(rw http.ResponseWriter, status int, err error) {
	WriteResponse(rw, status, &ErrorResponse{Message: err.Error()})
}
