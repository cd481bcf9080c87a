/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteResponse(t *testing.T) {
	rw := httptest.NewRecorder()

	WriteResponse(rw, http.StatusOK, "content")
	require.Equal(t, http.StatusOK, rw.Code)
	require.Equal(t, ContentTypeJSON, rw.Header().Get("Content-Type"))
	require.Equal(t, "\"content\"\n", rw.Body.String())
}

func TestWriteResponseWithType(t *testing.T) {
	rw := httptest.NewRecorder()

	WriteResponseWithType(rw, http.StatusOK, ContentTypeDIDLDJSON, map[string]string{"id": "did:sov:1"})
	require.Equal(t, ContentTypeDIDLDJSON, rw.Header().Get("Content-Type"))
	require.Equal(t, "{\"id\":\"did:sov:1\"}\n", rw.Body.String())
}

func TestWriteError(t *testing.T) {
	rw := httptest.NewRecorder()
	e := errors.New("some error")

	WriteError(rw, http.StatusBadRequest, e)
	require.Equal(t, http.StatusBadRequest, rw.Code)

	errExpected := &ErrorResponse{Message: e.Error()}
	errBytes, err := json.Marshal(errExpected)
	require.NoError(t, err)
	require.Equal(t, string(errBytes)+"\n", rw.Body.String())
}

type testHandler struct {
	path, method string
}

func (h *testHandler) Path() string   { return h.path }
func (h *testHandler) Method() string { return h.method }

func (h *testHandler) Handler() HTTPRequestHandler {
	return func(rw http.ResponseWriter, req *http.Request) {
		WriteResponse(rw, http.StatusOK, req.URL.Path)
	}
}

func TestNewRouter(t *testing.T) {
	router := NewRouter(&testHandler{path: "/items/{id}", method: http.MethodGet})

	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/items/1", nil))
	require.Equal(t, http.StatusOK, rw.Code)
	require.Equal(t, "\"/items/1\"\n", rw.Body.String())

	rw = httptest.NewRecorder()
	router.ServeHTTP(rw, httptest.NewRequest(http.MethodPost, "/items/1", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rw.Code)

	rw = httptest.NewRecorder()
	router.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/other", nil))
	require.Equal(t, http.StatusNotFound, rw.Code)
}
