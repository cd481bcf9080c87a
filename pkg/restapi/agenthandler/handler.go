/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package agenthandler exposes an agent over HTTP: peers post messages to its inbox, and
// clients read the microledgers and DID documents it holds.
package agenthandler

import (
	"github.com/trustbloc/microledger-go/pkg/document"
	"github.com/trustbloc/microledger-go/pkg/internal/log"
	"github.com/trustbloc/microledger-go/pkg/microledger"
	"github.com/trustbloc/microledger-go/pkg/restapi/common"
)

var logger = log.New("microledger-restapi-agenthandler")

const (
	// InboxPath receives agent messages.
	InboxPath = "/inbox"

	// IdentifiersPath resolves DID documents.
	IdentifiersPath = "/identifiers"

	// MicroledgersPath serves microledger txns.
	MicroledgersPath = "/microledgers"

	didParam  = "did"
	fromParam = "from"
	toParam   = "to"
)

// Agent is the agent served by the handlers.
type Agent interface {
	Receive(msg string) error
	Resolve(did string) (*document.ResolutionResult, error)
	Microledger(did string) (*microledger.Microledger, error)
}

// NewHandlers returns the handlers of the agent, each path prefixed with basePath.
func NewHandlers(basePath string, agent Agent) []common.HTTPHandler {
	return []common.HTTPHandler{
		NewInboxHandler(basePath, agent),
		NewResolveHandler(basePath, agent),
		NewLedgerHandler(basePath, agent),
	}
}

type handler struct {
	path       string
	method     string
	reqHandler common.HTTPRequestHandler
}

func newHandler(path, method string, reqHandler common.HTTPRequestHandler) *handler {
	return &handler{
		path:       path,
		method:     method,
		reqHandler: reqHandler,
	}
}

// Path returns the context path
func (h *handler) Path() string {
	return h.path
}

// Method returns the HTTP method
func (h *handler) Method() string {
	return h.method
}

// Handler returns the handler
func (h *handler) Handler() common.HTTPRequestHandler {
	return h.reqHandler
}
