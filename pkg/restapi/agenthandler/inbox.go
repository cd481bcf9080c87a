/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package agenthandler

import (
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trustbloc/microledger-go/pkg/restapi/common"
)

const maxMessageSize = 1 << 20

// InboxResponse is returned once the posted message was handled.
type InboxResponse struct {
	Processed bool `json:"processed"`
}

// InboxHandler hands each posted message to the agent. Messages queued in the agent
// inbox by other transports are not touched.
type InboxHandler struct {
	*handler

	agent Agent
}

// NewInboxHandler returns the inbox handler.
func NewInboxHandler(basePath string, agent Agent) *InboxHandler {
	h := &InboxHandler{agent: agent}
	h.handler = newHandler(basePath+InboxPath, http.MethodPost, h.post)

	return h
}

func (h *InboxHandler) post(rw http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(io.LimitReader(req.Body, maxMessageSize+1))
	if err != nil {
		common.WriteError(rw, http.StatusBadRequest, errors.Wrap(err, "read message"))

		return
	}

	if len(body) == 0 {
		common.WriteError(rw, http.StatusBadRequest, errors.New("empty message"))

		return
	}

	if len(body) > maxMessageSize {
		common.WriteError(rw, http.StatusRequestEntityTooLarge, errors.New("message too large"))

		return
	}

	logger.Debugf("Received message of %d bytes", len(body))

	if err := h.agent.Receive(string(body)); err != nil {
		logger.Infof("Rejected message: %s", err)

		common.WriteError(rw, common.StatusFor(err), err)

		return
	}

	common.WriteResponse(rw, http.StatusAccepted, &InboxResponse{Processed: true})
}
