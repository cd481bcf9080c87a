/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package agenthandler

import (
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trustbloc/microledger-go/pkg/protocol"
	"github.com/trustbloc/microledger-go/pkg/restapi/common"
)

// LedgerResponse holds a range of microledger txns.
type LedgerResponse struct {
	DID    string           `json:"did"`
	Size   uint64           `json:"size"`
	Root   string           `json:"root"`
	Events []protocol.Event `json:"events"`
}

// LedgerHandler serves the txns of the microledgers held by the agent.
type LedgerHandler struct {
	*handler

	agent Agent
}

// NewLedgerHandler returns the microledger handler. The optional from and to query
// parameters select an inclusive range, the whole ledger by default.
func NewLedgerHandler(basePath string, agent Agent) *LedgerHandler {
	h := &LedgerHandler{agent: agent}
	h.handler = newHandler(basePath+MicroledgersPath+"/{"+didParam+"}", http.MethodGet, h.get)

	return h
}

func (h *LedgerHandler) get(rw http.ResponseWriter, req *http.Request) {
	did := getDID(req)

	ml, err := h.agent.Microledger(did)
	if err != nil {
		common.WriteError(rw, common.StatusFor(err), err)

		return
	}

	size := ml.Size()

	from, err := queryUint(req, fromParam, 1)
	if err != nil {
		common.WriteError(rw, http.StatusBadRequest, err)

		return
	}

	to, err := queryUint(req, toParam, size)
	if err != nil {
		common.WriteError(rw, http.StatusBadRequest, err)

		return
	}

	txns, err := ml.Get(from, to)
	if err != nil {
		common.WriteError(rw, common.StatusFor(err), err)

		return
	}

	events := make([]protocol.Event, len(txns))
	for i, t := range txns {
		events[i] = protocol.Event{SeqNo: from + uint64(i), Txn: t}
	}

	logger.Debugf("Returning %d txns of [%s]", len(events), did)

	common.WriteResponse(rw, http.StatusOK, &LedgerResponse{
		DID:    did,
		Size:   size,
		Root:   ml.Root(),
		Events: events,
	})
}

func queryUint(req *http.Request, name string, def uint64) (uint64, error) {
	value := req.URL.Query().Get(name)
	if value == "" {
		return def, nil
	}

	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid %s [%s]", name, value)
	}

	return n, nil
}
