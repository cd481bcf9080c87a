/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package agenthandler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/trustbloc/microledger-go/pkg/document"
	"github.com/trustbloc/microledger-go/pkg/restapi/common"
)

// ResolveHandler resolves the DID documents of the microledgers held by the agent.
type ResolveHandler struct {
	*handler

	agent Agent
}

// NewResolveHandler returns the DID document resolve handler.
func NewResolveHandler(basePath string, agent Agent) *ResolveHandler {
	h := &ResolveHandler{agent: agent}
	h.handler = newHandler(basePath+IdentifiersPath+"/{"+didParam+"}", http.MethodGet, h.resolve)

	return h
}

func (h *ResolveHandler) resolve(rw http.ResponseWriter, req *http.Request) {
	did := getDID(req)

	logger.Debugf("Resolving DID document for [%s]", did)

	result, err := h.agent.Resolve(did)
	if err != nil {
		common.WriteError(rw, common.StatusFor(err), err)

		return
	}

	if deactivated, ok := result.DocumentMetadata[document.DeactivatedProperty].(bool); ok && deactivated {
		logger.Debugf("... resolved deactivated DID document for [%s]", did)
		common.WriteResponseWithType(rw, http.StatusGone, common.ContentTypeDIDLDJSON, result)

		return
	}

	common.WriteResponseWithType(rw, http.StatusOK, common.ContentTypeDIDLDJSON, result)
}

// getDID accepts both a bare DID and a method-qualified one (did:sov:<did>).
func getDID(req *http.Request) string {
	did := mux.Vars(req)[didParam]

	if i := strings.LastIndex(did, ":"); i >= 0 {
		return did[i+1:]
	}

	return did
}
