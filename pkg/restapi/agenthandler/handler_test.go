/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package agenthandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/microledger-go/pkg/agent"
	"github.com/trustbloc/microledger-go/pkg/api/txn"
	"github.com/trustbloc/microledger-go/pkg/document"
	"github.com/trustbloc/microledger-go/pkg/protocol"
	"github.com/trustbloc/microledger-go/pkg/restapi/common"
	"github.com/trustbloc/microledger-go/pkg/txnbuilder"
)

const (
	did1     = "75KUW8tPUQNBS4W7ibFeY8"
	seed1    = "11111111111111111111111111111111"
	vk1      = "5rArie7XKukPCaEwq5XGQJnM9Fc5aZE3M9HAPVfMU2xC"
	address1 = "https://agent.example.com"

	did2  = "84qiTnsJrdefBDMrF49kfa"
	seed2 = "99999999999999999999999999999999"

	basePath  = "/agent"
	greetings = `{"type":"greetings","msg":"hey there"}`
)

func bootstrap(t *testing.T, did, seed, name string) *agent.Agent {
	t.Helper()

	a, err := agent.New(did, seed, agent.WithPeerID(name))
	require.NoError(t, err)

	nym, err := txnbuilder.BuildNymTxn(did, a.Verkey())
	require.NoError(t, err)

	_, err = a.AddGenesis([]string{nym})
	require.NoError(t, err)

	_, err = a.AddKeyTxn(did, a.Verkey(), []txn.AuthzFlag{txn.AuthzAll})
	require.NoError(t, err)

	_, err = a.AddEndpointTxn(did, a.Verkey(), address1)
	require.NoError(t, err)

	return a
}

func router(a Agent) *mux.Router {
	return common.NewRouter(NewHandlers(basePath, a)...)
}

func serve(t *testing.T, r *mux.Router, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, httptest.NewRequest(method, target, strings.NewReader(body)))

	return rw
}

func errorMessage(t *testing.T, rw *httptest.ResponseRecorder) string {
	t.Helper()

	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &resp))

	return resp.Message
}

func TestNewHandlers(t *testing.T) {
	handlers := NewHandlers(basePath, nil)
	require.Len(t, handlers, 3)

	require.Equal(t, "/agent/inbox", handlers[0].Path())
	require.Equal(t, http.MethodPost, handlers[0].Method())
	require.NotNil(t, handlers[0].Handler())

	require.Equal(t, "/agent/identifiers/{did}", handlers[1].Path())
	require.Equal(t, http.MethodGet, handlers[1].Method())

	require.Equal(t, "/agent/microledgers/{did}", handlers[2].Path())
	require.Equal(t, http.MethodGet, handlers[2].Method())
}

func TestInbox(t *testing.T) {
	a1 := bootstrap(t, did1, seed1, "agent1")

	t.Run("message", func(t *testing.T) {
		a2 := bootstrap(t, did2, seed2, "agent2")

		m, err := a1.SignMessage(greetings)
		require.NoError(t, err)

		msg, err := protocol.Marshal(m)
		require.NoError(t, err)

		rw := serve(t, router(a2), http.MethodPost, "/agent/inbox", msg)
		require.Equal(t, http.StatusAccepted, rw.Code)
		require.Len(t, a2.Messages(), 1)
	})

	t.Run("connection", func(t *testing.T) {
		a2 := bootstrap(t, did2, seed2, "agent2")

		conn, err := a1.GetNewConnectionMsg()
		require.NoError(t, err)

		rw := serve(t, router(a2), http.MethodPost, "/agent/inbox", conn)
		require.Equal(t, http.StatusAccepted, rw.Code)
		require.True(t, a2.HasMicroledger(did1))
		require.Equal(t, uint(1), a2.Peer().Outgoing())
	})

	t.Run("queued messages are left for the inbox", func(t *testing.T) {
		a2 := bootstrap(t, did2, seed2, "agent2")
		a2.Deliver("{")

		m, err := a1.SignMessage(greetings)
		require.NoError(t, err)

		msg, err := protocol.Marshal(m)
		require.NoError(t, err)

		rw := serve(t, router(a2), http.MethodPost, "/agent/inbox", msg)
		require.Equal(t, http.StatusAccepted, rw.Code)
		require.Len(t, a2.Messages(), 1)
		require.Equal(t, uint(1), a2.Peer().Pending())
		require.Empty(t, a2.Errors())
	})

	t.Run("empty body", func(t *testing.T) {
		rw := serve(t, router(a1), http.MethodPost, "/agent/inbox", "")
		require.Equal(t, http.StatusBadRequest, rw.Code)
		require.Equal(t, "empty message", errorMessage(t, rw))
	})

	t.Run("too large", func(t *testing.T) {
		rw := serve(t, router(a1), http.MethodPost, "/agent/inbox", strings.Repeat("x", maxMessageSize+1))
		require.Equal(t, http.StatusRequestEntityTooLarge, rw.Code)
	})

	t.Run("malformed message", func(t *testing.T) {
		rw := serve(t, router(a1), http.MethodPost, "/agent/inbox", "{")
		require.Equal(t, http.StatusBadRequest, rw.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		rw := serve(t, router(a1), http.MethodGet, "/agent/inbox", "")
		require.Equal(t, http.StatusMethodNotAllowed, rw.Code)
	})
}

func TestResolve(t *testing.T) {
	a1 := bootstrap(t, did1, seed1, "agent1")

	t.Run("qualified DID", func(t *testing.T) {
		rw := serve(t, router(a1), http.MethodGet, "/agent/identifiers/did:sov:"+did1, "")
		require.Equal(t, http.StatusOK, rw.Code)
		require.Equal(t, common.ContentTypeDIDLDJSON, rw.Header().Get("Content-Type"))

		var result document.ResolutionResult
		require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &result))
		require.Equal(t, "did:sov:"+did1, result.Document.ID())
		require.Equal(t, vk1, result.Document.VerificationMethods()[0].PublicKeyBase58())
		require.Equal(t, address1, result.Document.Services()[0].Endpoint())
	})

	t.Run("bare DID", func(t *testing.T) {
		rw := serve(t, router(a1), http.MethodGet, "/agent/identifiers/"+did1, "")
		require.Equal(t, http.StatusOK, rw.Code)
	})

	t.Run("unknown DID", func(t *testing.T) {
		rw := serve(t, router(a1), http.MethodGet, "/agent/identifiers/"+did2, "")
		require.Equal(t, http.StatusNotFound, rw.Code)
		require.Contains(t, errorMessage(t, rw), did2)
	})

	t.Run("every key revoked", func(t *testing.T) {
		a := bootstrap(t, did1, seed1, "agent3")

		_, err := a.AddKeyTxn(did1, a.Verkey(), nil)
		require.NoError(t, err)

		rw := serve(t, router(a), http.MethodGet, "/agent/identifiers/"+did1, "")
		require.Equal(t, http.StatusGone, rw.Code)
	})
}

func TestLedger(t *testing.T) {
	a1 := bootstrap(t, did1, seed1, "agent1")

	ml, err := a1.Microledger(did1)
	require.NoError(t, err)

	get := func(t *testing.T, target string) (*httptest.ResponseRecorder, *LedgerResponse) {
		t.Helper()

		rw := serve(t, router(a1), http.MethodGet, target, "")
		if rw.Code != http.StatusOK {
			return rw, nil
		}

		var resp LedgerResponse
		require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &resp))

		return rw, &resp
	}

	t.Run("whole ledger", func(t *testing.T) {
		rw, resp := get(t, "/agent/microledgers/"+did1)
		require.Equal(t, http.StatusOK, rw.Code)
		require.Equal(t, did1, resp.DID)
		require.Equal(t, uint64(3), resp.Size)
		require.Equal(t, ml.Root(), resp.Root)
		require.Len(t, resp.Events, 3)

		txns, err := ml.Get(1, 3)
		require.NoError(t, err)

		for i, e := range resp.Events {
			require.Equal(t, uint64(i+1), e.SeqNo)
			require.Equal(t, txns[i], e.Txn)
		}
	})

	t.Run("range", func(t *testing.T) {
		rw, resp := get(t, "/agent/microledgers/"+did1+"?from=2&to=3")
		require.Equal(t, http.StatusOK, rw.Code)
		require.Len(t, resp.Events, 2)
		require.Equal(t, uint64(2), resp.Events[0].SeqNo)
	})

	t.Run("empty ledger", func(t *testing.T) {
		a, err := agent.New(did2, seed2)
		require.NoError(t, err)

		rw := serve(t, router(a), http.MethodGet, "/agent/microledgers/"+did2, "")
		require.Equal(t, http.StatusOK, rw.Code)

		var resp LedgerResponse
		require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &resp))
		require.Empty(t, resp.Events)
		require.Equal(t, uint64(0), resp.Size)
	})

	t.Run("invalid from", func(t *testing.T) {
		rw, _ := get(t, "/agent/microledgers/"+did1+"?from=x")
		require.Equal(t, http.StatusBadRequest, rw.Code)
		require.Equal(t, "invalid from [x]", errorMessage(t, rw))
	})

	t.Run("out of range", func(t *testing.T) {
		rw, _ := get(t, "/agent/microledgers/"+did1+"?to=9")
		require.Equal(t, http.StatusBadRequest, rw.Code)

		rw, _ = get(t, "/agent/microledgers/"+did1+"?from=0")
		require.Equal(t, http.StatusBadRequest, rw.Code)
	})

	t.Run("unknown DID", func(t *testing.T) {
		rw, _ := get(t, "/agent/microledgers/"+did2)
		require.Equal(t, http.StatusNotFound, rw.Code)
	})
}
