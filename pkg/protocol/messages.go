/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package protocol implements the messages agents exchange to replicate microledgers
// and the algorithm that integrates a received ledger update into a local mirror.
package protocol

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
	"github.com/trustbloc/microledger-go/pkg/canonicalizer"
)

// Message type tags.
const (
	TypeLedgerUpdate       = "ledgerUpdate"
	TypeConnection         = "Connection"
	TypeConnectionResponse = "ConnectionResponse"
	TypeMessage            = "Message"
)

// StatePrefix prefixes the DID in the state of a ledger update.
const StatePrefix = "DID:"

// Msg is a decoded protocol message.
type Msg interface {
	MsgType() string
}

// Event is one txn of a ledger update, serialized as the tuple [seqNo, txn].
type Event struct {
	SeqNo uint64
	Txn   string
}

// MarshalJSON writes the event as a two element array.
func (e Event) MarshalJSON() ([]byte, error) {
	return canonicalizer.MarshalCanonical([]interface{}{e.SeqNo, e.Txn})
}

// UnmarshalJSON reads the event from a two element array.
func (e *Event) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return errors.Wrapf(mlerr.ErrMalformedMessage, "event: %s", err)
	}

	if len(tuple) != 2 {
		return errors.Wrapf(mlerr.ErrMalformedMessage, "event must be [seqNo, txn], got %d elements", len(tuple))
	}

	if err := json.Unmarshal(tuple[0], &e.SeqNo); err != nil {
		return errors.Wrapf(mlerr.ErrMalformedMessage, "event seq no: %s", err)
	}

	if err := json.Unmarshal(tuple[1], &e.Txn); err != nil {
		return errors.Wrapf(mlerr.ErrMalformedMessage, "event txn: %s", err)
	}

	return nil
}

// LedgerUpdate carries a contiguous range of the txns of one DID and the sender's root.
type LedgerUpdate struct {
	Type   string  `json:"type"`
	State  string  `json:"state"`
	Root   string  `json:"root"`
	Events []Event `json:"events"`
}

// MsgType returns ledgerUpdate.
func (lu *LedgerUpdate) MsgType() string {
	return TypeLedgerUpdate
}

// DID returns the DID named by the state.
func (lu *LedgerUpdate) DID() (string, error) {
	if !strings.HasPrefix(lu.State, StatePrefix) || len(lu.State) == len(StatePrefix) {
		return "", errors.Wrapf(mlerr.ErrInvalidLedgerUpdate, "state [%s] does not name a DID", lu.State)
	}

	return strings.TrimPrefix(lu.State, StatePrefix), nil
}

// Connection opens a relationship by sending the sender's ledger.
type Connection struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// MsgType returns Connection.
func (c *Connection) MsgType() string {
	return TypeConnection
}

// ConnectionResponse answers a connection with the responder's ledger.
type ConnectionResponse struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// MsgType returns ConnectionResponse.
func (c *ConnectionResponse) MsgType() string {
	return TypeConnectionResponse
}

// Message is a payload signed by the key of a DID.
type Message struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Verkey    string `json:"verkey"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

// MsgType returns Message.
func (m *Message) MsgType() string {
	return TypeMessage
}

// NewConnection wraps a ledger update in a connection from peerID.
func NewConnection(peerID string, lu *LedgerUpdate) (*Connection, error) {
	inner, err := Marshal(lu)
	if err != nil {
		return nil, err
	}

	return &Connection{Type: TypeConnection, ID: peerID, Message: inner}, nil
}

// NewConnectionResponse wraps a ledger update in a connection response from peerID.
func NewConnectionResponse(peerID string, lu *LedgerUpdate) (*ConnectionResponse, error) {
	inner, err := Marshal(lu)
	if err != nil {
		return nil, err
	}

	return &ConnectionResponse{Type: TypeConnectionResponse, ID: peerID, Message: inner}, nil
}

// Marshal serializes a message in its compact wire form.
func Marshal(msg Msg) (string, error) {
	b, err := canonicalizer.MarshalCanonical(msg)
	if err != nil {
		return "", errors.Wrapf(err, "marshal %s", msg.MsgType())
	}

	return string(b), nil
}

type typed struct {
	Type *string `json:"type"`
}

// PayloadType returns the type tag of a JSON payload.
func PayloadType(payload string) (string, error) {
	var t typed
	if err := json.Unmarshal([]byte(payload), &t); err != nil {
		return "", errors.Wrapf(mlerr.ErrMalformedMessage, "%s", err)
	}

	if t.Type == nil {
		return "", errors.Wrap(mlerr.ErrMalformedMessage, "missing type")
	}

	return *t.Type, nil
}
