/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log Fields.
const (
	FieldDID           = "did"
	FieldSeqNo         = "seqNo"
	FieldFrom          = "from"
	FieldTo            = "to"
	FieldSize          = "size"
	FieldRoot          = "root"
	FieldClaimedRoot   = "claimedRoot"
	FieldVerkey        = "verkey"
	FieldPeerID        = "peerID"
	FieldMessageType   = "messageType"
	FieldOperationType = "operationType"
	FieldTotal         = "total"
	FieldTxn           = "txn"
	FieldAddress       = "address"
	FieldURI           = "uri"
	FieldData          = "data"
	FieldBackend       = "backend"
	FieldPath          = "path"
	FieldEvents        = "events"
)

// WithError sets the error field.
func WithError(err error) zap.Field {
	return zap.Error(err)
}

// WithDID sets the did field.
func WithDID(value string) zap.Field {
	return zap.String(FieldDID, value)
}

// WithSeqNo sets the seq-no field.
func WithSeqNo(value uint64) zap.Field {
	return zap.Uint64(FieldSeqNo, value)
}

// WithFrom sets the from field.
func WithFrom(value uint64) zap.Field {
	return zap.Uint64(FieldFrom, value)
}

// WithTo sets the to field.
func WithTo(value uint64) zap.Field {
	return zap.Uint64(FieldTo, value)
}

// WithSize sets the size field.
func WithSize(value uint64) zap.Field {
	return zap.Uint64(FieldSize, value)
}

// WithRoot sets the root field.
func WithRoot(value string) zap.Field {
	return zap.String(FieldRoot, value)
}

// WithClaimedRoot sets the claimed-root field.
func WithClaimedRoot(value string) zap.Field {
	return zap.String(FieldClaimedRoot, value)
}

// WithVerkey sets the verkey field.
func WithVerkey(value string) zap.Field {
	return zap.String(FieldVerkey, value)
}

// WithPeerID sets the peer-id field.
func WithPeerID(value string) zap.Field {
	return zap.String(FieldPeerID, value)
}

// WithMessageType sets the message-type field.
func WithMessageType(value string) zap.Field {
	return zap.String(FieldMessageType, value)
}

// WithOperationType sets the operation-type field.
func WithOperationType(value string) zap.Field {
	return zap.String(FieldOperationType, value)
}

// WithTotal sets the total field.
func WithTotal(value int) zap.Field {
	return zap.Int(FieldTotal, value)
}

// WithTxn sets the txn field.
func WithTxn(value interface{}) zap.Field {
	return zap.Inline(NewObjectMarshaller(FieldTxn, value))
}

// WithAddress sets the address field.
func WithAddress(value string) zap.Field {
	return zap.String(FieldAddress, value)
}

// WithURIString sets the uri field.
func WithURIString(value string) zap.Field {
	return zap.String(FieldURI, value)
}

// WithData sets the data field.
func WithData(value []byte) zap.Field {
	return zap.String(FieldData, string(value))
}

// WithBackend sets the backend field.
func WithBackend(value string) zap.Field {
	return zap.String(FieldBackend, value)
}

// WithPath sets the path field.
func WithPath(value string) zap.Field {
	return zap.String(FieldPath, value)
}

// WithEvents sets the events field to the sequence numbers of a ledger update.
func WithEvents(value ...uint64) zap.Field {
	return zap.Uint64s(FieldEvents, value)
}

// ObjectMarshaller uses reflection to marshal an object's fields.
type ObjectMarshaller struct {
	key string
	obj interface{}
}

// NewObjectMarshaller returns a new ObjectMarshaller.
func NewObjectMarshaller(key string, obj interface{}) *ObjectMarshaller {
	return &ObjectMarshaller{key: key, obj: obj}
}

// MarshalLogObject marshals the object's fields.
func (m *ObjectMarshaller) MarshalLogObject(e zapcore.ObjectEncoder) error {
	return e.AddReflected(m.key, m.obj)
}
