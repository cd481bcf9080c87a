/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package protocol

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
)

// Decoder decodes the messages of one type.
type Decoder interface {
	Accept(msgType string) bool
	Decode(raw []byte) (Msg, error)
}

// Option is a registry instance option.
type Option func(r *Registry)

// Registry decodes messages by their type tag.
type Registry struct {
	decoders []Decoder
}

// NewRegistry returns a registry with the given decoders.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WithDecoder adds a decoder.
func WithDecoder(d Decoder) Option {
	return func(r *Registry) {
		r.decoders = append(r.decoders, d)
	}
}

// WithDefaultDecoders adds decoders for the ledger update, connection, connection
// response and signed message types.
func WithDefaultDecoders() Option {
	return func(r *Registry) {
		r.decoders = append(r.decoders,
			NewDecoder(TypeLedgerUpdate, decodeLedgerUpdate),
			NewDecoder(TypeConnection, decodeConnection),
			NewDecoder(TypeConnectionResponse, decodeConnectionResponse),
			NewDecoder(TypeMessage, decodeMessage),
		)
	}
}

// Decode decodes raw with the decoder accepting its type tag. Unknown tags are rejected.
func (r *Registry) Decode(raw []byte) (Msg, error) {
	msgType, err := PayloadType(string(raw))
	if err != nil {
		return nil, err
	}

	for _, d := range r.decoders {
		if d.Accept(msgType) {
			return d.Decode(raw)
		}
	}

	return nil, errors.Wrapf(mlerr.ErrMalformedMessage, "message type [%s] not supported", msgType)
}

var defaultRegistry = NewRegistry(WithDefaultDecoders())

// Decode decodes a message of one of the default types.
func Decode(raw string) (Msg, error) {
	return defaultRegistry.Decode([]byte(raw))
}

// DecodeLedgerUpdate decodes a message that must be a ledger update.
func DecodeLedgerUpdate(raw string) (*LedgerUpdate, error) {
	msg, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	lu, ok := msg.(*LedgerUpdate)
	if !ok {
		return nil, errors.Wrapf(mlerr.ErrMalformedMessage, "expecting %s, got %s", TypeLedgerUpdate, msg.MsgType())
	}

	return lu, nil
}

type decoder struct {
	msgType string
	decode  func(raw []byte) (Msg, error)
}

// NewDecoder returns a decoder of msgType.
func NewDecoder(msgType string, decode func(raw []byte) (Msg, error)) Decoder {
	return &decoder{msgType: msgType, decode: decode}
}

func (d *decoder) Accept(msgType string) bool {
	return d.msgType == msgType
}

func (d *decoder) Decode(raw []byte) (Msg, error) {
	return d.decode(raw)
}

func unmarshalStrict(raw []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return errors.Wrapf(mlerr.ErrMalformedMessage, "%s", err)
	}

	return nil
}

func required(msgType string, fields map[string]string) error {
	for name, value := range fields {
		if value == "" {
			return errors.Wrapf(mlerr.ErrMalformedMessage, "%s: missing %s", msgType, name)
		}
	}

	return nil
}

func decodeLedgerUpdate(raw []byte) (Msg, error) {
	lu := &LedgerUpdate{}
	if err := unmarshalStrict(raw, lu); err != nil {
		return nil, err
	}

	if err := required(TypeLedgerUpdate, map[string]string{"state": lu.State, "root": lu.Root}); err != nil {
		return nil, err
	}

	if lu.Events == nil {
		lu.Events = []Event{}
	}

	return lu, nil
}

func decodeConnection(raw []byte) (Msg, error) {
	c := &Connection{}
	if err := unmarshalStrict(raw, c); err != nil {
		return nil, err
	}

	if err := required(TypeConnection, map[string]string{"id": c.ID, "message": c.Message}); err != nil {
		return nil, err
	}

	return c, nil
}

func decodeConnectionResponse(raw []byte) (Msg, error) {
	c := &ConnectionResponse{}
	if err := unmarshalStrict(raw, c); err != nil {
		return nil, err
	}

	if err := required(TypeConnectionResponse, map[string]string{"id": c.ID, "message": c.Message}); err != nil {
		return nil, err
	}

	return c, nil
}

func decodeMessage(raw []byte) (Msg, error) {
	m := &Message{}
	if err := unmarshalStrict(raw, m); err != nil {
		return nil, err
	}

	err := required(TypeMessage, map[string]string{
		"id": m.ID, "verkey": m.Verkey, "payload": m.Payload, "signature": m.Signature,
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}
