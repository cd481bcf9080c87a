/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package protocol

import (
	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
)

// Signer signs with a key held in a wallet.
type Signer interface {
	Sign(verkey string, msg []byte) ([]byte, error)
}

// Verifier verifies Ed25519 signatures.
type Verifier interface {
	Verify(verkey string, msg, sig []byte) (bool, error)
}

// SignMessage signs payload with verkey on behalf of did.
func SignMessage(signer Signer, did, verkey, payload string) (*Message, error) {
	sig, err := signer.Sign(verkey, []byte(payload))
	if err != nil {
		return nil, errors.WithMessagef(err, "sign message with [%s]", verkey)
	}

	return &Message{
		Type:      TypeMessage,
		ID:        did,
		Verkey:    verkey,
		Payload:   payload,
		Signature: base58.Encode(sig),
	}, nil
}

// VerifyMessage checks the signature of the payload under the verkey stated in the message.
func VerifyMessage(verifier Verifier, m *Message) error {
	sig := base58.Decode(m.Signature)
	if len(sig) == 0 {
		return errors.Wrap(mlerr.ErrInvalidSignature, "signature is not base58 encoded")
	}

	ok, err := verifier.Verify(m.Verkey, []byte(m.Payload), sig)
	if err != nil {
		return errors.WithMessagef(err, "verify message from [%s]", m.ID)
	}

	if !ok {
		return errors.Wrapf(mlerr.ErrInvalidSignature, "message from [%s] signed by [%s]", m.ID, m.Verkey)
	}

	return nil
}
