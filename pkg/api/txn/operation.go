/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txn

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/trustbloc/microledger-go/pkg/canonicalizer"
)

// Operation JSON properties.
const (
	TypeProperty           = "type"
	DestProperty           = "dest"
	VerkeyProperty         = "verkey"
	AuthorizationsProperty = "authorizations"
	AddressProperty        = "address"
)

// MarshalJSON writes the operation as an object holding only the properties of its type.
// Keys come out sorted since the object is built as a map.
func (op Operation) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{
		TypeProperty: string(op.Type),
	}

	switch op.Type {
	case TypeNym:
		m[DestProperty] = op.Dest

		if op.Verkey != "" {
			m[VerkeyProperty] = op.Verkey
		}
	case TypeKey:
		authz := make([]string, 0, len(op.Authorizations))
		for _, a := range op.Authorizations {
			authz = append(authz, string(a))
		}

		m[VerkeyProperty] = op.Verkey
		m[AuthorizationsProperty] = authz
	case TypeEndpoint:
		m[VerkeyProperty] = op.Verkey
		m[AddressProperty] = op.Address
	default:
		return nil, fmt.Errorf("unknown operation type [%s]", op.Type)
	}

	return canonicalizer.MarshalCanonical(m)
}

type rawOperation struct {
	Type           *string   `json:"type"`
	Dest           *string   `json:"dest"`
	Verkey         *string   `json:"verkey"`
	Authorizations *[]string `json:"authorizations"`
	Address        *string   `json:"address"`
}

// UnmarshalJSON reads an operation and checks that the properties required by its type are present.
func (op *Operation) UnmarshalJSON(data []byte) error {
	var raw rawOperation

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("operation is not an object of the expected shape: %w", err)
	}

	if raw.Type == nil {
		return fmt.Errorf("missing operation property [%s]", TypeProperty)
	}

	parsed := Operation{Type: OperationType(*raw.Type)}

	switch parsed.Type {
	case TypeNym:
		if raw.Dest == nil || *raw.Dest == "" {
			return fmt.Errorf("missing operation property [%s]", DestProperty)
		}

		parsed.Dest = *raw.Dest

		if raw.Verkey != nil {
			parsed.Verkey = *raw.Verkey
		}
	case TypeKey:
		if raw.Verkey == nil || *raw.Verkey == "" {
			return fmt.Errorf("missing operation property [%s]", VerkeyProperty)
		}

		if raw.Authorizations == nil {
			return fmt.Errorf("missing operation property [%s]", AuthorizationsProperty)
		}

		parsed.Verkey = *raw.Verkey
		parsed.Authorizations = make([]AuthzFlag, 0, len(*raw.Authorizations))

		for _, a := range *raw.Authorizations {
			flag := AuthzFlag(a)
			if !flag.IsValid() {
				return fmt.Errorf("invalid authorization [%s]", a)
			}

			parsed.Authorizations = append(parsed.Authorizations, flag)
		}
	case TypeEndpoint:
		if raw.Verkey == nil || *raw.Verkey == "" {
			return fmt.Errorf("missing operation property [%s]", VerkeyProperty)
		}

		if raw.Address == nil {
			return fmt.Errorf("missing operation property [%s]", AddressProperty)
		}

		parsed.Verkey = *raw.Verkey
		parsed.Address = *raw.Address
	default:
		return fmt.Errorf("unknown operation type [%s]", *raw.Type)
	}

	*op = parsed

	return nil
}
