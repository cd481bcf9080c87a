/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package canonicalizer

import (
	"bytes"
	"encoding/json"
)

// MarshalCanonical produces the compact UTF-8 form used for hashing and signing:
// no insignificant whitespace, no HTML escaping, struct fields in declaration order
// and map keys sorted. A []byte value is treated as JSON and re-encoded, so the
// properties of any object it contains come out sorted.
func MarshalCanonical(value interface{}) ([]byte, error) {
	if valueBytes, ok := value.([]byte); ok {
		decoder := json.NewDecoder(bytes.NewReader(valueBytes))
		decoder.UseNumber()

		var generic interface{}
		if err := decoder.Decode(&generic); err != nil {
			return nil, err
		}

		value = generic
	}

	buf := &bytes.Buffer{}

	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(value); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
