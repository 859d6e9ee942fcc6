// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package scval

import (
	"bytes"
	"encoding"
	"encoding/base64"

	"github.com/pkg/errors"
	"github.com/stellar/go/xdr"
)

// DecodeResult serialises a simulation return value for transport. It never
// looks inside the value: raw bytes are taken as already XDR encoded, and
// structured values are asked for their own binary form. A nil value (the
// function returned nothing) yields nil.
func DecodeResult(v interface{}) (*string, error) {
	var raw []byte
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		raw = x
	case *bytes.Buffer:
		if x == nil {
			return nil, nil
		}
		raw = x.Bytes()
	case xdr.ScVal:
		b, err := x.MarshalBinary()
		if err != nil {
			return nil, errors.Wrap(err, "marshalling return value")
		}
		raw = b
	case *xdr.ScVal:
		if x == nil {
			return nil, nil
		}
		b, err := x.MarshalBinary()
		if err != nil {
			return nil, errors.Wrap(err, "marshalling return value")
		}
		raw = b
	case encoding.BinaryMarshaler:
		b, err := x.MarshalBinary()
		if err != nil {
			return nil, errors.Wrap(err, "marshalling return value")
		}
		raw = b
	default:
		return nil, errors.Wrapf(ErrUnsupportedValue, "cannot serialise %T", v)
	}
	out := base64.StdEncoding.EncodeToString(raw)
	return &out, nil
}
