// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package scval

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// landmarkXDR is ScVal string "Eiffel Tower".
const landmarkXDR = "AAAADgAAAAxFaWZmZWwgVG93ZXI="

func TestDecodeResult_Nil(t *testing.T) {
	out, err := DecodeResult(nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	var missing *xdr.ScVal
	out, err = DecodeResult(missing)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestDecodeResult_ScVal(t *testing.T) {
	val := String("Eiffel Tower")

	out, err := DecodeResult(val)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, landmarkXDR, *out)

	out, err = DecodeResult(&val)
	require.NoError(t, err)
	assert.Equal(t, landmarkXDR, *out)
}

func TestDecodeResult_RawBytes(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString(landmarkXDR)
	require.NoError(t, err)

	out, err := DecodeResult(raw)
	require.NoError(t, err)
	assert.Equal(t, landmarkXDR, *out)

	out, err = DecodeResult(bytes.NewBuffer(raw))
	require.NoError(t, err)
	assert.Equal(t, landmarkXDR, *out)
}

func TestDecodeResult_Unsupported(t *testing.T) {
	_, err := DecodeResult(42)
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}
