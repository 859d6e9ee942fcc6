// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package scval

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractID(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	id, err := strkey.Encode(strkey.VersionByteContract, raw)
	require.NoError(t, err)
	return id
}

// corrupt swaps the final character, which breaks the strkey checksum.
func corrupt(addr string) string {
	last := addr[len(addr)-1]
	repl := byte('A')
	if last == 'A' {
		repl = 'B'
	}
	return addr[:len(addr)-1] + string(repl)
}

func decodeParams(t *testing.T, body string) []Param {
	t.Helper()
	var params []Param
	require.NoError(t, json.Unmarshal([]byte(body), &params))
	return params
}

func TestEncodeAll_PreservesLengthAndOrder(t *testing.T) {
	account := keypair.MustRandom().Address()
	params := decodeParams(t, `[
		7,
		true,
		"hello",
		{"type": "u32", "value": 42},
		{"type": "bool", "value": false},
		{"type": "address", "value": "`+account+`"},
		{"type": "symbol", "value": "Admin"},
		null
	]`)

	vals, err := EncodeAll(params)
	require.NoError(t, err)
	require.Len(t, vals, len(params))

	want := []xdr.ScValType{
		xdr.ScValTypeScvU32,
		xdr.ScValTypeScvBool,
		xdr.ScValTypeScvString,
		xdr.ScValTypeScvU32,
		xdr.ScValTypeScvBool,
		xdr.ScValTypeScvAddress,
		xdr.ScValTypeScvSymbol,
		xdr.ScValTypeScvVoid,
	}
	for i, v := range vals {
		assert.Equal(t, want[i], v.Type, "position %d", i)
	}
	assert.Equal(t, xdr.Uint32(7), *vals[0].U32)
	assert.Equal(t, xdr.Uint32(42), *vals[3].U32)
	assert.False(t, *vals[4].B)
}

func TestEncodeAll_Empty(t *testing.T) {
	vals, err := EncodeAll(nil)
	require.NoError(t, err)
	assert.Empty(t, vals)
}

func TestEncode_NumberIsAlwaysU32(t *testing.T) {
	for _, v := range []interface{}{json.Number("0"), json.Number("4294967295"), 12, float64(3), uint32(9)} {
		val, err := Encode(Auto(v))
		require.NoError(t, err)
		assert.Equal(t, xdr.ScValTypeScvU32, val.Type)
	}
}

func TestEncode_NumberOutOfRange(t *testing.T) {
	for _, v := range []interface{}{json.Number("4294967296"), json.Number("-1"), json.Number("1.5")} {
		_, err := Encode(Auto(v))
		assert.Error(t, err, "%v", v)
	}
}

func TestEncode_BoolIsAlwaysBool(t *testing.T) {
	for _, b := range []bool{true, false} {
		val, err := Encode(Auto(b))
		require.NoError(t, err)
		require.Equal(t, xdr.ScValTypeScvBool, val.Type)
		assert.Equal(t, b, *val.B)
	}
}

func TestEncodeText_AccountAddress(t *testing.T) {
	account := keypair.MustRandom().Address()
	require.Len(t, account, AddressLength)

	val, fellBack := EncodeText(account)
	assert.False(t, fellBack)
	require.Equal(t, xdr.ScValTypeScvAddress, val.Type)
	assert.Equal(t, xdr.ScAddressTypeScAddressTypeAccount, val.Address.Type)
	assert.Equal(t, account, val.Address.AccountId.Address())
}

func TestEncodeText_ContractAddress(t *testing.T) {
	id := contractID(t)

	val, fellBack := EncodeText(id)
	assert.False(t, fellBack)
	require.Equal(t, xdr.ScValTypeScvAddress, val.Type)
	assert.Equal(t, xdr.ScAddressTypeScAddressTypeContract, val.Address.Type)
}

func TestEncodeText_InvalidAddressFallsBackToString(t *testing.T) {
	for _, s := range []string{
		corrupt(keypair.MustRandom().Address()),
		"G" + strings.Repeat("!", AddressLength-1),
		corrupt(contractID(t)),
	} {
		require.Len(t, s, AddressLength)
		val, fellBack := EncodeText(s)
		assert.True(t, fellBack, s)
		require.Equal(t, xdr.ScValTypeScvString, val.Type)
		assert.Equal(t, s, string(*val.Str))

		viaEncode, err := Encode(Auto(s))
		require.NoError(t, err)
		assert.Equal(t, xdr.ScValTypeScvString, viaEncode.Type)
	}
}

func TestEncodeText_PlainText(t *testing.T) {
	for _, s := range []string{"", "hello", "G-short", strings.Repeat("X", AddressLength)} {
		val, fellBack := EncodeText(s)
		assert.False(t, fellBack)
		assert.Equal(t, xdr.ScValTypeScvString, val.Type)
	}
}

func TestEncode_ExplicitAddressRejectsGarbage(t *testing.T) {
	_, err := Encode(Typed(KindAddress, "not-an-address"))
	assert.Error(t, err)

	_, err = Encode(Typed(KindAddress, 12))
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestEncode_UnknownKindUsesGenericConversion(t *testing.T) {
	params := decodeParams(t, `[
		{"type": "landmark", "value": "Eiffel Tower"},
		{"type": "whatever", "value": 5},
		{"type": "struct", "value": {"b": 1, "a": [true, "x"]}}
	]`)
	vals, err := EncodeAll(params)
	require.NoError(t, err)
	require.Len(t, vals, 3)

	assert.Equal(t, xdr.ScValTypeScvString, vals[0].Type)
	assert.Equal(t, xdr.ScValTypeScvU64, vals[1].Type)

	require.Equal(t, xdr.ScValTypeScvMap, vals[2].Type)
	entries := **vals[2].Map
	require.Len(t, entries, 2)
	assert.Equal(t, xdr.ScSymbol("a"), *entries[0].Key.Sym)
	assert.Equal(t, xdr.ScSymbol("b"), *entries[1].Key.Sym)
	assert.Equal(t, xdr.ScValTypeScvVec, entries[0].Val.Type)
}

func TestEncode_AutoDescriptorInfers(t *testing.T) {
	params := decodeParams(t, `[{"type": "auto", "value": 3}, {"type": "", "value": 3}]`)
	require.Len(t, params, 2)
	assert.Equal(t, KindAuto, params[0].Kind)

	val, err := Encode(params[0])
	require.NoError(t, err)
	assert.Equal(t, xdr.ScValTypeScvU32, val.Type)

	// An empty type is not a descriptor, so the whole object is converted.
	val, err = Encode(params[1])
	require.NoError(t, err)
	assert.Equal(t, xdr.ScValTypeScvMap, val.Type)
}

func TestEncode_WideIntegers(t *testing.T) {
	params := decodeParams(t, `[
		{"type": "i128", "value": -170141183460469231731687303715884105728},
		{"type": "u128", "value": 340282366920938463463374607431768211455},
		{"type": "i128", "value": -1},
		{"type": "i64", "value": -9},
		{"type": "u64", "value": 18446744073709551615},
		{"type": "i32", "value": -2147483648}
	]`)
	vals, err := EncodeAll(params)
	require.NoError(t, err)

	assert.Equal(t, xdr.Int64(-1<<63), vals[0].I128.Hi)
	assert.Equal(t, xdr.Uint64(0), vals[0].I128.Lo)
	assert.Equal(t, xdr.Uint64(1<<64-1), vals[1].U128.Hi)
	assert.Equal(t, xdr.Uint64(1<<64-1), vals[1].U128.Lo)
	assert.Equal(t, xdr.Int64(-1), vals[2].I128.Hi)
	assert.Equal(t, xdr.Uint64(1<<64-1), vals[2].I128.Lo)
	assert.Equal(t, xdr.Int64(-9), *vals[3].I64)
	assert.Equal(t, xdr.Uint64(1<<64-1), *vals[4].U64)
	assert.Equal(t, xdr.Int32(-2147483648), *vals[5].I32)

	_, err = Encode(Typed(KindI32, json.Number("2147483648")))
	assert.Error(t, err)
	_, err = Encode(Typed(KindU64, json.Number("-1")))
	assert.Error(t, err)
}

func TestEncode_Bytes(t *testing.T) {
	val, err := Encode(Typed(KindBytes, "0xdeadbeef"))
	require.NoError(t, err)
	require.Equal(t, xdr.ScValTypeScvBytes, val.Type)
	assert.Equal(t, xdr.ScBytes{0xde, 0xad, 0xbe, 0xef}, *val.Bytes)

	_, err = Encode(Typed(KindBytes, "zz"))
	assert.Error(t, err)
}

func TestEncodeAll_ReportsFailingPosition(t *testing.T) {
	_, err := EncodeAll([]Param{Auto(1), Typed(KindBool, "yes")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parameter 1")
}

func TestParseParam(t *testing.T) {
	p := ParseParam("u32:7")
	assert.Equal(t, KindU32, p.Kind)
	assert.Equal(t, json.Number("7"), p.Value)

	p = ParseParam("true")
	assert.Equal(t, KindAuto, p.Kind)
	assert.Equal(t, true, p.Value)

	p = ParseParam("symbol:Admin")
	assert.Equal(t, KindSymbol, p.Kind)
	assert.Equal(t, "Admin", p.Value)

	// Unknown prefixes are part of the text.
	p = ParseParam("https://example.com")
	assert.Equal(t, KindAuto, p.Kind)
	assert.Equal(t, "https://example.com", p.Value)
}

func TestParseParam_TextKindsKeepRawValue(t *testing.T) {
	for _, tc := range []struct {
		in   string
		kind Kind
		want string
	}{
		{"string:123", KindString, "123"},
		{"string:null", KindString, "null"},
		{"symbol:true", KindSymbol, "true"},
		{"bytes:1234", KindBytes, "1234"},
	} {
		t.Run(tc.in, func(t *testing.T) {
			p := ParseParam(tc.in)
			assert.Equal(t, tc.kind, p.Kind)
			assert.Equal(t, tc.want, p.Value)

			_, err := Encode(p)
			assert.NoError(t, err)
		})
	}

	val, err := Encode(ParseParam("string:123"))
	require.NoError(t, err)
	assert.Equal(t, xdr.ScValTypeScvString, val.Type)
	assert.Equal(t, "123", string(*val.Str))

	val, err = Encode(ParseParam("bytes:1234"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x34}, []byte(*val.Bytes))

	// Numeric kinds still read the text as a number.
	val, err = Encode(ParseParam("u64:18446744073709551615"))
	require.NoError(t, err)
	assert.Equal(t, xdr.Uint64(18446744073709551615), *val.U64)
}
