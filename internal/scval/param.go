// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package scval converts loosely typed request parameters into Soroban ScVal
// arguments, and serialises returned ScVals for transport.
package scval

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Kind selects how a Param is encoded.
type Kind string

const (
	// KindAuto infers the encoding from the shape of the value.
	KindAuto    Kind = "auto"
	KindU32     Kind = "u32"
	KindAddress Kind = "address"
	KindBool    Kind = "bool"
	KindString  Kind = "string"
	KindSymbol  Kind = "symbol"
	KindI32     Kind = "i32"
	KindU64     Kind = "u64"
	KindI64     Kind = "i64"
	KindU128    Kind = "u128"
	KindI128    Kind = "i128"
	KindBytes   Kind = "bytes"
	KindVoid    Kind = "void"
)

// Param is one positional contract argument: either a plain scalar (KindAuto)
// or a {type, value} descriptor. Kinds outside the constants above are kept as
// given and encoded by generic conversion.
type Param struct {
	Kind  Kind
	Value interface{}
}

// Auto wraps a plain value.
func Auto(v interface{}) Param {
	return Param{Kind: KindAuto, Value: v}
}

// Typed builds a descriptor param.
func Typed(kind Kind, v interface{}) Param {
	return Param{Kind: kind, Value: v}
}

// FromNative classifies a decoded JSON value. Objects with a non-empty string
// "type" field are descriptors, anything else is a plain scalar.
func FromNative(v interface{}) Param {
	if obj, ok := v.(map[string]interface{}); ok {
		if kind, ok := obj["type"].(string); ok && kind != "" {
			return Param{Kind: Kind(kind), Value: obj["value"]}
		}
	}
	return Auto(v)
}

// UnmarshalJSON decodes numbers as json.Number so wide integers survive.
func (p *Param) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*p = FromNative(raw)
	return nil
}

// ParseParam reads the command line form of a parameter: "kind:value" for a
// descriptor, or a bare value whose shape (bool, number, text) picks the kind.
func ParseParam(s string) Param {
	if i := strings.Index(s, ":"); i > 0 {
		kind := Kind(s[:i])
		if knownKind(kind) {
			if textKind(kind) {
				return Typed(kind, s[i+1:])
			}
			return Typed(kind, scalarFromText(s[i+1:]))
		}
	}
	return Auto(scalarFromText(s))
}

func scalarFromText(s string) interface{} {
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	var n json.Number
	if err := json.Unmarshal([]byte(s), &n); err == nil {
		return n
	}
	return s
}

// textKind reports kinds whose command line value is taken verbatim.
func textKind(k Kind) bool {
	switch k {
	case KindString, KindSymbol, KindAddress, KindBytes:
		return true
	}
	return false
}

func knownKind(k Kind) bool {
	switch k {
	case KindAuto, KindU32, KindAddress, KindBool, KindString, KindSymbol,
		KindI32, KindU64, KindI64, KindU128, KindI128, KindBytes, KindVoid:
		return true
	}
	return false
}
