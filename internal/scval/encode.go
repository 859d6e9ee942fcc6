// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package scval

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"math"
	"math/big"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/support/log"
	"github.com/stellar/go/xdr"
)

// AddressLength is the length of a strkey encoded account or contract id.
const AddressLength = 56

// ErrUnsupportedValue is returned when a value has no ScVal representation.
var ErrUnsupportedValue = errors.New("unsupported parameter value")

// EncodeAll encodes params positionally. The result always has the same
// length and order as params; any failure aborts the whole sequence.
func EncodeAll(params []Param) ([]xdr.ScVal, error) {
	out := make([]xdr.ScVal, len(params))
	for i, p := range params {
		v, err := Encode(p)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %d", i)
		}
		out[i] = v
	}
	return out, nil
}

// Encode converts a single param.
func Encode(p Param) (xdr.ScVal, error) {
	switch p.Kind {
	case KindU32:
		return U32(p.Value)
	case KindAddress:
		s, ok := p.Value.(string)
		if !ok {
			return xdr.ScVal{}, errors.Wrapf(ErrUnsupportedValue, "address must be a string, got %T", p.Value)
		}
		addr, err := ParseAddress(s)
		if err != nil {
			return xdr.ScVal{}, err
		}
		return Address(addr), nil
	case KindBool:
		b, ok := p.Value.(bool)
		if !ok {
			return xdr.ScVal{}, errors.Wrapf(ErrUnsupportedValue, "bool must be a boolean, got %T", p.Value)
		}
		return Bool(b), nil
	case KindAuto:
		return infer(p.Value)
	default:
		return convert(p.Value, p.Kind)
	}
}

func infer(v interface{}) (xdr.ScVal, error) {
	switch x := v.(type) {
	case json.Number, float64, float32, int, int32, int64, uint, uint32, uint64:
		return U32(x)
	case bool:
		return Bool(x), nil
	case string:
		val, fellBack := EncodeText(x)
		if fellBack {
			log.WithField("value", x).Debug("address-like parameter is not a valid strkey, encoding as string")
		}
		return val, nil
	default:
		return convert(v, KindAuto)
	}
}

// EncodeText applies the address heuristic to free text. Text of address
// length starting with G or C is parsed as an address; when parsing fails the
// text is encoded as a plain string and fellBack reports that.
func EncodeText(s string) (val xdr.ScVal, fellBack bool) {
	if !looksLikeAddress(s) {
		return String(s), false
	}
	addr, err := ParseAddress(s)
	if err != nil {
		return String(s), true
	}
	return Address(addr), false
}

func looksLikeAddress(s string) bool {
	return len(s) == AddressLength && (strings.HasPrefix(s, "G") || strings.HasPrefix(s, "C"))
}

// ParseAddress decodes a G... account id or a C... contract id.
func ParseAddress(s string) (xdr.ScAddress, error) {
	switch {
	case strings.HasPrefix(s, "G"):
		var aid xdr.AccountId
		if err := aid.SetAddress(s); err != nil {
			return xdr.ScAddress{}, errors.Wrapf(err, "invalid account address %q", s)
		}
		return xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeAccount, AccountId: &aid}, nil
	case strings.HasPrefix(s, "C"):
		raw, err := strkey.Decode(strkey.VersionByteContract, s)
		if err != nil {
			return xdr.ScAddress{}, errors.Wrapf(err, "invalid contract address %q", s)
		}
		return contractAddress(raw)
	default:
		return xdr.ScAddress{}, errors.Errorf("unrecognised address %q", s)
	}
}

// contractAddress goes through the wire form so it does not depend on the
// generated name of the contract id type.
func contractAddress(hash []byte) (xdr.ScAddress, error) {
	if len(hash) != 32 {
		return xdr.ScAddress{}, errors.Errorf("contract id must be 32 bytes, got %d", len(hash))
	}
	raw := make([]byte, 4+32)
	binary.BigEndian.PutUint32(raw, uint32(xdr.ScAddressTypeScAddressTypeContract))
	copy(raw[4:], hash)
	var addr xdr.ScAddress
	if err := addr.UnmarshalBinary(raw); err != nil {
		return xdr.ScAddress{}, errors.Wrap(err, "decoding contract address")
	}
	return addr, nil
}

// U32 encodes an integral number in [0, 2^32).
func U32(v interface{}) (xdr.ScVal, error) {
	n, err := toBigInt(v)
	if err != nil {
		return xdr.ScVal{}, err
	}
	if n.Sign() < 0 || n.Cmp(big.NewInt(math.MaxUint32)) > 0 {
		return xdr.ScVal{}, errors.Errorf("value %s out of range for u32", n)
	}
	u := xdr.Uint32(n.Uint64())
	return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}, nil
}

func Bool(b bool) xdr.ScVal {
	return xdr.ScVal{Type: xdr.ScValTypeScvBool, B: &b}
}

func String(s string) xdr.ScVal {
	str := xdr.ScString(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &str}
}

func Symbol(s string) xdr.ScVal {
	sym := xdr.ScSymbol(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym}
}

func Address(addr xdr.ScAddress) xdr.ScVal {
	return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &addr}
}

func Bytes(b []byte) xdr.ScVal {
	sb := xdr.ScBytes(b)
	return xdr.ScVal{Type: xdr.ScValTypeScvBytes, Bytes: &sb}
}

func Void() xdr.ScVal {
	return xdr.ScVal{Type: xdr.ScValTypeScvVoid}
}

// convert is the generic path. hint narrows the target type when it names one
// this package knows; any other hint is ignored.
func convert(v interface{}, hint Kind) (xdr.ScVal, error) {
	switch hint {
	case KindString, KindSymbol:
		s, ok := v.(string)
		if !ok {
			return xdr.ScVal{}, errors.Wrapf(ErrUnsupportedValue, "%s must be text, got %T", hint, v)
		}
		if hint == KindSymbol {
			return Symbol(s), nil
		}
		return String(s), nil
	case KindI32, KindU64, KindI64, KindU128, KindI128:
		n, err := toBigInt(v)
		if err != nil {
			return xdr.ScVal{}, err
		}
		return integer(n, hint)
	case KindBytes:
		return bytesValue(v)
	case KindVoid:
		return Void(), nil
	}
	return native(v)
}

func native(v interface{}) (xdr.ScVal, error) {
	switch x := v.(type) {
	case nil:
		return Void(), nil
	case xdr.ScVal:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case []byte:
		return Bytes(x), nil
	case json.Number, float64, float32, int, int32, int64, uint, uint32, uint64:
		n, err := toBigInt(x)
		if err != nil {
			return xdr.ScVal{}, err
		}
		return smallestInteger(n)
	case []interface{}:
		items := make(xdr.ScVec, len(x))
		for i, item := range x {
			val, err := native(item)
			if err != nil {
				return xdr.ScVal{}, errors.Wrapf(err, "element %d", i)
			}
			items[i] = val
		}
		vec := &items
		return xdr.ScVal{Type: xdr.ScValTypeScvVec, Vec: &vec}, nil
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make(xdr.ScMap, 0, len(keys))
		for _, k := range keys {
			val, err := native(x[k])
			if err != nil {
				return xdr.ScVal{}, errors.Wrapf(err, "field %q", k)
			}
			entries = append(entries, xdr.ScMapEntry{Key: Symbol(k), Val: val})
		}
		m := &entries
		return xdr.ScVal{Type: xdr.ScValTypeScvMap, Map: &m}, nil
	default:
		return xdr.ScVal{}, errors.Wrapf(ErrUnsupportedValue, "%T", v)
	}
}

var (
	maxU64  = new(big.Int).SetUint64(math.MaxUint64)
	minI64  = big.NewInt(math.MinInt64)
	two128  = new(big.Int).Lsh(big.NewInt(1), 128)
	maxU128 = new(big.Int).Sub(two128, big.NewInt(1))
	maxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	mask64  = new(big.Int).SetUint64(math.MaxUint64)
)

func smallestInteger(n *big.Int) (xdr.ScVal, error) {
	switch {
	case n.Sign() >= 0 && n.Cmp(maxU64) <= 0:
		return integer(n, KindU64)
	case n.Sign() < 0 && n.Cmp(minI64) >= 0:
		return integer(n, KindI64)
	case n.Sign() >= 0:
		return integer(n, KindU128)
	default:
		return integer(n, KindI128)
	}
}

func integer(n *big.Int, kind Kind) (xdr.ScVal, error) {
	outOfRange := errors.Errorf("value %s out of range for %s", n, kind)
	switch kind {
	case KindI32:
		if !n.IsInt64() || n.Int64() < math.MinInt32 || n.Int64() > math.MaxInt32 {
			return xdr.ScVal{}, outOfRange
		}
		i := xdr.Int32(n.Int64())
		return xdr.ScVal{Type: xdr.ScValTypeScvI32, I32: &i}, nil
	case KindU64:
		if n.Sign() < 0 || !n.IsUint64() {
			return xdr.ScVal{}, outOfRange
		}
		u := xdr.Uint64(n.Uint64())
		return xdr.ScVal{Type: xdr.ScValTypeScvU64, U64: &u}, nil
	case KindI64:
		if !n.IsInt64() {
			return xdr.ScVal{}, outOfRange
		}
		i := xdr.Int64(n.Int64())
		return xdr.ScVal{Type: xdr.ScValTypeScvI64, I64: &i}, nil
	case KindU128:
		if n.Sign() < 0 || n.Cmp(maxU128) > 0 {
			return xdr.ScVal{}, outOfRange
		}
		hi, lo := split128(n)
		parts := xdr.UInt128Parts{Hi: xdr.Uint64(hi), Lo: xdr.Uint64(lo)}
		return xdr.ScVal{Type: xdr.ScValTypeScvU128, U128: &parts}, nil
	case KindI128:
		if n.Cmp(minI128) < 0 || n.Cmp(maxI128) > 0 {
			return xdr.ScVal{}, outOfRange
		}
		hi, lo := split128(n)
		parts := xdr.Int128Parts{Hi: xdr.Int64(int64(hi)), Lo: xdr.Uint64(lo)}
		return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}, nil
	}
	return xdr.ScVal{}, errors.Errorf("%s is not an integer kind", kind)
}

// split128 returns the two's complement halves of n.
func split128(n *big.Int) (hi, lo uint64) {
	v := new(big.Int).Set(n)
	if v.Sign() < 0 {
		v.Add(v, two128)
	}
	lo = new(big.Int).And(v, mask64).Uint64()
	hi = new(big.Int).Rsh(v, 64).Uint64()
	return hi, lo
}

func bytesValue(v interface{}) (xdr.ScVal, error) {
	switch x := v.(type) {
	case []byte:
		return Bytes(x), nil
	case string:
		raw, err := hex.DecodeString(strings.TrimPrefix(x, "0x"))
		if err != nil {
			return xdr.ScVal{}, errors.Wrap(err, "bytes must be hex encoded")
		}
		return Bytes(raw), nil
	}
	return xdr.ScVal{}, errors.Wrapf(ErrUnsupportedValue, "bytes must be hex text, got %T", v)
}

func toBigInt(v interface{}) (*big.Int, error) {
	switch x := v.(type) {
	case json.Number:
		if n, ok := new(big.Int).SetString(x.String(), 10); ok {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, errors.Wrapf(err, "invalid number %q", x)
		}
		return floatToBigInt(f)
	case float64:
		return floatToBigInt(x)
	case float32:
		return floatToBigInt(float64(x))
	case int:
		return big.NewInt(int64(x)), nil
	case int32:
		return big.NewInt(int64(x)), nil
	case int64:
		return big.NewInt(x), nil
	case uint:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint64:
		return new(big.Int).SetUint64(x), nil
	case string:
		if n, ok := new(big.Int).SetString(x, 10); ok {
			return n, nil
		}
		return nil, errors.Errorf("invalid integer %q", x)
	}
	return nil, errors.Wrapf(ErrUnsupportedValue, "expected a number, got %T", v)
}

func floatToBigInt(f float64) (*big.Int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, errors.Errorf("%v is not an integer", f)
	}
	n, _ := big.NewFloat(f).Int(nil)
	return n, nil
}
