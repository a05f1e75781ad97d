package core

import (
	"strconv"

	"github.com/zeebo/xxh3"
)

// Kind identifies the type of a Value.
type Kind int

// Value kinds.
const (
	KindOpaque Kind = iota
	KindNumber
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "opaque"
	}
}

// Value is a single table cell.
type Value struct {
	kind Kind
	num  float64
	b    bool
	str  string
}

// Number returns a numeric Value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Opaque returns a Value for an engine kind the client does not interpret.
// repr is the engine's own representation of the value.
func Opaque(repr string) Value { return Value{kind: KindOpaque, str: repr} }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// AsFloat returns the numeric content and whether v is a Number.
func (v Value) AsFloat() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean content and whether v is a Bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsString returns the string content and whether v is a String.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// String returns the plain text form of the value.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.str
	}
}

// Debug returns the debug form of the value: strings are quoted,
// everything else matches String.
func (v Value) Debug() string {
	if v.kind == KindString {
		return strconv.Quote(v.str)
	}
	return v.String()
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	return v == o
}

// TableID identifies a table inside the runtime core.
type TableID uint64

// HashName derives the identifier of the table with the given human name.
func HashName(name string) TableID {
	return TableID(xxh3.HashString(name))
}

// Well-known tables read by the batch drivers.
var (
	OutputTable = HashName("output")
	TestTable   = HashName("test")
)
