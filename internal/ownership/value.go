package ownership

import (
	"strconv"
	"strings"
)

// ScalarType enumerates the fixed-size, trivially copyable value shapes.
type ScalarType uint8

const (
	ScalarInvalid ScalarType = iota
	ScalarInt
	ScalarFloat
	ScalarBool
	ScalarChar
	ScalarTuple
)

func (t ScalarType) String() string {
	switch t {
	case ScalarInt:
		return "int"
	case ScalarFloat:
		return "float"
	case ScalarBool:
		return "bool"
	case ScalarChar:
		return "char"
	case ScalarTuple:
		return "tuple"
	default:
		return "invalid"
	}
}

// Scalar is a copyable value. Tuples hold scalars only.
type Scalar struct {
	Type  ScalarType
	Int   int64
	Float float64
	Bool  bool
	Char  rune
	Elems []Scalar
}

func IntScalar(v int64) Scalar     { return Scalar{Type: ScalarInt, Int: v} }
func FloatScalar(v float64) Scalar { return Scalar{Type: ScalarFloat, Float: v} }
func BoolScalar(v bool) Scalar     { return Scalar{Type: ScalarBool, Bool: v} }
func CharScalar(v rune) Scalar     { return Scalar{Type: ScalarChar, Char: v} }

// TupleScalar builds a tuple; elements are copied.
func TupleScalar(elems ...Scalar) Scalar {
	out := Scalar{Type: ScalarTuple, Elems: make([]Scalar, len(elems))}
	for i := range elems {
		out.Elems[i] = elems[i].duplicate()
	}
	return out
}

// duplicate returns an independent copy; tuples must not share backing arrays.
func (s Scalar) duplicate() Scalar {
	if s.Type != ScalarTuple {
		return s
	}
	elems := make([]Scalar, len(s.Elems))
	for i := range s.Elems {
		elems[i] = s.Elems[i].duplicate()
	}
	s.Elems = elems
	return s
}

// SameShape reports whether o can be stored where s lives: same type, and for
// tuples the same arity and element shapes.
func (s Scalar) SameShape(o Scalar) bool {
	if s.Type != o.Type {
		return false
	}
	if s.Type != ScalarTuple {
		return true
	}
	if len(s.Elems) != len(o.Elems) {
		return false
	}
	for i := range s.Elems {
		if !s.Elems[i].SameShape(o.Elems[i]) {
			return false
		}
	}
	return true
}

// Equal compares two scalars structurally.
func (s Scalar) Equal(o Scalar) bool {
	if !s.SameShape(o) {
		return false
	}
	switch s.Type {
	case ScalarInt:
		return s.Int == o.Int
	case ScalarFloat:
		return s.Float == o.Float
	case ScalarBool:
		return s.Bool == o.Bool
	case ScalarChar:
		return s.Char == o.Char
	case ScalarTuple:
		for i := range s.Elems {
			if !s.Elems[i].Equal(o.Elems[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// ShapeString renders the type, e.g. "(int, bool)".
func (s Scalar) ShapeString() string {
	if s.Type != ScalarTuple {
		return s.Type.String()
	}
	parts := make([]string, len(s.Elems))
	for i := range s.Elems {
		parts[i] = s.Elems[i].ShapeString()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (s Scalar) String() string {
	switch s.Type {
	case ScalarInt:
		return strconv.FormatInt(s.Int, 10)
	case ScalarFloat:
		out := strconv.FormatFloat(s.Float, 'g', -1, 64)
		if !strings.ContainsAny(out, ".eEIN") {
			out += ".0"
		}
		return out
	case ScalarBool:
		return strconv.FormatBool(s.Bool)
	case ScalarChar:
		return strconv.QuoteRune(s.Char)
	case ScalarTuple:
		parts := make([]string, len(s.Elems))
		for i := range s.Elems {
			parts[i] = s.Elems[i].String()
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return "<invalid>"
}

// ValueKind separates copyable scalars, owned buffers and borrow handles.
type ValueKind uint8

const (
	ValueInvalid ValueKind = iota
	ValueScalar
	ValueBuffer
	ValueBorrow
)

func (k ValueKind) String() string {
	switch k {
	case ValueScalar:
		return "scalar"
	case ValueBuffer:
		return "buffer"
	case ValueBorrow:
		return "borrow"
	default:
		return "invalid"
	}
}

// Value is a literal handed to Declare or Mutate, and the result of Read.
type Value struct {
	Kind   ValueKind
	Scalar Scalar
	Text   string
}

func ScalarValue(s Scalar) Value { return Value{Kind: ValueScalar, Scalar: s.duplicate()} }

func BufferValue(text string) Value { return Value{Kind: ValueBuffer, Text: text} }

func Int(v int64) Value { return ScalarValue(IntScalar(v)) }

// Equal compares kind and content.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueScalar:
		return v.Scalar.Equal(o.Scalar)
	case ValueBuffer:
		return v.Text == o.Text
	}
	return false
}

func (v Value) String() string {
	switch v.Kind {
	case ValueScalar:
		return v.Scalar.String()
	case ValueBuffer:
		return strconv.Quote(v.Text)
	}
	return "<invalid>"
}
