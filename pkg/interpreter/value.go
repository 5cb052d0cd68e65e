package interpreter

import (
	"fmt"
	"math"
	"strings"
)

// Repr is the static representation of an IR value. It decides which slot
// kind holds the value and how a return handler stores it.
type Repr int

const (
	ReprI1 Repr = iota
	ReprI8
	ReprI16
	ReprI32
	ReprI64
	ReprIVarBit
	ReprFloat
	ReprDouble
	ReprX86FP80
	ReprAddress
	ReprFunction
	ReprI1Vector
	ReprI8Vector
	ReprI16Vector
	ReprI32Vector
	ReprI64Vector
	ReprFloatVector
	ReprDoubleVector
	ReprStruct
	ReprVoid

	numReprs
)

var reprNames = [numReprs]string{
	ReprI1:           "i1",
	ReprI8:           "i8",
	ReprI16:          "i16",
	ReprI32:          "i32",
	ReprI64:          "i64",
	ReprIVarBit:      "ivarbit",
	ReprFloat:        "float",
	ReprDouble:       "double",
	ReprX86FP80:      "x86_fp80",
	ReprAddress:      "ptr",
	ReprFunction:     "func",
	ReprI1Vector:     "<N x i1>",
	ReprI8Vector:     "<N x i8>",
	ReprI16Vector:    "<N x i16>",
	ReprI32Vector:    "<N x i32>",
	ReprI64Vector:    "<N x i64>",
	ReprFloatVector:  "<N x float>",
	ReprDoubleVector: "<N x double>",
	ReprStruct:       "struct",
	ReprVoid:         "void",
}

func (r Repr) String() string {
	if r < 0 || r >= numReprs {
		return fmt.Sprintf("Repr(%d)", int(r))
	}
	return reprNames[r]
}

// Valid reports whether r is one of the known representations.
func (r Repr) Valid() bool {
	return r >= 0 && r < numReprs
}

// IsVector reports whether r is one of the vector representations.
func (r Repr) IsVector() bool {
	return r >= ReprI1Vector && r <= ReprDoubleVector
}

// SlotKind returns the storage kind a slot must have to hold r.
func (r Repr) SlotKind() SlotKind {
	switch r {
	case ReprI1:
		return SlotBool
	case ReprI8:
		return SlotByte
	case ReprI16, ReprI32:
		return SlotInt
	case ReprI64:
		return SlotLong
	case ReprFloat:
		return SlotFloat
	case ReprDouble:
		return SlotDouble
	case ReprVoid:
		return SlotIllegal
	default:
		if r.Valid() {
			return SlotObject
		}
		return SlotIllegal
	}
}

// Value is a fully evaluated IR value. Scalars live in bits (integers
// sign-extended to 64 bits, floats as IEEE bit patterns); boxed kinds live in
// ref.
type Value struct {
	repr Repr
	bits uint64
	ref  any
}

// I1 creates an i1 value.
func I1(b bool) Value {
	if b {
		return Value{repr: ReprI1, bits: 1}
	}
	return Value{repr: ReprI1}
}

// I8 creates an i8 value.
func I8(x int8) Value {
	return Value{repr: ReprI8, bits: uint64(int64(x))}
}

// I16 creates an i16 value.
func I16(x int16) Value {
	return Value{repr: ReprI16, bits: uint64(int64(x))}
}

// I32 creates an i32 value.
func I32(x int32) Value {
	return Value{repr: ReprI32, bits: uint64(int64(x))}
}

// I64 creates an i64 value.
func I64(x int64) Value {
	return Value{repr: ReprI64, bits: uint64(x)}
}

// Float creates a float value.
func Float(x float32) Value {
	return Value{repr: ReprFloat, bits: uint64(math.Float32bits(x))}
}

// Double creates a double value.
func Double(x float64) Value {
	return Value{repr: ReprDouble, bits: math.Float64bits(x)}
}

// VarBitValue boxes an arbitrary width integer.
func VarBitValue(v *VarBit) Value {
	return Value{repr: ReprIVarBit, ref: v}
}

// FP80Value boxes an x86 extended precision float.
func FP80Value(v *Float80) Value {
	return Value{repr: ReprX86FP80, ref: v}
}

// AddressValue boxes a heap address.
func AddressValue(a Address) Value {
	return Value{repr: ReprAddress, ref: a}
}

// FunctionValue boxes a function reference.
func FunctionValue(fn *Function) Value {
	return Value{repr: ReprFunction, ref: fn}
}

// VectorValue boxes a vector. The representation follows the lane type.
func VectorValue[T Lane](v *Vector[T]) Value {
	return Value{repr: vectorRepr[T](), ref: v}
}

// StructValue refers to a materialised aggregate by its source address.
func StructValue(a Address) Value {
	return Value{repr: ReprStruct, ref: a}
}

// Void is the absent value of a void return.
func Void() Value {
	return Value{repr: ReprVoid}
}

// Repr returns the representation of v.
func (v Value) Repr() Repr {
	return v.repr
}

func (v Value) AsBool() bool {
	return v.bits != 0
}

func (v Value) AsI8() int8 {
	return int8(v.bits)
}

func (v Value) AsI16() int16 {
	return int16(v.bits)
}

func (v Value) AsI32() int32 {
	return int32(v.bits)
}

func (v Value) AsI64() int64 {
	return int64(v.bits)
}

func (v Value) AsFloat() float32 {
	return math.Float32frombits(uint32(v.bits))
}

func (v Value) AsDouble() float64 {
	return math.Float64frombits(v.bits)
}

// Ref returns the boxed payload of v, or nil for inline scalars.
func (v Value) Ref() any {
	return v.ref
}

// AsAddress returns the address carried by a ptr or struct value.
func (v Value) AsAddress() Address {
	a, _ := v.ref.(Address)
	return a
}

// String renders the value with its type, e.g. "i32 42" or "<4 x i32> [1 2 3 4]".
func (v Value) String() string {
	switch v.repr {
	case ReprI1:
		return fmt.Sprintf("i1 %t", v.AsBool())
	case ReprI8:
		return fmt.Sprintf("i8 %d", v.AsI8())
	case ReprI16:
		return fmt.Sprintf("i16 %d", v.AsI16())
	case ReprI32:
		return fmt.Sprintf("i32 %d", v.AsI32())
	case ReprI64:
		return fmt.Sprintf("i64 %d", v.AsI64())
	case ReprFloat:
		return fmt.Sprintf("float %g", v.AsFloat())
	case ReprDouble:
		return fmt.Sprintf("double %g", v.AsDouble())
	case ReprVoid:
		return "void"
	case ReprAddress:
		return fmt.Sprintf("ptr %s", v.AsAddress())
	case ReprStruct:
		return fmt.Sprintf("struct %s", v.AsAddress())
	case ReprFunction:
		if fn, ok := v.ref.(*Function); ok && fn != nil {
			return "func @" + fn.Name
		}
		return "func null"
	default:
		if s, ok := v.ref.(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("%s %v", v.repr, v.ref)
	}
}

// Equal reports whether two values have the same representation and
// contents. Scalars compare bit for bit; boxed values by contents.
func (v Value) Equal(o Value) bool {
	if v.repr != o.repr {
		return false
	}
	switch v.repr {
	case ReprIVarBit:
		a, _ := v.ref.(*VarBit)
		b, _ := o.ref.(*VarBit)
		return a.Equal(b)
	case ReprX86FP80:
		a, _ := v.ref.(*Float80)
		b, _ := o.ref.(*Float80)
		return a != nil && b != nil && *a == *b
	case ReprAddress, ReprStruct, ReprFunction:
		return v.ref == o.ref
	case ReprVoid:
		return true
	default:
		if v.repr.IsVector() {
			return vectorsEqual(v.ref, o.ref)
		}
		return v.bits == o.bits
	}
}

// Address is a byte address in the interpreter heap. Zero is null.
type Address uint64

func (a Address) String() string {
	return fmt.Sprintf("@0x%x", uint64(a))
}

// IsNull reports whether a is the null address.
func (a Address) IsNull() bool {
	return a == 0
}

func joinLanes[T any](lanes []T) string {
	parts := make([]string, len(lanes))
	for i, l := range lanes {
		parts[i] = fmt.Sprint(l)
	}
	return strings.Join(parts, " ")
}
