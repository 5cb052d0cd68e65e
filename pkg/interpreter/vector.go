package interpreter

import "fmt"

// Lane is the set of element types a vector may carry.
type Lane interface {
	bool | int8 | int16 | int32 | int64 | float32 | float64
}

// Vector is a fixed lane count SIMD value. Vectors of different lane types
// are distinct representations and are never converted into each other.
type Vector[T Lane] struct {
	lanes []T
}

type (
	I1Vector     = Vector[bool]
	I8Vector     = Vector[int8]
	I16Vector    = Vector[int16]
	I32Vector    = Vector[int32]
	I64Vector    = Vector[int64]
	FloatVector  = Vector[float32]
	DoubleVector = Vector[float64]
)

// NewVector creates a vector holding a copy of lanes.
func NewVector[T Lane](lanes ...T) *Vector[T] {
	return &Vector[T]{lanes: append([]T(nil), lanes...)}
}

// Len returns the lane count.
func (v *Vector[T]) Len() int {
	return len(v.lanes)
}

// Lane returns lane i.
func (v *Vector[T]) Lane(i int) T {
	return v.lanes[i]
}

// Lanes returns a copy of the lanes.
func (v *Vector[T]) Lanes() []T {
	return append([]T(nil), v.lanes...)
}

// Equal compares lane counts and lanes. Float lanes use ==, so a NaN lane
// never compares equal.
func (v *Vector[T]) Equal(o *Vector[T]) bool {
	if v == nil || o == nil {
		return v == o
	}
	if len(v.lanes) != len(o.lanes) {
		return false
	}
	for i := range v.lanes {
		if v.lanes[i] != o.lanes[i] {
			return false
		}
	}
	return true
}

func (v *Vector[T]) String() string {
	return fmt.Sprintf("<%d x %s> [%s]", len(v.lanes), laneName[T](), joinLanes(v.lanes))
}

func laneName[T Lane]() string {
	var zero T
	switch any(zero).(type) {
	case bool:
		return "i1"
	case int8:
		return "i8"
	case int16:
		return "i16"
	case int32:
		return "i32"
	case int64:
		return "i64"
	case float32:
		return "float"
	default:
		return "double"
	}
}

func vectorRepr[T Lane]() Repr {
	var zero T
	switch any(zero).(type) {
	case bool:
		return ReprI1Vector
	case int8:
		return ReprI8Vector
	case int16:
		return ReprI16Vector
	case int32:
		return ReprI32Vector
	case int64:
		return ReprI64Vector
	case float32:
		return ReprFloatVector
	default:
		return ReprDoubleVector
	}
}

func vectorsEqual(a, b any) bool {
	switch x := a.(type) {
	case *I1Vector:
		y, ok := b.(*I1Vector)
		return ok && x.Equal(y)
	case *I8Vector:
		y, ok := b.(*I8Vector)
		return ok && x.Equal(y)
	case *I16Vector:
		y, ok := b.(*I16Vector)
		return ok && x.Equal(y)
	case *I32Vector:
		y, ok := b.(*I32Vector)
		return ok && x.Equal(y)
	case *I64Vector:
		y, ok := b.(*I64Vector)
		return ok && x.Equal(y)
	case *FloatVector:
		y, ok := b.(*FloatVector)
		return ok && x.Equal(y)
	case *DoubleVector:
		y, ok := b.(*DoubleVector)
		return ok && x.Equal(y)
	default:
		return false
	}
}
