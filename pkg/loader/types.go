package loader

import (
	"fmt"
	"strconv"
	"strings"

	"irvm/pkg/interpreter"
)

// Type is a parsed IR type. Bits is set for arbitrary width integers, Lanes
// for vectors and Size for structs.
type Type struct {
	Repr  interpreter.Repr
	Bits  int
	Lanes int
	Size  int64
}

var scalarTypes = map[string]interpreter.Repr{
	"void":     interpreter.ReprVoid,
	"i1":       interpreter.ReprI1,
	"i8":       interpreter.ReprI8,
	"i16":      interpreter.ReprI16,
	"i32":      interpreter.ReprI32,
	"i64":      interpreter.ReprI64,
	"float":    interpreter.ReprFloat,
	"double":   interpreter.ReprDouble,
	"x86_fp80": interpreter.ReprX86FP80,
	"ptr":      interpreter.ReprAddress,
	"func":     interpreter.ReprFunction,
}

var laneTypes = map[string]interpreter.Repr{
	"i1":     interpreter.ReprI1Vector,
	"i8":     interpreter.ReprI8Vector,
	"i16":    interpreter.ReprI16Vector,
	"i32":    interpreter.ReprI32Vector,
	"i64":    interpreter.ReprI64Vector,
	"float":  interpreter.ReprFloatVector,
	"double": interpreter.ReprDoubleVector,
}

// ParseType parses the type syntax of module files: void, i1 … i64, iN,
// float, double, x86_fp80, ptr, func, <N x T> and struct<S>.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)

	if r, ok := scalarTypes[s]; ok {
		return Type{Repr: r}, nil
	}

	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		n, lane, ok := strings.Cut(s[1:len(s)-1], " x ")
		if !ok {
			return Type{}, fmt.Errorf("bad vector type %q", s)
		}
		lanes, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil || lanes <= 0 {
			return Type{}, fmt.Errorf("bad lane count in %q", s)
		}
		r, ok := laneTypes[strings.TrimSpace(lane)]
		if !ok {
			return Type{}, fmt.Errorf("bad lane type in %q", s)
		}
		return Type{Repr: r, Lanes: lanes}, nil
	}

	if body, ok := strings.CutPrefix(s, "struct<"); ok && strings.HasSuffix(body, ">") {
		size, err := strconv.ParseInt(strings.TrimSuffix(body, ">"), 10, 64)
		if err != nil || size < 0 {
			return Type{}, fmt.Errorf("bad struct size in %q", s)
		}
		return Type{Repr: interpreter.ReprStruct, Size: size}, nil
	}

	if rest, ok := strings.CutPrefix(s, "i"); ok {
		bits, err := strconv.Atoi(rest)
		if err == nil && bits > 0 {
			return Type{Repr: interpreter.ReprIVarBit, Bits: bits}, nil
		}
	}

	return Type{}, fmt.Errorf("unknown type %q", s)
}

func (t Type) String() string {
	switch {
	case t.Repr == interpreter.ReprIVarBit:
		return fmt.Sprintf("i%d", t.Bits)
	case t.Repr.IsVector():
		for name, r := range laneTypes {
			if r == t.Repr {
				return fmt.Sprintf("<%d x %s>", t.Lanes, name)
			}
		}
	case t.Repr == interpreter.ReprStruct:
		return fmt.Sprintf("struct<%d>", t.Size)
	}
	return t.Repr.String()
}
