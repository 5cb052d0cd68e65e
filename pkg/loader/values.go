package loader

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"irvm/pkg/interpreter"
)

// parseConst parses a scalar literal of type t.
func parseConst(t Type, s string) (interpreter.Value, error) {
	s = strings.TrimSpace(s)

	switch t.Repr {
	case interpreter.ReprI1:
		b, err := parseBool(s)
		return interpreter.I1(b), err
	case interpreter.ReprI8:
		x, err := strconv.ParseInt(s, 0, 8)
		return interpreter.I8(int8(x)), err
	case interpreter.ReprI16:
		x, err := strconv.ParseInt(s, 0, 16)
		return interpreter.I16(int16(x)), err
	case interpreter.ReprI32:
		x, err := strconv.ParseInt(s, 0, 32)
		return interpreter.I32(int32(x)), err
	case interpreter.ReprI64:
		x, err := strconv.ParseInt(s, 0, 64)
		return interpreter.I64(x), err
	case interpreter.ReprIVarBit:
		x, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return interpreter.Value{}, fmt.Errorf("bad %s literal %q", t, s)
		}
		return interpreter.VarBitValue(interpreter.NewVarBit(t.Bits, x)), nil
	case interpreter.ReprFloat:
		x, err := strconv.ParseFloat(s, 32)
		return interpreter.Float(float32(x)), err
	case interpreter.ReprDouble:
		x, err := strconv.ParseFloat(s, 64)
		return interpreter.Double(x), err
	case interpreter.ReprX86FP80:
		x, err := strconv.ParseFloat(s, 64)
		return interpreter.FP80Value(interpreter.Float80FromFloat64(x)), err
	case interpreter.ReprAddress:
		if s == "null" {
			return interpreter.AddressValue(0), nil
		}
		x, err := strconv.ParseUint(s, 0, 64)
		return interpreter.AddressValue(interpreter.Address(x)), err
	default:
		return interpreter.Value{}, fmt.Errorf("no literal syntax for %s", t)
	}
}

func parseBool(s string) (bool, error) {
	switch s {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("bad i1 literal %q", s)
	}
}

// parseLanes parses the lanes of a vector literal of type t.
func parseLanes(t Type, lanes []string) (interpreter.Value, error) {
	if len(lanes) != t.Lanes {
		return interpreter.Value{}, fmt.Errorf("%s literal has %d lanes", t, len(lanes))
	}

	switch t.Repr {
	case interpreter.ReprI1Vector:
		return vectorOf(lanes, parseBool)
	case interpreter.ReprI8Vector:
		return vectorOf(lanes, intLane[int8](8))
	case interpreter.ReprI16Vector:
		return vectorOf(lanes, intLane[int16](16))
	case interpreter.ReprI32Vector:
		return vectorOf(lanes, intLane[int32](32))
	case interpreter.ReprI64Vector:
		return vectorOf(lanes, intLane[int64](64))
	case interpreter.ReprFloatVector:
		return vectorOf(lanes, func(s string) (float32, error) {
			x, err := strconv.ParseFloat(s, 32)
			return float32(x), err
		})
	case interpreter.ReprDoubleVector:
		return vectorOf(lanes, func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		})
	default:
		return interpreter.Value{}, fmt.Errorf("lanes given for non-vector type %s", t)
	}
}

func intLane[T int8 | int16 | int32 | int64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		x, err := strconv.ParseInt(s, 0, bits)
		return T(x), err
	}
}

func vectorOf[T interpreter.Lane](lanes []string, parse func(string) (T, error)) (interpreter.Value, error) {
	out := make([]T, len(lanes))
	for i, s := range lanes {
		x, err := parse(strings.TrimSpace(s))
		if err != nil {
			return interpreter.Value{}, fmt.Errorf("lane %d: %w", i, err)
		}
		out[i] = x
	}
	return interpreter.VectorValue(interpreter.NewVector(out...)), nil
}
