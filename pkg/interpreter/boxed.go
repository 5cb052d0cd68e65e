package interpreter

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"math/bits"
)

// VarBit is an integer of arbitrary bit width. The value is kept reduced to
// Bits bits in two's complement and exposed as a signed number.
type VarBit struct {
	Bits int
	v    *big.Int
}

// NewVarBit truncates x to width bits.
func NewVarBit(width int, x *big.Int) *VarBit {
	vb := &VarBit{Bits: width, v: new(big.Int)}
	if width <= 0 {
		return vb
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(width))
	r := new(big.Int).Mod(x, mod)
	// top bit set means negative in two's complement
	if r.Bit(width-1) == 1 {
		r.Sub(r, mod)
	}
	vb.v = r
	return vb
}

// Int returns a copy of the signed value.
func (b *VarBit) Int() *big.Int {
	return new(big.Int).Set(b.v)
}

// Equal compares width and value.
func (b *VarBit) Equal(o *VarBit) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.Bits == o.Bits && b.v.Cmp(o.v) == 0
}

func (b *VarBit) String() string {
	return fmt.Sprintf("i%d %s", b.Bits, b.v.String())
}

const (
	fp80Bias    = 16383
	fp80ExpMask = 0x7fff
	fp80IntBit  = uint64(1) << 63
)

// Float80 is an x87 extended precision value in its 10 byte memory layout:
// a 64-bit mantissa with explicit integer bit followed by sign and 15-bit
// exponent, little endian.
type Float80 [10]byte

// NewFloat80 builds a value from its parts.
func NewFloat80(sign bool, exponent uint16, mantissa uint64) *Float80 {
	var f Float80
	binary.LittleEndian.PutUint64(f[:8], mantissa)
	se := exponent & fp80ExpMask
	if sign {
		se |= 0x8000
	}
	binary.LittleEndian.PutUint16(f[8:], se)
	return &f
}

// Float80FromFloat64 converts x exactly; every float64 is representable.
func Float80FromFloat64(x float64) *Float80 {
	b := math.Float64bits(x)
	sign := b>>63 != 0
	exp := int((b >> 52) & 0x7ff)
	frac := b & (1<<52 - 1)

	switch {
	case exp == 0 && frac == 0:
		return NewFloat80(sign, 0, 0)
	case exp == 0x7ff:
		return NewFloat80(sign, fp80ExpMask, fp80IntBit|frac<<11)
	case exp == 0:
		// subnormal float64, normal in 80 bits
		shift := bits.LeadingZeros64(frac)
		return NewFloat80(sign, uint16(-1011-shift+fp80Bias), frac<<uint(shift))
	default:
		return NewFloat80(sign, uint16(exp-1023+fp80Bias), fp80IntBit|frac<<11)
	}
}

// Sign reports whether the sign bit is set.
func (f *Float80) Sign() bool {
	return f[9]&0x80 != 0
}

// Exponent returns the biased 15-bit exponent.
func (f *Float80) Exponent() uint16 {
	return binary.LittleEndian.Uint16(f[8:]) & fp80ExpMask
}

// Mantissa returns the 64-bit mantissa including the integer bit.
func (f *Float80) Mantissa() uint64 {
	return binary.LittleEndian.Uint64(f[:8])
}

// Float64 rounds the value to the nearest float64.
func (f *Float80) Float64() float64 {
	exp := int(f.Exponent())
	mant := f.Mantissa()

	var r float64
	switch {
	case exp == 0 && mant == 0:
		r = 0
	case exp == fp80ExpMask:
		if mant<<1 == 0 {
			r = math.Inf(1)
		} else {
			return math.NaN()
		}
	case exp == 0:
		r = math.Ldexp(float64(mant), 1-fp80Bias-63)
	default:
		r = math.Ldexp(float64(mant), exp-fp80Bias-63)
	}
	if f.Sign() {
		r = math.Copysign(r, -1)
	}
	return r
}

func (f *Float80) String() string {
	return fmt.Sprintf("x86_fp80 %g", f.Float64())
}
