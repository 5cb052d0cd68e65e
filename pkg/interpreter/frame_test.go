package interpreter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorSlots(t *testing.T) {
	d := NewDescriptor()
	a := d.AddSlot("a", SlotInt)
	b := d.AddSlot("b", SlotObject)

	assert.Equal(t, SlotRef(0), a)
	assert.Equal(t, SlotRef(1), b)
	assert.Equal(t, 2, d.Size())
	assert.Equal(t, SlotObject, d.Kind(b))
	assert.Equal(t, SlotIllegal, d.Kind(7))
	assert.Equal(t, "b", d.Name(b))

	ref, ok := d.Find("a")
	assert.True(t, ok)
	assert.Equal(t, a, ref)

	_, ok = d.Find("missing")
	assert.False(t, ok)
}

func TestFrameReadsCheckKind(t *testing.T) {
	d := NewDescriptor()
	i := d.AddSlot("i", SlotInt)
	f := NewFrame(d)

	_, err := f.Long(i)
	assert.ErrorIs(t, err, ErrSlotKind)

	_, err = f.Object(i)
	assert.ErrorIs(t, err, ErrSlotKind)

	_, err = f.Int(5)
	assert.ErrorIs(t, err, ErrSlotRange)

	_, err = f.Int(NoSlot)
	assert.ErrorIs(t, err, ErrSlotRange)
}

func TestFramePrimitiveRoundTrip(t *testing.T) {
	d := NewDescriptor()
	b := d.AddSlot("b", SlotBool)
	y := d.AddSlot("y", SlotByte)
	i := d.AddSlot("i", SlotInt)
	l := d.AddSlot("l", SlotLong)
	fl := d.AddSlot("f", SlotFloat)
	db := d.AddSlot("d", SlotDouble)
	f := NewFrame(d)

	f.SetBool(b, true)
	f.SetByte(y, -128)
	f.SetInt(i, math.MinInt32)
	f.SetLong(l, math.MaxInt64)
	f.SetFloat(fl, -2.5)
	f.SetDouble(db, math.Inf(-1))

	gb, err := f.Bool(b)
	require.NoError(t, err)
	assert.True(t, gb)

	gy, err := f.Byte(y)
	require.NoError(t, err)
	assert.Equal(t, int8(-128), gy)

	gi, err := f.Int(i)
	require.NoError(t, err)
	assert.Equal(t, int32(math.MinInt32), gi)

	gl, err := f.Long(l)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), gl)

	gf, err := f.Float(fl)
	require.NoError(t, err)
	assert.Equal(t, float32(-2.5), gf)

	gd, err := f.Double(db)
	require.NoError(t, err)
	assert.True(t, math.IsInf(gd, -1))
}

func TestFrameStoreLoad(t *testing.T) {
	d := NewDescriptor()
	i := d.AddSlot("i", SlotInt)
	o := d.AddSlot("o", SlotObject)
	f := NewFrame(d)

	require.NoError(t, f.Store(i, I16(-2)))
	v, err := f.Load(i, ReprI16)
	require.NoError(t, err)
	assert.True(t, v.Equal(I16(-2)))

	vec := NewVector[float32](1, 2)
	require.NoError(t, f.Store(o, VectorValue(vec)))
	v, err = f.Load(o, ReprFloatVector)
	require.NoError(t, err)
	assert.Same(t, vec, v.Ref())

	assert.ErrorIs(t, f.Store(i, I64(1)), ErrSlotKind)
	require.NoError(t, f.Store(i, Void()))

	v, err = f.Load(NoSlot, ReprVoid)
	require.NoError(t, err)
	assert.Equal(t, ReprVoid, v.Repr())
}

func TestReprSlotKinds(t *testing.T) {
	tests := map[Repr]SlotKind{
		ReprI1:           SlotBool,
		ReprI8:           SlotByte,
		ReprI16:          SlotInt,
		ReprI32:          SlotInt,
		ReprI64:          SlotLong,
		ReprIVarBit:      SlotObject,
		ReprFloat:        SlotFloat,
		ReprDouble:       SlotDouble,
		ReprX86FP80:      SlotObject,
		ReprAddress:      SlotObject,
		ReprFunction:     SlotObject,
		ReprI1Vector:     SlotObject,
		ReprDoubleVector: SlotObject,
		ReprStruct:       SlotObject,
		ReprVoid:         SlotIllegal,
		Repr(-1):         SlotIllegal,
	}
	for r, want := range tests {
		assert.Equal(t, want, r.SlotKind(), "repr %s", r)
	}
}
