package interpreter

import (
	"errors"
	"fmt"
	"math"
)

// SlotKind is the storage kind of a frame slot. It is fixed when the slot is
// declared and never changes.
type SlotKind int

const (
	SlotIllegal SlotKind = iota
	SlotBool
	SlotByte
	SlotInt
	SlotLong
	SlotFloat
	SlotDouble
	SlotObject
)

func (k SlotKind) String() string {
	switch k {
	case SlotBool:
		return "bool"
	case SlotByte:
		return "byte"
	case SlotInt:
		return "int"
	case SlotLong:
		return "long"
	case SlotFloat:
		return "float"
	case SlotDouble:
		return "double"
	case SlotObject:
		return "object"
	default:
		return "illegal"
	}
}

// SlotRef identifies a slot within a frame descriptor.
type SlotRef int

// NoSlot is the slot reference of handlers that never write one.
const NoSlot SlotRef = -1

var (
	ErrSlotKind  = errors.New("slot kind mismatch")
	ErrSlotRange = errors.New("slot out of range")
)

// Descriptor is the shape of a frame: the ordered list of slots with their
// names and kinds. It is built during lowering and shared read-only by every
// activation of a function.
type Descriptor struct {
	names []string
	kinds []SlotKind
}

// NewDescriptor creates an empty frame shape.
func NewDescriptor() *Descriptor {
	return &Descriptor{}
}

// AddSlot declares a new slot and returns its reference.
func (d *Descriptor) AddSlot(name string, kind SlotKind) SlotRef {
	d.names = append(d.names, name)
	d.kinds = append(d.kinds, kind)
	return SlotRef(len(d.kinds) - 1)
}

// Find returns the slot declared under name.
func (d *Descriptor) Find(name string) (SlotRef, bool) {
	for i, n := range d.names {
		if n == name {
			return SlotRef(i), true
		}
	}
	return NoSlot, false
}

// Kind returns the kind of ref, or SlotIllegal if ref is not declared.
func (d *Descriptor) Kind(ref SlotRef) SlotKind {
	if ref < 0 || int(ref) >= len(d.kinds) {
		return SlotIllegal
	}
	return d.kinds[ref]
}

// Name returns the declared name of ref.
func (d *Descriptor) Name(ref SlotRef) string {
	if ref < 0 || int(ref) >= len(d.names) {
		return ""
	}
	return d.names[ref]
}

// Size returns the number of slots.
func (d *Descriptor) Size() int {
	return len(d.kinds)
}

// slot is one typed cell. Primitive kinds keep their bits in prim; object
// slots keep a reference in obj.
type slot struct {
	kind SlotKind
	prim uint64
	obj  any
}

// Frame is the slot storage of one activation. It is owned by the goroutine
// running that activation.
type Frame struct {
	desc  *Descriptor
	slots []slot
}

// NewFrame allocates a frame with one zeroed cell per descriptor slot.
func NewFrame(desc *Descriptor) *Frame {
	slots := make([]slot, desc.Size())
	for i := range slots {
		slots[i].kind = desc.kinds[i]
	}
	return &Frame{desc: desc, slots: slots}
}

// Descriptor returns the shape this frame was created from.
func (f *Frame) Descriptor() *Descriptor {
	return f.desc
}

// Setters do not check the slot kind; the lowering stage guarantees it.

func (f *Frame) SetBool(ref SlotRef, b bool) {
	var x uint64
	if b {
		x = 1
	}
	f.slots[ref].prim = x
}

func (f *Frame) SetByte(ref SlotRef, x int8) {
	f.slots[ref].prim = uint64(uint8(x))
}

func (f *Frame) SetInt(ref SlotRef, x int32) {
	f.slots[ref].prim = uint64(uint32(x))
}

func (f *Frame) SetLong(ref SlotRef, x int64) {
	f.slots[ref].prim = uint64(x)
}

func (f *Frame) SetFloat(ref SlotRef, x float32) {
	f.slots[ref].prim = uint64(math.Float32bits(x))
}

func (f *Frame) SetDouble(ref SlotRef, x float64) {
	f.slots[ref].prim = math.Float64bits(x)
}

// SetObject replaces the reference held by an object slot.
func (f *Frame) SetObject(ref SlotRef, x any) {
	f.slots[ref].obj = x
}

// object reads an object slot without checking.
func (f *Frame) object(ref SlotRef) any {
	return f.slots[ref].obj
}

func (f *Frame) checked(ref SlotRef, want SlotKind) (*slot, error) {
	if ref < 0 || int(ref) >= len(f.slots) {
		return nil, fmt.Errorf("%w: %d", ErrSlotRange, ref)
	}
	s := &f.slots[ref]
	if s.kind != want {
		return nil, fmt.Errorf("%w: slot %q is %s, read as %s", ErrSlotKind, f.desc.Name(ref), s.kind, want)
	}
	return s, nil
}

func (f *Frame) Bool(ref SlotRef) (bool, error) {
	s, err := f.checked(ref, SlotBool)
	if err != nil {
		return false, err
	}
	return s.prim != 0, nil
}

func (f *Frame) Byte(ref SlotRef) (int8, error) {
	s, err := f.checked(ref, SlotByte)
	if err != nil {
		return 0, err
	}
	return int8(s.prim), nil
}

func (f *Frame) Int(ref SlotRef) (int32, error) {
	s, err := f.checked(ref, SlotInt)
	if err != nil {
		return 0, err
	}
	return int32(s.prim), nil
}

func (f *Frame) Long(ref SlotRef) (int64, error) {
	s, err := f.checked(ref, SlotLong)
	if err != nil {
		return 0, err
	}
	return int64(s.prim), nil
}

func (f *Frame) Float(ref SlotRef) (float32, error) {
	s, err := f.checked(ref, SlotFloat)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(s.prim)), nil
}

func (f *Frame) Double(ref SlotRef) (float64, error) {
	s, err := f.checked(ref, SlotDouble)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(s.prim), nil
}

func (f *Frame) Object(ref SlotRef) (any, error) {
	s, err := f.checked(ref, SlotObject)
	if err != nil {
		return nil, err
	}
	return s.obj, nil
}

// Store writes v into ref using the slot kind of v's representation. Void
// values are ignored.
func (f *Frame) Store(ref SlotRef, v Value) error {
	kind := v.repr.SlotKind()
	if kind == SlotIllegal {
		return nil
	}
	if _, err := f.checked(ref, kind); err != nil {
		return err
	}
	switch kind {
	case SlotBool:
		f.SetBool(ref, v.AsBool())
	case SlotByte:
		f.SetByte(ref, v.AsI8())
	case SlotInt:
		f.SetInt(ref, v.AsI32())
	case SlotLong:
		f.SetLong(ref, v.AsI64())
	case SlotFloat:
		f.SetFloat(ref, v.AsFloat())
	case SlotDouble:
		f.SetDouble(ref, v.AsDouble())
	default:
		f.SetObject(ref, v.ref)
	}
	return nil
}

// Load reads ref back as a value of representation r.
func (f *Frame) Load(ref SlotRef, r Repr) (Value, error) {
	if r == ReprVoid {
		return Void(), nil
	}
	s, err := f.checked(ref, r.SlotKind())
	if err != nil {
		return Value{}, err
	}
	switch r {
	case ReprI1:
		return I1(s.prim != 0), nil
	case ReprI8:
		return I8(int8(s.prim)), nil
	case ReprI16:
		return I16(int16(s.prim)), nil
	case ReprI32:
		return I32(int32(s.prim)), nil
	case ReprI64:
		return I64(int64(s.prim)), nil
	case ReprFloat, ReprDouble:
		return Value{repr: r, bits: s.prim}, nil
	default:
		return Value{repr: r, ref: s.obj}, nil
	}
}
