package interpreter

import (
	"errors"
	"fmt"
)

var ErrBadTerminator = errors.New("bad terminator")

// retStore writes a return value of one representation into the return slot.
type retStore func(n *RetNode, f *Frame, v Value)

// retStores holds one store routine per representation. NewRet picks the
// routine once, so Execute never inspects the value's representation.
var retStores = [numReprs]retStore{
	ReprI1:           storeI1,
	ReprI8:           storeI8,
	ReprI16:          storeI16,
	ReprI32:          storeI32,
	ReprI64:          storeI64,
	ReprIVarBit:      storeObject,
	ReprFloat:        storeFloat,
	ReprDouble:       storeDouble,
	ReprX86FP80:      storeObject,
	ReprAddress:      storeObject,
	ReprFunction:     storeObject,
	ReprI1Vector:     storeObject,
	ReprI8Vector:     storeObject,
	ReprI16Vector:    storeObject,
	ReprI32Vector:    storeObject,
	ReprI64Vector:    storeObject,
	ReprFloatVector:  storeObject,
	ReprDoubleVector: storeObject,
	ReprStruct:       storeStruct,
	ReprVoid:         storeVoid,
}

func storeI1(n *RetNode, f *Frame, v Value) {
	f.SetBool(n.slot, v.bits != 0)
}

func storeI8(n *RetNode, f *Frame, v Value) {
	f.SetByte(n.slot, int8(v.bits))
}

// storeI16 sign-extends into the 32-bit slot: 0x7fff reads back as
// 0x00007fff and -0x8000 as 0xffff8000.
func storeI16(n *RetNode, f *Frame, v Value) {
	f.SetInt(n.slot, int32(int16(v.bits)))
}

func storeI32(n *RetNode, f *Frame, v Value) {
	f.SetInt(n.slot, int32(v.bits))
}

func storeI64(n *RetNode, f *Frame, v Value) {
	f.SetLong(n.slot, int64(v.bits))
}

func storeFloat(n *RetNode, f *Frame, v Value) {
	f.SetFloat(n.slot, v.AsFloat())
}

func storeDouble(n *RetNode, f *Frame, v Value) {
	f.SetDouble(n.slot, v.AsDouble())
}

// storeObject keeps the boxed value by reference; the slot becomes its owner.
func storeObject(n *RetNode, f *Frame, v Value) {
	f.SetObject(n.slot, v.ref)
}

// storeStruct copies the aggregate into the caller's buffer whose address
// the calling convention left in the return slot.
func storeStruct(n *RetNode, f *Frame, v Value) {
	dst, _ := f.object(n.slot).(Address)
	src, _ := v.ref.(Address)
	n.mem.Copy(dst, src, n.size)
}

func storeVoid(*RetNode, *Frame, Value) {}

// RetNode is the return terminator of a function. One node exists per return
// site; it is immutable after construction and safe to share between
// goroutines that each own their frame.
type RetNode struct {
	repr  Repr
	slot  SlotRef
	size  int64
	mem   Memory
	value Expr
	store retStore
}

// RetOption configures a RetNode.
type RetOption func(*RetNode)

// WithStruct configures the aggregate size and the memory the copy goes
// through. Required for ReprStruct.
func WithStruct(size int64, mem Memory) RetOption {
	return func(n *RetNode) {
		n.size = size
		n.mem = mem
	}
}

// NewRet builds the return terminator for representation repr writing into
// slot. value computes the returned value and may be nil only for void.
func NewRet(repr Repr, slot SlotRef, value Expr, opts ...RetOption) (*RetNode, error) {
	if !repr.Valid() {
		return nil, fmt.Errorf("%w: unknown representation %s", ErrBadTerminator, repr)
	}

	n := &RetNode{repr: repr, slot: slot, value: value, store: retStores[repr]}
	for _, o := range opts {
		o(n)
	}

	if repr == ReprVoid {
		n.slot = NoSlot
		return n, nil
	}
	if value == nil {
		return nil, fmt.Errorf("%w: %s return without a value", ErrBadTerminator, repr)
	}
	if slot < 0 {
		return nil, fmt.Errorf("%w: %s return without a slot", ErrBadTerminator, repr)
	}
	if repr == ReprStruct {
		if n.size < 0 {
			return nil, fmt.Errorf("%w: negative struct size %d", ErrBadTerminator, n.size)
		}
		if n.mem == nil {
			return nil, fmt.Errorf("%w: struct return without memory", ErrBadTerminator)
		}
	}
	return n, nil
}

// NewStructRet is NewRet for an aggregate of size bytes.
func NewStructRet(slot SlotRef, size int64, mem Memory, value Expr) (*RetNode, error) {
	return NewRet(ReprStruct, slot, value, WithStruct(size, mem))
}

// NewVoidRet builds a return that writes nothing.
func NewVoidRet() *RetNode {
	n, _ := NewRet(ReprVoid, NoSlot, nil)
	return n
}

// Repr returns the representation this node returns.
func (n *RetNode) Repr() Repr {
	return n.repr
}

// Slot returns the return slot, NoSlot for void.
func (n *RetNode) Slot() SlotRef {
	return n.slot
}

// StructSize returns the aggregate size, 0 for non-aggregates.
func (n *RetNode) StructSize() int64 {
	return n.size
}

// Execute writes v into the return slot and ends the activation. v must have
// the node's representation; this is not checked.
func (n *RetNode) Execute(f *Frame, v Value) Outcome {
	n.store(n, f, v)
	return ReturnFromFunction
}

// Successor evaluates the return expression and executes the return.
func (n *RetNode) Successor(it *Interpreter, f *Frame) (Outcome, error) {
	if n.value == nil {
		return n.Execute(f, Void()), nil
	}
	v, err := n.value.Eval(it, f)
	if err != nil {
		return Outcome{}, err
	}
	return n.Execute(f, v), nil
}

func (n *RetNode) String() string {
	switch n.repr {
	case ReprVoid:
		return "ret void"
	case ReprStruct:
		return fmt.Sprintf("ret struct<%d> -> %%%d", n.size, n.slot)
	default:
		return fmt.Sprintf("ret %s -> %%%d", n.repr, n.slot)
	}
}
