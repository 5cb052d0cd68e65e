package interpreter

import "fmt"

// Expr computes a value inside an activation.
type Expr interface {
	Eval(it *Interpreter, f *Frame) (Value, error)
}

// Instr is a non-terminating block instruction.
type Instr interface {
	Execute(it *Interpreter, f *Frame) error
}

// Const yields a fixed value.
type Const struct {
	V Value
}

func (c Const) Eval(*Interpreter, *Frame) (Value, error) {
	return c.V, nil
}

// Local reads a slot of the current frame.
type Local struct {
	Slot SlotRef
	Repr Repr
}

func (l Local) Eval(_ *Interpreter, f *Frame) (Value, error) {
	return f.Load(l.Slot, l.Repr)
}

// CallExpr runs Callee in a new activation and yields its return value.
type CallExpr struct {
	Callee *Function
}

func (c CallExpr) Eval(it *Interpreter, _ *Frame) (Value, error) {
	return it.Call(c.Callee)
}

// AllocExpr materialises Bytes in the heap and yields them as an aggregate.
type AllocExpr struct {
	Bytes []byte
}

func (a AllocExpr) Eval(it *Interpreter, _ *Frame) (Value, error) {
	addr := it.heap.Alloc(int64(len(a.Bytes)))
	if err := it.heap.Write(addr, a.Bytes); err != nil {
		return Value{}, err
	}
	return StructValue(addr), nil
}

// SetNode stores the value of an expression into a slot.
type SetNode struct {
	Slot  SlotRef
	Value Expr
}

func (s *SetNode) Execute(it *Interpreter, f *Frame) error {
	v, err := s.Value.Eval(it, f)
	if err != nil {
		return err
	}
	if err := f.Store(s.Slot, v); err != nil {
		return fmt.Errorf("set %%%d: %w", s.Slot, err)
	}
	return nil
}

func (s *SetNode) String() string {
	return fmt.Sprintf("set %%%d", s.Slot)
}
