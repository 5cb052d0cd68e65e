package interpreter

import "fmt"

// BrNode jumps to Target unconditionally.
type BrNode struct {
	Target int
}

func (b *BrNode) Successor(*Interpreter, *Frame) (Outcome, error) {
	return Branch(b.Target), nil
}

func (b *BrNode) String() string {
	return fmt.Sprintf("br %d", b.Target)
}

// CondBrNode reads a bool slot and jumps to Then when it is set, Else
// otherwise.
type CondBrNode struct {
	Cond SlotRef
	Then int
	Else int
}

func (c *CondBrNode) Successor(_ *Interpreter, f *Frame) (Outcome, error) {
	b, err := f.Bool(c.Cond)
	if err != nil {
		return Outcome{}, err
	}
	if b {
		return Branch(c.Then), nil
	}
	return Branch(c.Else), nil
}

func (c *CondBrNode) String() string {
	return fmt.Sprintf("br %%%d, %d, %d", c.Cond, c.Then, c.Else)
}

// UnreachableNode fails the activation when reached.
type UnreachableNode struct{}

func (UnreachableNode) Successor(*Interpreter, *Frame) (Outcome, error) {
	return Outcome{}, ErrUnreachable
}

func (UnreachableNode) String() string {
	return "unreachable"
}
