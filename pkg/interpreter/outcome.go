package interpreter

import "fmt"

// ReturnIndex is the integer encoding of ReturnFromFunction. Block indices
// are never negative, so it cannot name a block.
const ReturnIndex = -1

// Outcome is what a terminator tells the block dispatcher: either continue
// with another block of the same function, or leave the activation.
type Outcome struct {
	ret   bool
	block int
}

// ReturnFromFunction ends the current activation.
var ReturnFromFunction = Outcome{ret: true, block: ReturnIndex}

// Branch continues at block i of the current function.
func Branch(i int) Outcome {
	return Outcome{block: i}
}

// IsReturn reports whether the activation is finished.
func (o Outcome) IsReturn() bool {
	return o.ret
}

// Block returns the successor block index. Only meaningful when !IsReturn().
func (o Outcome) Block() int {
	return o.block
}

// Index returns the outcome as a successor index, ReturnIndex for returns.
func (o Outcome) Index() int {
	if o.ret {
		return ReturnIndex
	}
	return o.block
}

func (o Outcome) String() string {
	if o.ret {
		return "return"
	}
	return fmt.Sprintf("br %d", o.block)
}

// Terminator ends a basic block and decides where control goes next.
type Terminator interface {
	Successor(it *Interpreter, f *Frame) (Outcome, error)
}
