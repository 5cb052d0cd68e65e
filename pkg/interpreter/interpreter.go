package interpreter

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"irvm/pkg/stack"
)

// Function is a lowered IR function: its frame shape, the slot its return
// value is delivered in, and its basic blocks. Block 0 is the entry.
type Function struct {
	Name       string
	Returns    Repr
	StructSize int64 // bytes, only for ReprStruct
	Frame      *Descriptor
	RetSlot    SlotRef
	Blocks     []*Block
}

// Block is a basic block: straight-line instructions and one terminator.
type Block struct {
	Name   string
	Instrs []Instr
	Term   Terminator
}

// activation is one live call of a function.
type activation struct {
	id    uuid.UUID
	fn    *Function
	frame *Frame
	block int
}

// Interpreter executes lowered functions block by block
type Interpreter struct {
	heap  *Heap
	funcs map[string]*Function

	stack *stack.Stack[*activation] // call stack

	maxSteps int // maximum blocks executed (0 = unlimited)
	steps    int // blocks executed
	maxDepth int // maximum call depth (0 = unlimited)
}

type Option func(*Interpreter)

// WithHeap sets the heap aggregates and allocations live in
func WithHeap(h *Heap) Option {
	return func(i *Interpreter) { i.heap = h }
}

// WithMaxSteps sets a maximum number of executed blocks before returning ErrMaxStepsExceeded
func WithMaxSteps(n int) Option {
	return func(i *Interpreter) { i.maxSteps = n }
}

// WithMaxDepth sets a maximum call depth before returning ErrStackOverflow
func WithMaxDepth(n int) Option {
	return func(i *Interpreter) { i.maxDepth = n }
}

// NewInterpreter creates a new Interpreter over a set of functions
func NewInterpreter(funcs []*Function, opts ...Option) *Interpreter {
	it := &Interpreter{
		funcs: make(map[string]*Function, len(funcs)),
		stack: stack.NewStack[*activation](),
	}
	for _, fn := range funcs {
		it.funcs[fn.Name] = fn
	}

	for _, o := range opts {
		o(it)
	}

	if it.heap == nil {
		it.heap = NewHeap()
	}

	return it
}

// Heap returns the interpreter heap
func (i *Interpreter) Heap() *Heap {
	return i.heap
}

// Function looks a function up by name
func (i *Interpreter) Function(name string) (*Function, bool) {
	fn, ok := i.funcs[name]
	return fn, ok
}

// Steps returns the number of blocks executed since the last Reset
func (i *Interpreter) Steps() int {
	return i.steps
}

// Depth returns the current call depth
func (i *Interpreter) Depth() int {
	return i.stack.Size()
}

// Backtrace returns the names of the live activations, innermost first
func (i *Interpreter) Backtrace() []string {
	acts := i.stack.Array()
	names := make([]string, 0, len(acts))
	for k := len(acts) - 1; k >= 0; k-- {
		names = append(names, acts[k].fn.Name)
	}
	return names
}

// Reset clears the call stack and step counter. The heap is kept.
func (i *Interpreter) Reset() {
	i.stack.Clear()
	i.steps = 0
}

// CallByName calls the named function
func (i *Interpreter) CallByName(name string) (Value, error) {
	fn, ok := i.funcs[name]
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return i.Call(fn)
}

// Call runs fn in a new activation and returns the value left in its return
// slot. For aggregates the caller side buffer is allocated here and its
// address bound to the return slot before the body runs; the returned value
// refers to that buffer.
func (i *Interpreter) Call(fn *Function) (Value, error) {
	if i.maxDepth > 0 && i.stack.Size() >= i.maxDepth {
		return Value{}, fmt.Errorf("%w: depth %d calling %s", ErrStackOverflow, i.stack.Size(), fn.Name)
	}

	frame := NewFrame(fn.Frame)
	if fn.Returns == ReprStruct {
		frame.SetObject(fn.RetSlot, i.heap.Alloc(fn.StructSize))
	}

	act := &activation{id: uuid.New(), fn: fn, frame: frame}
	i.stack.Push(act)
	defer i.stack.Pop()

	log.Debug("Enter function", "fn", fn.Name, "activation", act.id, "depth", i.stack.Size())

	if err := i.run(act); err != nil {
		log.Debug("Activation failed", "fn", fn.Name, "activation", act.id, "backtrace", i.Backtrace())
		return Value{}, fmt.Errorf("%s: %w", fn.Name, err)
	}

	v, err := frame.Load(fn.RetSlot, fn.Returns)
	if err != nil {
		return Value{}, fmt.Errorf("%s: reading return slot: %w", fn.Name, err)
	}

	log.Debug("Return from function", "fn", fn.Name, "activation", act.id, "value", v)
	return v, nil
}

// run is the block dispatcher: execute a block, ask its terminator for the
// successor, and stop on ReturnFromFunction.
func (i *Interpreter) run(act *activation) error {
	fn := act.fn
	if len(fn.Blocks) == 0 {
		return fmt.Errorf("%w: function has no blocks", ErrBadSuccessor)
	}

	for {
		if i.maxSteps > 0 && i.steps >= i.maxSteps {
			return ErrMaxStepsExceeded
		}
		i.steps++

		b := fn.Blocks[act.block]
		for _, in := range b.Instrs {
			if err := in.Execute(i, act.frame); err != nil {
				return fmt.Errorf("block %s: %w", b.Name, err)
			}
		}

		out, err := b.Term.Successor(i, act.frame)
		if err != nil {
			return fmt.Errorf("block %s: %w", b.Name, err)
		}
		if out.IsReturn() {
			return nil
		}

		next := out.Block()
		if next < 0 || next >= len(fn.Blocks) {
			return fmt.Errorf("%w: block %s branches to %d", ErrBadSuccessor, b.Name, next)
		}
		act.block = next
	}
}

var (
	ErrMaxStepsExceeded = errors.New("maximum steps exceeded")
	ErrStackOverflow    = errors.New("call stack overflow")
	ErrBadSuccessor     = errors.New("bad successor")
	ErrUnreachable      = errors.New("unreachable executed")
	ErrUnknownFunction  = errors.New("unknown function")
)
