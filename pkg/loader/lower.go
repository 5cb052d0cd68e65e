package loader

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"irvm/pkg/interpreter"
)

var ErrLower = errors.New("lowering failed")

// Program is a lowered module.
type Program struct {
	Functions []*interpreter.Function
	types     map[string]Type // return type per function
}

// Function returns the lowered function called name.
func (p *Program) Function(name string) (*interpreter.Function, bool) {
	for _, fn := range p.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return nil, false
}

// ReturnType returns the declared return type of the named function.
func (p *Program) ReturnType(name string) (Type, bool) {
	t, ok := p.types[name]
	return t, ok
}

// funcScope is the per-function state of lowering.
type funcScope struct {
	fn     *interpreter.Function
	ret    Type
	locals map[string]Type
	blocks map[string]int
}

type lowerer struct {
	mem    interpreter.Memory
	funcs  map[string]*interpreter.Function
	scopes map[string]*funcScope
}

// Lower turns a module into executable functions. Every return site gets the
// one return handler matching its function's declared return type; aggregate
// returns copy through mem.
func Lower(m *Module, mem interpreter.Memory) (*Program, error) {
	l := &lowerer{
		mem:    mem,
		funcs:  make(map[string]*interpreter.Function),
		scopes: make(map[string]*funcScope),
	}
	p := &Program{types: make(map[string]Type)}

	// declare all functions first so calls and func constants resolve
	for _, def := range m.Functions {
		sc, err := l.declare(def)
		if err != nil {
			return nil, fmt.Errorf("%w: function %s: %w", ErrLower, def.Name, err)
		}
		p.Functions = append(p.Functions, sc.fn)
		p.types[def.Name] = sc.ret
	}

	for _, def := range m.Functions {
		if err := l.body(def); err != nil {
			return nil, fmt.Errorf("%w: function %s: %w", ErrLower, def.Name, err)
		}
		log.Debug("Lowered function", "fn", def.Name, "returns", p.types[def.Name], "blocks", len(def.Blocks))
	}

	return p, nil
}

func (l *lowerer) declare(def FunctionDef) (*funcScope, error) {
	if def.Name == "" {
		return nil, errors.New("missing name")
	}
	if _, dup := l.funcs[def.Name]; dup {
		return nil, errors.New("declared twice")
	}

	ret, err := ParseType(def.Returns)
	if err != nil {
		return nil, err
	}

	fn := &interpreter.Function{
		Name:       def.Name,
		Returns:    ret.Repr,
		StructSize: ret.Size,
		Frame:      interpreter.NewDescriptor(),
		RetSlot:    interpreter.NoSlot,
	}
	if ret.Repr != interpreter.ReprVoid {
		fn.RetSlot = fn.Frame.AddSlot("%ret", ret.Repr.SlotKind())
	}

	sc := &funcScope{fn: fn, ret: ret, locals: make(map[string]Type), blocks: make(map[string]int)}
	for _, loc := range def.Locals {
		t, err := ParseType(loc.Type)
		if err != nil {
			return nil, fmt.Errorf("local %s: %w", loc.Name, err)
		}
		if t.Repr == interpreter.ReprVoid || t.Repr == interpreter.ReprStruct {
			return nil, fmt.Errorf("local %s: %s cannot be held in a slot", loc.Name, t)
		}
		if _, dup := sc.locals[loc.Name]; dup || loc.Name == "%ret" {
			return nil, fmt.Errorf("local %s declared twice", loc.Name)
		}
		sc.locals[loc.Name] = t
		fn.Frame.AddSlot(loc.Name, t.Repr.SlotKind())
	}

	for i, b := range def.Blocks {
		if _, dup := sc.blocks[b.Name]; dup {
			return nil, fmt.Errorf("block %s declared twice", b.Name)
		}
		sc.blocks[b.Name] = i
	}

	l.funcs[def.Name] = fn
	l.scopes[def.Name] = sc
	return sc, nil
}

func (l *lowerer) body(def FunctionDef) error {
	sc := l.scopes[def.Name]
	if len(def.Blocks) == 0 {
		return errors.New("no blocks")
	}

	for _, bd := range def.Blocks {
		b := &interpreter.Block{Name: bd.Name}

		for _, in := range bd.Instrs {
			t, ok := sc.locals[in.Set]
			if !ok {
				return fmt.Errorf("block %s: set of unknown local %q", bd.Name, in.Set)
			}
			e, err := l.expr(sc, in.Value, t)
			if err != nil {
				return fmt.Errorf("block %s: set %s: %w", bd.Name, in.Set, err)
			}
			ref, _ := sc.fn.Frame.Find(in.Set)
			b.Instrs = append(b.Instrs, &interpreter.SetNode{Slot: ref, Value: e})
		}

		term, err := l.term(sc, bd.Term)
		if err != nil {
			return fmt.Errorf("block %s: %w", bd.Name, err)
		}
		b.Term = term

		sc.fn.Blocks = append(sc.fn.Blocks, b)
	}
	return nil
}

func (l *lowerer) term(sc *funcScope, td TermDef) (interpreter.Terminator, error) {
	set := 0
	for _, present := range []bool{td.Ret != nil, td.Br != "", td.Cond != nil, td.Unreachable} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("terminator needs exactly one of ret, br, cond, unreachable (has %d)", set)
	}

	switch {
	case td.Ret != nil:
		return l.ret(sc, *td.Ret)
	case td.Br != "":
		target, ok := sc.blocks[td.Br]
		if !ok {
			return nil, fmt.Errorf("br to unknown block %q", td.Br)
		}
		return &interpreter.BrNode{Target: target}, nil
	case td.Cond != nil:
		t, ok := sc.locals[td.Cond.If]
		if !ok || t.Repr != interpreter.ReprI1 {
			return nil, fmt.Errorf("cond on %q, which is not an i1 local", td.Cond.If)
		}
		then, ok := sc.blocks[td.Cond.Then]
		if !ok {
			return nil, fmt.Errorf("cond to unknown block %q", td.Cond.Then)
		}
		els, ok := sc.blocks[td.Cond.Else]
		if !ok {
			return nil, fmt.Errorf("cond to unknown block %q", td.Cond.Else)
		}
		ref, _ := sc.fn.Frame.Find(td.Cond.If)
		return &interpreter.CondBrNode{Cond: ref, Then: then, Else: els}, nil
	default:
		return interpreter.UnreachableNode{}, nil
	}
}

func (l *lowerer) ret(sc *funcScope, ed ExprDef) (interpreter.Terminator, error) {
	if sc.ret.Repr == interpreter.ReprVoid {
		if exprFields(ed) != 0 {
			return nil, errors.New("ret with a value in a void function")
		}
		return interpreter.NewVoidRet(), nil
	}
	if exprFields(ed) == 0 {
		return nil, fmt.Errorf("ret without a value in a function returning %s", sc.ret)
	}

	e, err := l.expr(sc, ed, sc.ret)
	if err != nil {
		return nil, fmt.Errorf("ret: %w", err)
	}
	n, err := interpreter.NewRet(sc.ret.Repr, sc.fn.RetSlot, e, interpreter.WithStruct(sc.ret.Size, l.mem))
	if err != nil {
		return nil, err
	}
	return n, nil
}

func exprFields(ed ExprDef) int {
	n := 0
	for _, present := range []bool{ed.Const != nil, ed.Lanes != nil, ed.Local != "", ed.Call != "", ed.Func != "", ed.Bytes != nil} {
		if present {
			n++
		}
	}
	return n
}

// expr lowers ed, which must produce a value of type want.
func (l *lowerer) expr(sc *funcScope, ed ExprDef, want Type) (interpreter.Expr, error) {
	if n := exprFields(ed); n != 1 {
		return nil, fmt.Errorf("expression needs exactly one of const, lanes, local, call, func, bytes (has %d)", n)
	}

	switch {
	case ed.Const != nil:
		v, err := parseConst(want, *ed.Const)
		if err != nil {
			return nil, err
		}
		return interpreter.Const{V: v}, nil

	case ed.Lanes != nil:
		v, err := parseLanes(want, ed.Lanes)
		if err != nil {
			return nil, err
		}
		return interpreter.Const{V: v}, nil

	case ed.Local != "":
		t, ok := sc.locals[ed.Local]
		if !ok {
			return nil, fmt.Errorf("unknown local %q", ed.Local)
		}
		if t != want {
			return nil, fmt.Errorf("local %s is %s, want %s", ed.Local, t, want)
		}
		ref, _ := sc.fn.Frame.Find(ed.Local)
		return interpreter.Local{Slot: ref, Repr: t.Repr}, nil

	case ed.Call != "":
		callee, ok := l.funcs[ed.Call]
		if !ok {
			return nil, fmt.Errorf("call of unknown function %q", ed.Call)
		}
		if got := l.scopes[ed.Call].ret; got != want {
			return nil, fmt.Errorf("%s returns %s, want %s", ed.Call, got, want)
		}
		return interpreter.CallExpr{Callee: callee}, nil

	case ed.Func != "":
		target, ok := l.funcs[ed.Func]
		if !ok {
			return nil, fmt.Errorf("reference to unknown function %q", ed.Func)
		}
		if want.Repr != interpreter.ReprFunction {
			return nil, fmt.Errorf("function reference where %s is wanted", want)
		}
		return interpreter.Const{V: interpreter.FunctionValue(target)}, nil

	default:
		if want.Repr != interpreter.ReprStruct || int64(len(ed.Bytes)) != want.Size {
			return nil, fmt.Errorf("%d bytes where %s is wanted", len(ed.Bytes), want)
		}
		data := make([]byte, len(ed.Bytes))
		for i, b := range ed.Bytes {
			if b < 0 || b > 255 {
				return nil, fmt.Errorf("byte %d out of range: %d", i, b)
			}
			data[i] = byte(b)
		}
		return interpreter.AllocExpr{Bytes: data}, nil
	}
}
