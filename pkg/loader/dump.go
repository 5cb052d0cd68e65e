package loader

import (
	"fmt"
	"io"

	"irvm/pkg/interpreter"
)

// Dump writes a plain text listing of the lowered program: per function the
// frame slots, blocks, instructions and terminators.
func (p *Program) Dump(w io.Writer) error {
	for i, fn := range p.Functions {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := p.dumpFunction(w, fn); err != nil {
			return err
		}
	}
	return nil
}

func (p *Program) dumpFunction(w io.Writer, fn *interpreter.Function) error {
	ret, _ := p.ReturnType(fn.Name)
	lines := []string{fmt.Sprintf("func @%s -> %s", fn.Name, ret)}

	for ref := interpreter.SlotRef(0); int(ref) < fn.Frame.Size(); ref++ {
		lines = append(lines, fmt.Sprintf("  slot %%%d %s %s", ref, fn.Frame.Name(ref), fn.Frame.Kind(ref)))
	}
	for i, b := range fn.Blocks {
		lines = append(lines, fmt.Sprintf("  block %d %s", i, b.Name))
		for _, in := range b.Instrs {
			lines = append(lines, fmt.Sprintf("    %v", in))
		}
		lines = append(lines, fmt.Sprintf("    %v", b.Term))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
