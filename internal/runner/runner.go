package runner

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"irvm/pkg/color"
	"irvm/pkg/interpreter"
	"irvm/pkg/loader"
)

const DefaultEntry = "main"

var ErrNoEntry = errors.New("entry function not found")

type Options struct {
	Verbose  bool   // Enable debug logging
	NoColor  bool   // Disable colored output
	LogLevel string // Log level when not verbose
	File     string // Path to the module file
	Entry    string // Function to call, DefaultEntry when empty
	MaxSteps int    // Block budget, 0 for none
	MaxDepth int    // Call depth budget, 0 for none
	Dump     bool   // Print the lowered program before running it
}

// Run loads the module, lowers it, calls the entry function and writes its
// return value to w.
func (opts *Options) Run(w io.Writer) error {
	log.Info("Loading module", "file", opts.File)

	m, err := loader.Load(opts.File)
	if err != nil {
		return err
	}

	heap := interpreter.NewHeap()
	p, err := loader.Lower(m, heap)
	if err != nil {
		return err
	}

	if opts.Dump {
		fmt.Fprintln(w, color.GreenText("=== Lowered Program ==="))
		if err := p.Dump(w); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	entry := opts.Entry
	if entry == "" {
		entry = DefaultEntry
	}
	fn, ok := p.Function(entry)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoEntry, entry)
	}

	it := interpreter.NewInterpreter(p.Functions,
		interpreter.WithHeap(heap),
		interpreter.WithMaxSteps(opts.MaxSteps),
		interpreter.WithMaxDepth(opts.MaxDepth),
	)

	v, err := it.Call(fn)
	if err != nil {
		return fmt.Errorf("interpretation failed: %w", err)
	}
	log.Info("Finished", "fn", entry, "steps", it.Steps(), "heap", humanize.Bytes(uint64(heap.Size())))

	fmt.Fprintf(w, "%s %s\n", color.BoldText("@"+entry), color.GreenText(v.String()))

	if v.Repr() == interpreter.ReprStruct {
		data, err := heap.Read(v.AsAddress(), fn.StructSize)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s %s\n", color.GrayText("bytes"), fmt.Sprintf("% x", data))
	}

	return nil
}
