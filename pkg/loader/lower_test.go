package loader

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irvm/pkg/interpreter"
)

const returnsModule = `
functions:
  - name: answer
    returns: i32
    locals:
      - {name: x, type: i32}
    blocks:
      - name: entry
        instrs:
          - {set: x, value: {const: "42"}}
        term: {ret: {local: x}}

  - name: narrow
    returns: i16
    blocks:
      - name: entry
        term: {ret: {const: "-32768"}}

  - name: sign
    returns: i8
    locals:
      - {name: neg, type: i1}
    blocks:
      - name: entry
        instrs:
          - {set: neg, value: {const: "true"}}
        term: {cond: {if: neg, then: minus, else: plus}}
      - name: plus
        term: {ret: {const: "1"}}
      - name: minus
        term: {ret: {const: "-1"}}

  - name: lanes
    returns: <4 x i32>
    blocks:
      - name: entry
        term: {ret: {lanes: [1, 2, 3, 4]}}

  - name: pair
    returns: struct<4>
    blocks:
      - name: entry
        term: {ret: {bytes: [9, 8, 7, 6]}}

  - name: forward
    returns: struct<4>
    blocks:
      - name: entry
        term: {ret: {call: pair}}

  - name: self
    returns: func
    blocks:
      - name: entry
        term: {ret: {func: self}}

  - name: wide
    returns: i128
    blocks:
      - name: entry
        term: {ret: {const: "-170141183460469231731687303715884105728"}}

  - name: ext
    returns: x86_fp80
    blocks:
      - name: entry
        term: {ret: {const: "2.5"}}

  - name: nothing
    returns: void
    blocks:
      - name: entry
        term: {br: exit}
      - name: exit
        term: {ret: {}}
`

func lowerString(t *testing.T, src string) (*Program, *interpreter.Heap) {
	t.Helper()
	m, err := Parse([]byte(src))
	require.NoError(t, err)

	heap := interpreter.NewHeap()
	p, err := Lower(m, heap)
	require.NoError(t, err)
	return p, heap
}

func TestLowerAndRun(t *testing.T) {
	p, heap := lowerString(t, returnsModule)
	it := interpreter.NewInterpreter(p.Functions, interpreter.WithHeap(heap))

	v, err := it.CallByName("answer")
	require.NoError(t, err)
	assert.True(t, v.Equal(interpreter.I32(42)))

	v, err = it.CallByName("narrow")
	require.NoError(t, err)
	assert.Equal(t, int16(math.MinInt16), v.AsI16())

	v, err = it.CallByName("sign")
	require.NoError(t, err)
	assert.Equal(t, int8(-1), v.AsI8())

	v, err = it.CallByName("lanes")
	require.NoError(t, err)
	vec, ok := v.Ref().(*interpreter.I32Vector)
	require.True(t, ok)
	assert.Equal(t, []int32{1, 2, 3, 4}, vec.Lanes())

	v, err = it.CallByName("forward")
	require.NoError(t, err)
	got, err := heap.Read(v.AsAddress(), 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8, 7, 6}, got)

	self, ok := p.Function("self")
	require.True(t, ok)
	v, err = it.Call(self)
	require.NoError(t, err)
	assert.Same(t, self, v.Ref())

	v, err = it.CallByName("wide")
	require.NoError(t, err)
	assert.Equal(t, "i128 -170141183460469231731687303715884105728", v.String())

	v, err = it.CallByName("ext")
	require.NoError(t, err)
	assert.Equal(t, "x86_fp80 2.5", v.String())

	v, err = it.CallByName("nothing")
	require.NoError(t, err)
	assert.Equal(t, interpreter.ReprVoid, v.Repr())
}

func TestLowerPicksOneHandlerPerReturnType(t *testing.T) {
	p, _ := lowerString(t, returnsModule)

	tests := map[string]interpreter.Repr{
		"answer":  interpreter.ReprI32,
		"narrow":  interpreter.ReprI16,
		"lanes":   interpreter.ReprI32Vector,
		"pair":    interpreter.ReprStruct,
		"self":    interpreter.ReprFunction,
		"wide":    interpreter.ReprIVarBit,
		"ext":     interpreter.ReprX86FP80,
		"nothing": interpreter.ReprVoid,
	}
	for name, repr := range tests {
		fn, ok := p.Function(name)
		require.True(t, ok, name)

		last := fn.Blocks[len(fn.Blocks)-1]
		ret, ok := last.Term.(*interpreter.RetNode)
		require.True(t, ok, "%s ends in %T", name, last.Term)
		assert.Equal(t, repr, ret.Repr(), name)
		assert.Equal(t, fn.RetSlot, ret.Slot(), name)
		if repr != interpreter.ReprVoid {
			assert.Equal(t, repr.SlotKind(), fn.Frame.Kind(fn.RetSlot), name)
		}
	}

	pair, _ := p.Function("pair")
	assert.Equal(t, int64(4), pair.Blocks[0].Term.(*interpreter.RetNode).StructSize())
}

func TestLowerErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"bad return type", `
functions:
  - {name: f, returns: i0, blocks: [{name: b, term: {ret: {}}}]}`, "unknown type"},
		{"duplicate function", `
functions:
  - {name: f, returns: void, blocks: [{name: b, term: {ret: {}}}]}
  - {name: f, returns: void, blocks: [{name: b, term: {ret: {}}}]}`, "declared twice"},
		{"no blocks", `
functions:
  - {name: f, returns: void}`, "no blocks"},
		{"value in void ret", `
functions:
  - {name: f, returns: void, blocks: [{name: b, term: {ret: {const: "1"}}}]}`, "void function"},
		{"missing ret value", `
functions:
  - {name: f, returns: i32, blocks: [{name: b, term: {ret: {}}}]}`, "without a value"},
		{"two terminators", `
functions:
  - {name: f, returns: void, blocks: [{name: b, term: {br: b, unreachable: true}}]}`, "exactly one"},
		{"unknown block", `
functions:
  - {name: f, returns: void, blocks: [{name: b, term: {br: nowhere}}]}`, "unknown block"},
		{"local type mismatch", `
functions:
  - name: f
    returns: i64
    locals: [{name: x, type: i32}]
    blocks: [{name: b, term: {ret: {local: x}}}]`, "want i64"},
		{"call type mismatch", `
functions:
  - {name: g, returns: i8, blocks: [{name: b, term: {ret: {const: "1"}}}]}
  - {name: f, returns: i32, blocks: [{name: b, term: {ret: {call: g}}}]}`, "g returns i8"},
		{"struct size mismatch", `
functions:
  - {name: f, returns: struct<3>, blocks: [{name: b, term: {ret: {bytes: [1, 2]}}}]}`, "2 bytes"},
		{"cond on non-i1", `
functions:
  - name: f
    returns: void
    locals: [{name: x, type: i32}]
    blocks: [{name: b, term: {cond: {if: x, then: b, else: b}}}]`, "not an i1"},
		{"struct local", `
functions:
  - name: f
    returns: void
    locals: [{name: s, type: struct<8>}]
    blocks: [{name: b, term: {ret: {}}}]`, "cannot be held"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.src))
			require.NoError(t, err)

			_, err = Lower(m, interpreter.NewHeap())
			assert.ErrorIs(t, err, ErrLower)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("functions:\n  - {name: f, retruns: i32}\n"))
	assert.ErrorContains(t, err, "retruns")

	_, err = Parse([]byte(""))
	assert.ErrorIs(t, err, ErrEmptyModule)

	_, err = Parse([]byte("functions: []\n"))
	assert.ErrorIs(t, err, ErrEmptyModule)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.yaml")
	require.NoError(t, os.WriteFile(path, []byte(returnsModule), 0644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, m.Functions, 10)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDump(t *testing.T) {
	p, _ := lowerString(t, `
functions:
  - name: sign
    returns: i8
    locals:
      - {name: neg, type: i1}
    blocks:
      - name: entry
        instrs:
          - {set: neg, value: {const: "true"}}
        term: {cond: {if: neg, then: minus, else: plus}}
      - name: plus
        term: {ret: {const: "1"}}
      - name: minus
        term: {ret: {const: "-1"}}
  - name: nothing
    returns: void
    blocks:
      - name: entry
        term: {ret: {}}
`)

	var buf bytes.Buffer
	require.NoError(t, p.Dump(&buf))

	want := `func @sign -> i8
  slot %0 %ret byte
  slot %1 neg bool
  block 0 entry
    set %1
    br %1, 2, 1
  block 1 plus
    ret i8 -> %0
  block 2 minus
    ret i8 -> %0

func @nothing -> void
  block 0 entry
    ret void
`
	assert.Equal(t, want, buf.String())
}
