package runner

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irvm/pkg/color"
	"irvm/pkg/interpreter"
	"irvm/pkg/loader"
)

func run(t *testing.T, opts Options) (string, error) {
	t.Helper()
	color.EnableColor(false)

	var buf bytes.Buffer
	err := opts.Run(&buf)
	return buf.String(), err
}

func TestRunDefaultEntry(t *testing.T) {
	out, err := run(t, Options{File: "../../examples/answer.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "@main i32 42\n", out)
}

func TestRunEntries(t *testing.T) {
	tests := []struct {
		entry string
		want  string
	}{
		{"main", "@main <4 x i32> [1 2 3 4]\n"},
		{"narrow", "@narrow i16 -32768\n"},
		{"nothing", "@nothing void\n"},
	}
	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			out, err := run(t, Options{File: "../../examples/lanes.yaml", Entry: tt.entry})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRunStructPrintsBytes(t *testing.T) {
	out, err := run(t, Options{File: "../../examples/pair.yaml"})
	require.NoError(t, err)
	assert.Contains(t, out, "@main struct @0x10\n")
	assert.Contains(t, out, "bytes 01 00 00 00 00 00 00 00 02 00")
}

func TestRunDump(t *testing.T) {
	out, err := run(t, Options{File: "../../examples/answer.yaml", Dump: true})
	require.NoError(t, err)
	assert.Contains(t, out, "=== Lowered Program ===\nfunc @main -> i32\n")
	assert.Contains(t, out, "func @answer -> i32\n")
	assert.True(t, bytes.HasSuffix([]byte(out), []byte("\n\n@main i32 42\n")))
}

func TestRunErrors(t *testing.T) {
	_, err := run(t, Options{File: "../../examples/answer.yaml", Entry: "nope"})
	assert.ErrorIs(t, err, ErrNoEntry)

	_, err = run(t, Options{File: "../../examples/spin.yaml", Entry: "spin", MaxSteps: 50})
	assert.ErrorIs(t, err, interpreter.ErrMaxStepsExceeded)

	_, err = run(t, Options{File: "../../examples/spin.yaml", Entry: "deep", MaxDepth: 8})
	assert.ErrorIs(t, err, interpreter.ErrStackOverflow)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("functions:\n  - {name: main, returns: i32, blocks: [{name: b, term: {ret: {}}}]}\n"), 0644))
	_, err = run(t, Options{File: bad})
	assert.ErrorIs(t, err, loader.ErrLower)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = run(t, Options{File: empty})
	assert.ErrorIs(t, err, loader.ErrEmptyModule)
}
