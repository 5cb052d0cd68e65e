package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Module is the YAML form of an IR module.
type Module struct {
	Functions []FunctionDef `yaml:"functions"`
}

type FunctionDef struct {
	Name    string     `yaml:"name"`
	Returns string     `yaml:"returns"`
	Locals  []LocalDef `yaml:"locals,omitempty"`
	Blocks  []BlockDef `yaml:"blocks"`
}

type LocalDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type BlockDef struct {
	Name   string     `yaml:"name"`
	Instrs []InstrDef `yaml:"instrs,omitempty"`
	Term   TermDef    `yaml:"term"`
}

// InstrDef stores Value into the local named Set.
type InstrDef struct {
	Set   string  `yaml:"set"`
	Value ExprDef `yaml:"value"`
}

// ExprDef is an expression; exactly one field is set. An empty ExprDef in a
// ret terminator returns void.
type ExprDef struct {
	Const *string  `yaml:"const,omitempty"`
	Lanes []string `yaml:"lanes,omitempty"`
	Local string   `yaml:"local,omitempty"`
	Call  string   `yaml:"call,omitempty"`
	Func  string   `yaml:"func,omitempty"`
	Bytes []int    `yaml:"bytes,omitempty"`
}

// TermDef is a block terminator; exactly one field is set.
type TermDef struct {
	Ret         *ExprDef `yaml:"ret,omitempty"`
	Br          string   `yaml:"br,omitempty"`
	Cond        *CondDef `yaml:"cond,omitempty"`
	Unreachable bool     `yaml:"unreachable,omitempty"`
}

// CondDef branches on an i1 local.
type CondDef struct {
	If   string `yaml:"if"`
	Then string `yaml:"then"`
	Else string `yaml:"else"`
}

var ErrEmptyModule = errors.New("module has no functions")

// Parse decodes a module. Unknown keys are rejected.
func Parse(data []byte) (*Module, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Module
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyModule
		}
		return nil, fmt.Errorf("decoding module: %w", err)
	}
	if len(m.Functions) == 0 {
		return nil, ErrEmptyModule
	}
	return &m, nil
}

// Load reads and parses a module file.
func Load(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
