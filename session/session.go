// Package session wires the compiler and VM components together behind
// one value a caller constructs once and passes around. A *Session holds
// the diagnostics logger and output configuration; each Compile builds its
// own domain stack and code buffer and each Run its own external registry
// and VM, so no mutable state lives at package scope. Grounded on the prior main.go, which
// wires lexer.New -> parser.New -> codegen.New through local variables
// rather than package state; this package is the same wiring lifted one
// level so cmd/atomc can reuse it across both subcommands.
package session

import (
	"io"
	"os"

	"github.com/codeassociates/atomc/codegen"
	"github.com/codeassociates/atomc/compiler"
	"github.com/codeassociates/atomc/internal/config"
	"github.com/codeassociates/atomc/internal/diag"
	"github.com/codeassociates/atomc/lexer"
	"github.com/codeassociates/atomc/types"
	"github.com/codeassociates/atomc/vm"
)

// externs lists every host function the compiler accepts calls to. The
// names must match those vm.NewRegistry registers (put_i, put_d); nothing
// checks the two lists against each other.
var externs = []compiler.Extern{
	{Name: "put_i", ParamTypes: []types.Type{types.Scalar(types.Int)}, RetType: types.Scalar(types.Void)},
	{Name: "put_d", ParamTypes: []types.Type{types.Scalar(types.Double)}, RetType: types.Scalar(types.Void)},
}

// Program is a compiled unit ready to run: the instruction buffer plus the
// number of global storage cells main's call frame sits above.
type Program struct {
	Code       *codegen.Code
	GlobalSize int
}

// Session holds the diagnostics and I/O configuration shared by every
// compile/run call it performs.
type Session struct {
	log    *diag.Logger
	trace  bool
	output io.Writer
}

// New builds a Session from the given options. The -trace flag and test
// output redirection both flow through config.Option; see cmd/atomc.
func New(opts ...config.Option) (*Session, error) {
	o := config.New(opts...)

	out := o.Output
	if out == nil {
		out = os.Stdout
	}

	var log *diag.Logger
	if o.Trace {
		l, err := diag.NewDevelopment()
		if err != nil {
			return nil, err
		}
		log = l
	} else {
		log = diag.NewNop()
	}

	return &Session{log: log, trace: o.Trace, output: out}, nil
}

// Compile lexes and compiles source into a Program, with put_i/put_d
// already visible to the program's call sites.
func (s *Session) Compile(source string) (*Program, error) {
	toks, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	code, globalSize, _, err := compiler.Compile(toks, externs)
	if err != nil {
		return nil, err
	}
	return &Program{Code: code, GlobalSize: globalSize}, nil
}

// Run executes prog from address 0 ("CALL main, then HALT"
// driver sequence is always the first two instructions emitted). Tracing,
// when enabled, logs one line per instruction through the same Logger
// Compile's caller configured via New.
func (s *Session) Run(prog *Program) error {
	registry := vm.NewRegistry(s.output)
	interp := vm.NewInterpreter(prog.Code, prog.GlobalSize, registry)
	if s.trace {
		interp.Tracer = diag.InstructionTracer{Log: s.log}
	}
	return interp.Run(0)
}

// Sync flushes any buffered diagnostics; callers should defer it right
// after New succeeds.
func (s *Session) Sync() {
	s.log.Sync()
}
