// Package diag wraps zap for AtomC's verbose/trace diagnostics: VM
// dispatch tracing (the compiler phase logs nothing), replacing the prior
// fmt.Fprintf(os.Stderr, …) calls and the Python original's unconditional
// per-opcode print.
package diag

import (
	"go.uber.org/zap"

	"github.com/codeassociates/atomc/codegen"
)

// Logger is a thin façade over a zap.SugaredLogger so callers don't import
// zap directly.
type Logger struct {
	s *zap.SugaredLogger
}

// NewDevelopment returns a human-readable, console-encoded logger suitable
// for CLI use (mirrors the pack's convention, e.g. dphaener-conduit's
// zap.NewDevelopment wiring).
func NewDevelopment() (*Logger, error) {
	z, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &Logger{s: z.Sugar()}, nil
}

// NewNop returns a logger that discards everything, the default when
// -trace is not requested.
func NewNop() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

func (l *Logger) Infof(template string, args ...any) {
	l.s.Infof(template, args...)
}

func (l *Logger) Sync() {
	_ = l.s.Sync()
}

// InstructionTracer adapts a Logger to vm.Tracer, logging one line per
// executed instruction.
type InstructionTracer struct {
	Log *Logger
}

func (t InstructionTracer) Trace(ip int, stackSize int, instr codegen.Instruction) {
	t.Log.Infof("%04d/%02d  %s arg=%d name=%q", ip, stackSize, instr.Op, instr.ArgI, instr.Name)
}
