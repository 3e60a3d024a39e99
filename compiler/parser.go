package compiler

import (
	"fmt"

	"github.com/codeassociates/atomc/codegen"
	"github.com/codeassociates/atomc/domain"
	"github.com/codeassociates/atomc/internal/errs"
	"github.com/codeassociates/atomc/symbols"
	"github.com/codeassociates/atomc/token"
	"github.com/codeassociates/atomc/types"
)

// pendingCall is a CALL instruction emitted before its target function's
// entry address was known (forward reference); parseUnit patches every one
// of these once the whole program has been compiled and every Function's
// AddrLabel is final.
type pendingCall struct {
	addr int
	fn   *symbols.Function
}

// Parser walks the token stream exactly once, performing domain/type
// analysis and emitting code as it recognizes each rule.
// Grounded on the prior parser/parser.go for the overall shape
// (cursor-based lookahead, a method per grammar rule) and on the original's
// syntactic_analyzer/analyzer.py for the token-cursor backtracking
// discipline (redesign note: an explicit int cursor replacing
// Python's deepcopy'd iterator).
//
// Compilation is fail-fast ("the first error aborts compilation —
// no error recovery"), so unlike the prior p.errors-accumulating
// parser, every rule here returns as soon as it hits a hard error instead
// of collecting many and continuing.
type Parser struct {
	toks []token.Token
	pos  int

	ds   *domain.DomainStack
	code *codegen.Code

	globalOffset int // next free global slot (global_variable_index)
	loopDepth    int // nesting depth of while/for, for the break check
	breakAddrs   [][]int
	curFn        *symbols.Function
	tempCounter  int

	pendingCalls []pendingCall
}

// pushLoop opens a new break-target collection frame for a while/for loop
// about to parse its body.
func (p *Parser) pushLoop() {
	p.loopDepth++
	p.breakAddrs = append(p.breakAddrs, nil)
}

// popLoop closes the innermost loop's break-target frame, returning every
// JMP address a break statement inside it emitted so the caller can patch
// them all to the loop's exit address.
func (p *Parser) popLoop() []int {
	p.loopDepth--
	n := len(p.breakAddrs)
	addrs := p.breakAddrs[n-1]
	p.breakAddrs = p.breakAddrs[:n-1]
	return addrs
}

// recordBreak registers addr (a JMP emitted by a break statement) against
// the innermost loop, to be patched once that loop's exit address is known.
func (p *Parser) recordBreak(addr int) {
	top := len(p.breakAddrs) - 1
	p.breakAddrs[top] = append(p.breakAddrs[top], addr)
}

// newParser wraps tok (already terminated by an END token, per the lexer's
// contract) in a Parser with a fresh global domain pushed.
func newParser(toks []token.Token) *Parser {
	ds := domain.NewDomainStack()
	ds.Push() // the global domain; never popped
	return &Parser{toks: toks, ds: ds, code: codegen.NewCode()}
}

// Extern declares one host-provided function the program may call, seeded
// into the global domain before parsing begins ("external
// functions are visible everywhere, as if predeclared ahead of the
// program's own text"). Name and ParamTypes/RetType must match the
// corresponding entry registered in the VM's own vm.Registry — nothing here
// enforces that correspondence, since the two sides are wired independently
// by package session.
type Extern struct {
	Name       string
	ParamTypes []types.Type
	RetType    types.Type
}

// seedExterns registers every extern as a *symbols.ExternalFunction in the
// (still-empty) global domain, so parseCall's domain lookup resolves calls
// to put_i/put_d (or any other host function) exactly like a call to a
// user-defined one, differing only in which CALL_* opcode parseCall emits.
func (p *Parser) seedExterns(externs []Extern) error {
	for _, e := range externs {
		fn := symbols.NewExternalFunction(e.Name, e.RetType)
		for _, pt := range e.ParamTypes {
			fn.AddParam(&symbols.Parameter{ParamName: "_", Type: pt})
		}
		if err := p.ds.AddToCurrent(fn, 0); err != nil {
			return err
		}
	}
	return nil
}

// Compile runs the full pipeline over an already-lexed token stream:
// parsing, domain/type analysis, and code emission, returning the code
// buffer, the number of global storage cells to reserve, and the fixed
// entry address (always 0 — see parseUnit). externs seeds the host
// functions a program may call; package session is expected to
// pass the same name/signature set vm.NewRegistry pre-registers. This is
// the only exported entry point package session calls into.
func Compile(toks []token.Token, externs []Extern) (*codegen.Code, int, int, error) {
	p := newParser(toks)
	if err := p.seedExterns(externs); err != nil {
		return nil, 0, 0, err
	}
	if err := p.parseUnit(); err != nil {
		return nil, 0, 0, err
	}
	return p.code, p.globalOffset, 0, nil
}

// --- token cursor -----------------------------------------------------

// cur returns the token under the cursor without consuming it.
func (p *Parser) cur() token.Token { return p.toks[p.pos] }

// peek returns the token n positions ahead of the cursor, clamped to the
// trailing END token so callers never run off the end of the slice.
func (p *Parser) peek(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		i = len(p.toks) - 1
	}
	return p.toks[i]
}

// advance consumes and returns the token under the cursor.
func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// mark/reset are the explicit integer token cursor prescribes in
// place of the original's deepcopy'd iterator. This grammar's ambiguous
// alternatives (fnDef vs varDef, exprCast vs parenthesized expr, exprAssign
// vs exprOr) all turn out to resolve with bounded lookahead rather than a
// full speculative parse-and-roll-back (seeing this requires checking each
// alternative's lookahead set — see DESIGN.md). The lookahead helpers
// (peekIsFnDef, lookaheadIsAssign) use peek and never move the cursor, so
// nothing in this package currently calls mark/reset.
func (p *Parser) mark() int     { return p.pos }
func (p *Parser) reset(m int)   { p.pos = m }

func (p *Parser) line() int { return p.cur().Line }

func (p *Parser) syntaxErr(line int, format string, args ...any) error {
	return &errs.SyntaxError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// expect consumes the current token if it has kind k, failing with a
// SyntaxError (a committed failure — backtracking discipline)
// otherwise.
func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.cur().Kind != k {
		return token.Token{}, p.syntaxErr(p.line(), "expected %s, found %s", k, p.cur().Kind)
	}
	return p.advance(), nil
}

// isTypeBaseStart reports whether tok can begin a typeBase, the lookahead
// set that disambiguates exprCast from a parenthesized expression: seeing
// LPAR typeBase always commits to the cast alternative, since no
// expression starts with INT/DOUBLE/CHAR/STRUCT.
func isTypeBaseStart(k token.Kind) bool {
	switch k {
	case token.INT, token.DOUBLE, token.CHAR, token.STRUCT:
		return true
	default:
		return false
	}
}

// allocTemp reserves a fresh compiler-internal local slot in the current
// function, used to reorder or reuse operand values for operators the
// opcode set cannot express directly (no SWAP/DUP — see materialize and
// combineRelational in expr.go). The name is prefixed with '$' so it can never
// collide with a user identifier (the lexer never produces '$' inside an
// ID) and is never added to the domain stack, since nothing ever looks it
// up by name.
func (p *Parser) allocTemp(t types.Type) *symbols.Variable {
	v := &symbols.Variable{VarName: fmt.Sprintf("$t%d", p.tempCounter), Type: t}
	p.tempCounter++
	p.curFn.AddLocal(v)
	return v
}

// parseUnit is `unit := (structDef | fnDef | varDef)* END`,
// plus the driver sequence this module adds: code starts with a CALL to
// main (patched once main's address is known) followed by HALT, so running
// from address 0 always calls into the user's entry point and halts
// cleanly on return (mirrors an earlier interpreter's implicit driver,
// which always starts execution at a "call main, then stop" pair rather
// than at an arbitrary function's address).
func (p *Parser) parseUnit() error {
	callMainAddr := p.code.Call(0)
	p.code.Halt()

	for p.cur().Kind != token.END {
		if err := p.parseTopLevelDecl(); err != nil {
			return err
		}
	}
	if _, err := p.expect(token.END); err != nil {
		return err
	}

	mainSym := p.ds.Global().Find("main")
	mainFn, ok := mainSym.(*symbols.Function)
	if !ok {
		return p.syntaxErr(p.line(), "no function named \"main\"")
	}
	p.code.Patch(callMainAddr, mainFn.AddrLabel)

	for _, pc := range p.pendingCalls {
		p.code.Patch(pc.addr, pc.fn.AddrLabel)
	}
	return nil
}

// parseTopLevelDecl dispatches on the current token: STRUCT starts
// structDef unambiguously; VOID starts fnDef unambiguously (void variables
// don't exist); otherwise a typeBase begins, and one token of lookahead
// past "typeBase ID" (LPAR or not) tells fnDef and varDef apart, matching
// guidance without needing to roll back any emitted code.
func (p *Parser) parseTopLevelDecl() error {
	switch p.cur().Kind {
	case token.STRUCT:
		if p.peek(2).Kind == token.LACC {
			return p.parseStructDef()
		}
		return p.parseVarOrFnDef()
	case token.VOID:
		return p.parseFnDef()
	case token.INT, token.DOUBLE, token.CHAR:
		return p.parseVarOrFnDef()
	default:
		return p.syntaxErr(p.line(), "expected a declaration, found %s", p.cur().Kind)
	}
}

// parseVarOrFnDef looks past the shared "typeBase ID" prefix of varDef and
// fnDef without consuming it: LPAR after it selects fnDef, anything else
// varDef, and the selected rule then parses from the prefix's start.
func (p *Parser) parseVarOrFnDef() error {
	if p.peekIsFnDef() {
		return p.parseFnDef()
	}
	return p.parseVarDef(p.globalVarSink())
}

// peekIsFnDef scans past a typeBase (STRUCT ID or a single keyword) and an
// ID to see whether LPAR follows, without consuming any tokens.
func (p *Parser) peekIsFnDef() bool {
	i := 1
	if p.cur().Kind == token.STRUCT {
		i = 2 // STRUCT ID
	}
	if p.peek(i).Kind != token.ID {
		return false
	}
	return p.peek(i+1).Kind == token.LPAR
}
