package compiler

import (
	"fmt"

	"github.com/codeassociates/atomc/internal/errs"
	"github.com/codeassociates/atomc/symbols"
	"github.com/codeassociates/atomc/token"
	"github.com/codeassociates/atomc/types"
)

// parseExpr is the grammar's `expr` entry point: one pass of recursive
// descent both type-checks and emits code, following the precedence chain
// exprAssign > exprOr > exprAnd > exprEq > exprRel > exprAdd > exprMul >
// exprCast > exprUnary > exprPostfix > exprPrimary. There is no AST: every
// rule below leaves its result's representation — an address for an
// l-value, a value for an r-value — sitting on top of the VM stack by the
// time it returns its Returned, the invariant every other rule here relies
// on (see allocTemp's doc comment on why the arithmetic/relational/
// equality rules below immediately materialize both operands into locals
// rather than composing stack positions directly: CONV_I_F/CONV_F_I and
// the comparison opcodes only ever touch the top of stack, so an operand
// buried under a second operand's code can no longer be converted or
// reloaded in a different order once that code runs).
func (p *Parser) parseExpr() (*Returned, error) {
	return p.parseExprAssign()
}

// rval converts an arbitrary Returned into an r-value: an l-value's
// representation on stack is an address (pushed by ADDR/FPADDR_I/F or
// computed by an index/field access), so this pops it via LOAD_I/LOAD_F
// and replaces it with the value at that address. Constants and
// already-computed r-values (arithmetic results, call results) are
// returned unchanged.
//
// A fixed array (dim > 0) is the one exception: the address already on
// stack is its own storage, not a pointer cell holding one — the array
// decays to that address directly, the same rule prepareIndexBase applies
// when indexing through a fixed array base rather than a dim==0 pointer
// variable. Loading through it (as the pre-fix version of this function
// did unconditionally) would read the array's first element instead of
// passing its address, breaking array arguments passed to pointer
// parameters.
func (p *Parser) rval(r *Returned) (*Returned, error) {
	if !r.IsLval {
		return r, nil
	}
	if r.Type.Dim > 0 {
		return rvalue(r.Type), nil
	}
	p.emitLoad(r.Type)
	return rvalue(r.Type), nil
}

func (p *Parser) emitLoad(t types.Type) {
	if t.Base == types.Double {
		p.code.LoadF()
	} else {
		p.code.LoadI()
	}
}

func (p *Parser) emitStore(t types.Type) {
	if t.Base == types.Double {
		p.code.StoreF()
	} else {
		p.code.StoreI()
	}
}

// emitFpAddr pushes the frame-relative address of a local/parameter slot,
// choosing FPADDR_F for double-typed storage and FPADDR_I for everything
// else (I/F suffix is purely a disassembly/trace aid here —
// both push the same plain cell index, see vm.Interpreter.step).
func (p *Parser) emitFpAddr(t types.Type, off int) {
	if t.Base == types.Double {
		p.code.FpAddrF(off)
	} else {
		p.code.FpAddrI(off)
	}
}

// materialize pops the value currently on top of stack (already an
// r-value of type t) into a fresh compiler-internal temporary local and
// returns that temporary's frame offset, so the value can be reloaded
// later — possibly more than once, possibly in a different order than it
// was produced — something no amount of stack shuffling can do with only
// top-of-stack-affecting opcodes (no SWAP/DUP; see allocTemp).
func (p *Parser) materialize(t types.Type) int {
	tmp := p.allocTemp(t)
	off := p.curFn.LocalFrameOffset(tmp)
	p.code.FpStore(off)
	return off
}

// loadConvert reloads a materialized operand and converts it from its
// original type to the target type if they differ.
func (p *Parser) loadConvert(off int, from, to types.Type) {
	p.code.FpLoad(off)
	p.emitConvert(from, to)
}

// emitConvert inserts CONV_I_F/CONV_F_I to turn a value of type from,
// currently on top of stack, into one of type to. int and char share the
// same one-cell integer representation (char is a 1-byte base,
// but this module's stack is cell-per-value, not byte-addressed — see
// symbols.go), so the only real conversions are to/from double.
func (p *Parser) emitConvert(from, to types.Type) {
	if from.Base == to.Base {
		return
	}
	if to.Base == types.Double {
		p.code.ConvIF()
		return
	}
	if from.Base == types.Double {
		p.code.ConvFI()
	}
}

// --- assignment ---------------------------------------------------------

// lookaheadIsAssign decides the exprAssign/exprOr ambiguity (try the more
// specific branch first and fall back) with a pure token scan instead of a
// speculative parse: parsing the left-hand exprUnary for real would
// already emit its address-pushing code, which an append-only instruction
// buffer can never roll back (the source's deep-copied iterator is
// replaced here with an integer cursor, but that only fixes
// token-position backtracking — it does nothing for code already
// emitted). Scanning forward for a bare ASSIGN token at bracket/paren
// depth 0, stopping at whatever terminates this expression's extent,
// needs no semantic state and commits to nothing.
func (p *Parser) lookaheadIsAssign() bool {
	depth := 0
	for i := 0; ; i++ {
		tk := p.peek(i)
		switch tk.Kind {
		case token.LPAR, token.LBRACKET:
			depth++
		case token.RPAR, token.RBRACKET:
			if depth == 0 {
				return false
			}
			depth--
		case token.ASSIGN:
			if depth == 0 {
				return true
			}
		case token.SEMICOLON, token.COMMA, token.RACC, token.END:
			if depth == 0 {
				return false
			}
		}
		if tk.Kind == token.END {
			return false
		}
	}
}

// parseExprAssign is `exprUnary ASSIGN exprAssign | exprOr`.
func (p *Parser) parseExprAssign() (*Returned, error) {
	if !p.lookaheadIsAssign() {
		return p.parseExprOr()
	}

	lhs, err := p.parseExprUnary()
	if err != nil {
		return nil, err
	}
	eqTok, err := p.expect(token.ASSIGN)
	if err != nil {
		return nil, err
	}
	if !lhs.Type.IsScalar() {
		return nil, &errs.InvalidType{Line: eqTok.Line, Msg: "assignment target must have scalar type"}
	}
	if lhs.Type.Base == types.StructBase {
		return nil, &errs.InvalidType{Line: eqTok.Line, Msg: "cannot assign a whole struct value; assign its members instead"}
	}
	if lhs.IsCt {
		return nil, &errs.ConstantTarget{Line: eqTok.Line}
	}
	if !lhs.IsLval {
		return nil, &errs.NotLval{Line: eqTok.Line}
	}

	rhs, err := p.parseExprAssign()
	if err != nil {
		return nil, err
	}
	val, err := p.rval(rhs)
	if err != nil {
		return nil, err
	}
	if !val.Type.CanCastTo(lhs.Type) {
		return nil, &errs.TypeCast{Line: eqTok.Line, From: val.Type.String(), To: lhs.Type.String()}
	}
	p.emitConvert(val.Type, lhs.Type)
	p.emitStore(lhs.Type)
	return rvalue(lhs.Type), nil
}

// --- short-circuit || and && --------------------------------------------

// condValue normalizes an already-parsed operand into an int value
// suitable for JF/JT ("booleans... represented as int; the
// analyzer only requires scalar type for conditions"). Int/char operands
// are left as-is — JF/JT already test "is this int cell zero", which is
// exactly C truthiness for any int value, not just 0/1. A double operand
// must be normalized first: the VM's JF/JT pop an int cell (vm.popInt),
// and a float64 cell would fail that type assertion outright.
func (p *Parser) condValue(r *Returned, line int) (*Returned, error) {
	val, err := p.rval(r)
	if err != nil {
		return nil, err
	}
	if !val.Type.IsScalar() || val.Type.Base == types.StructBase {
		return nil, &errs.InvalidType{Line: line, Msg: "operand must have scalar type, found " + val.Type.String()}
	}
	if val.Type.Base == types.Double {
		p.emitBoolFromDouble()
	}
	return rvalue(types.Scalar(types.Int)), nil
}

// parseExprOr is `exprAnd (OR exprAnd)*`, short-circuited: once an operand
// tests true the whole chain is true without evaluating the rest.
// Implemented by hand rather than through parseBinaryChain because the
// right operand must only be *parsed* after the left operand's JT has
// been emitted.
func (p *Parser) parseExprOr() (*Returned, error) {
	left, err := p.parseExprAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.OR {
		line := p.cur().Line
		p.advance()
		if _, err := p.condValue(left, line); err != nil {
			return nil, err
		}
		jt1 := p.code.Jt(0)

		right, err := p.parseExprAnd()
		if err != nil {
			return nil, err
		}
		if _, err := p.condValue(right, line); err != nil {
			return nil, err
		}
		jt2 := p.code.Jt(0)

		p.code.PushI(0)
		jmp := p.code.Jmp(0)
		trueAddr := p.code.Len()
		p.code.Patch(jt1, trueAddr)
		p.code.Patch(jt2, trueAddr)
		p.code.PushI(1)
		p.code.Patch(jmp, p.code.Len())

		left = rvalue(types.Scalar(types.Int))
	}
	return left, nil
}

// parseExprAnd is `exprEq (AND exprEq)*`, short-circuited for `&&`: false
// the moment any operand is false.
func (p *Parser) parseExprAnd() (*Returned, error) {
	left, err := p.parseExprEq()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.AND {
		line := p.cur().Line
		p.advance()
		if _, err := p.condValue(left, line); err != nil {
			return nil, err
		}
		jf1 := p.code.Jf(0)

		right, err := p.parseExprEq()
		if err != nil {
			return nil, err
		}
		if _, err := p.condValue(right, line); err != nil {
			return nil, err
		}
		jf2 := p.code.Jf(0)

		p.code.PushI(1)
		jmp := p.code.Jmp(0)
		falseAddr := p.code.Len()
		p.code.Patch(jf1, falseAddr)
		p.code.Patch(jf2, falseAddr)
		p.code.PushI(0)
		p.code.Patch(jmp, p.code.Len())

		left = rvalue(types.Scalar(types.Int))
	}
	return left, nil
}

// --- equality / relational / additive / multiplicative chains ----------

var mulOps = map[token.Kind]bool{token.MUL: true, token.DIV: true}
var addOps = map[token.Kind]bool{token.ADD: true, token.SUB: true}
var relOps = map[token.Kind]bool{
	token.LESS: true, token.LESSEQ: true, token.GREATER: true, token.GREATEREQ: true,
}
var eqOps = map[token.Kind]bool{token.EQUAL: true, token.NOTEQ: true}

// combiner finishes one step of a left-associative binary chain: loff/roff
// are frame offsets of the already-materialized, already-evaluated
// operands (so the combiner may reload either in whatever order the
// target opcode needs), lt/rt their original types.
type combiner func(loff int, lt types.Type, roff int, rt types.Type, opTok token.Token) (*Returned, error)

// parseBinaryChain implements one level of "standard
// left-assoc chains" (exprMulAux/exprAddAux/etc, folded into an iterative
// loop rather than a literal auxiliary rule — equivalent by construction,
// since each aux rule only ever accumulates a left-side Returned, which a
// loop does just as well as recursion). Every operand, including the
// running accumulator, is materialized into a temporary immediately after
// being evaluated: this is what lets the combiner reload left and right
// in whatever order a non-commutative opcode (SUB_I, the synthesized
// comparisons) needs, long after the stack position either was originally
// pushed at has been overwritten by the next operand's own code.
func (p *Parser) parseBinaryChain(next func() (*Returned, error), ops map[token.Kind]bool, combine combiner) (*Returned, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	if !ops[p.cur().Kind] {
		return left, nil
	}

	lv, err := p.rval(left)
	if err != nil {
		return nil, err
	}
	loff := p.materialize(lv.Type)
	lt := lv.Type

	var result *Returned
	for ops[p.cur().Kind] {
		opTok := p.advance()

		rightOperand, err := next()
		if err != nil {
			return nil, err
		}
		rv, err := p.rval(rightOperand)
		if err != nil {
			return nil, err
		}
		roff := p.materialize(rv.Type)

		result, err = combine(loff, lt, roff, rv.Type, opTok)
		if err != nil {
			return nil, err
		}

		if ops[p.cur().Kind] {
			loff = p.materialize(result.Type)
			lt = result.Type
		}
	}
	return result, nil
}

func (p *Parser) parseExprMul() (*Returned, error) {
	return p.parseBinaryChain(p.parseExprCast, mulOps, p.combineArith)
}

func (p *Parser) parseExprAdd() (*Returned, error) {
	return p.parseBinaryChain(p.parseExprMul, addOps, p.combineArith)
}

func (p *Parser) parseExprRel() (*Returned, error) {
	return p.parseBinaryChain(p.parseExprAdd, relOps, p.combineRelational)
}

func (p *Parser) parseExprEq() (*Returned, error) {
	return p.parseBinaryChain(p.parseExprRel, eqOps, p.combineEquality)
}

// lessOpFor picks LESS_F for double comparisons, LESS_I otherwise (int and
// char share the same int representation).
func (p *Parser) lessOpFor(t types.Type) func() {
	if t.Base == types.Double {
		return func() { p.code.LessF() }
	}
	return func() { p.code.LessI() }
}

// combineArith finishes one +,-,*,/ step: both operands are cast to their
// common arithmetic type (arith table) and combined with the
// matching _I/_F opcode.
func (p *Parser) combineArith(loff int, lt types.Type, roff int, rt types.Type, opTok token.Token) (*Returned, error) {
	common, ok := types.Arith(lt, rt)
	if !ok {
		return nil, arithTypeError(opTok, lt, rt)
	}
	p.loadConvert(loff, lt, common)
	p.loadConvert(roff, rt, common)
	p.emitArithOp(opTok.Kind, common)
	return rvalue(common), nil
}

func (p *Parser) emitArithOp(kind token.Kind, t types.Type) {
	isF := t.Base == types.Double
	switch kind {
	case token.ADD:
		if isF {
			p.code.AddF()
		} else {
			p.code.AddI()
		}
	case token.SUB:
		if isF {
			p.code.SubF()
		} else {
			p.code.SubI()
		}
	case token.MUL:
		if isF {
			p.code.MulF()
		} else {
			p.code.MulI()
		}
	case token.DIV:
		if isF {
			p.code.DivF()
		} else {
			p.code.DivI()
		}
	}
}

// combineRelational finishes one <,<=,>,>= step. The instruction set only
// provides LESS_I/LESS_F; the other three are synthesized by
// reloading the already-materialized operands in the order each needs
// (swap for `>`) and, for the two non-strict operators, negating a LESS
// result via emitLogicalNot.
func (p *Parser) combineRelational(loff int, lt types.Type, roff int, rt types.Type, opTok token.Token) (*Returned, error) {
	common, ok := types.Arith(lt, rt)
	if !ok {
		return nil, arithTypeError(opTok, lt, rt)
	}
	less := p.lessOpFor(common)

	switch opTok.Kind {
	case token.LESS:
		p.loadConvert(loff, lt, common)
		p.loadConvert(roff, rt, common)
		less()
	case token.GREATER:
		p.loadConvert(roff, rt, common)
		p.loadConvert(loff, lt, common)
		less() // right < left == left > right
	case token.LESSEQ:
		p.loadConvert(roff, rt, common)
		p.loadConvert(loff, lt, common)
		less() // right < left
		p.emitLogicalNot()
	case token.GREATEREQ:
		p.loadConvert(loff, lt, common)
		p.loadConvert(roff, rt, common)
		less() // left < right
		p.emitLogicalNot()
	}
	return rvalue(types.Scalar(types.Int)), nil
}

// combineEquality finishes one ==,!= step: a == b iff neither a<b nor
// b<a, synthesized the same way combineRelational synthesizes `>=`/`<=`,
// short-circuiting with JT the moment either LESS test fires (the opcode
// set has no EQUAL/NOTEQ either).
func (p *Parser) combineEquality(loff int, lt types.Type, roff int, rt types.Type, opTok token.Token) (*Returned, error) {
	common, ok := types.Arith(lt, rt)
	if !ok {
		return nil, arithTypeError(opTok, lt, rt)
	}
	less := p.lessOpFor(common)

	p.loadConvert(loff, lt, common)
	p.loadConvert(roff, rt, common)
	less() // a < b
	jt1 := p.code.Jt(0)

	p.loadConvert(roff, rt, common)
	p.loadConvert(loff, lt, common)
	less() // b < a
	jt2 := p.code.Jt(0)

	eqVal, neqVal := 1, 0
	if opTok.Kind == token.NOTEQ {
		eqVal, neqVal = 0, 1
	}
	p.code.PushI(eqVal)
	jmp := p.code.Jmp(0)
	differAddr := p.code.Len()
	p.code.Patch(jt1, differAddr)
	p.code.Patch(jt2, differAddr)
	p.code.PushI(neqVal)
	p.code.Patch(jmp, p.code.Len())
	return rvalue(types.Scalar(types.Int)), nil
}

func arithTypeError(opTok token.Token, lt, rt types.Type) error {
	return &errs.InvalidType{
		Line: opTok.Line,
		Msg:  fmt.Sprintf("invalid operand types for %s: %s, %s", opTok.Kind, lt, rt),
	}
}

// --- unary / cast / postfix / primary -----------------------------------

// parseExprCast is `LPAR typeBase arrayDecl? RPAR exprCast | exprUnary`
//. Seeing a type-starting token right after LPAR commits to
// the cast alternative unambiguously (no AtomC expression starts with
// INT/DOUBLE/CHAR/STRUCT), matching isTypeBaseStart's use in parseFnDef.
func (p *Parser) parseExprCast() (*Returned, error) {
	if p.cur().Kind == token.LPAR && isTypeBaseStart(p.peek(1).Kind) {
		line := p.cur().Line
		p.advance() // LPAR
		base, err := p.parseTypeBase()
		if err != nil {
			return nil, err
		}
		target := base
		if p.cur().Kind == token.LBRACKET {
			target, err = p.parseArrayDecl(base, token.Token{Line: line, Sval: "<cast>"})
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.RPAR); err != nil {
			return nil, err
		}
		if target.Base == types.StructBase {
			return nil, &errs.InvalidType{Line: line, Msg: "cannot cast to a struct type"}
		}

		operand, err := p.parseExprCast()
		if err != nil {
			return nil, err
		}
		val, err := p.rval(operand)
		if err != nil {
			return nil, err
		}
		if !val.Type.CanCastTo(target) {
			return nil, &errs.TypeCast{Line: line, From: val.Type.String(), To: target.String()}
		}
		p.emitConvert(val.Type, target)
		return rvalue(target), nil
	}
	return p.parseExprUnary()
}

// parseExprUnary is `(SUB | NOT) exprUnary | exprPostfix`.
func (p *Parser) parseExprUnary() (*Returned, error) {
	switch p.cur().Kind {
	case token.SUB:
		line := p.advance().Line
		operand, err := p.parseExprUnary()
		if err != nil {
			return nil, err
		}
		val, err := p.rval(operand)
		if err != nil {
			return nil, err
		}
		if !val.Type.IsScalar() || val.Type.Base == types.StructBase {
			return nil, &errs.InvalidType{Line: line, Msg: "unary - requires a scalar operand, found " + val.Type.String()}
		}
		p.emitNegate(val.Type)
		return rvalue(val.Type), nil

	case token.NOT:
		line := p.advance().Line
		operand, err := p.parseExprUnary()
		if err != nil {
			return nil, err
		}
		val, err := p.rval(operand)
		if err != nil {
			return nil, err
		}
		if !val.Type.IsScalar() || val.Type.Base == types.StructBase {
			return nil, &errs.InvalidType{Line: line, Msg: "unary ! requires a scalar operand, found " + val.Type.String()}
		}
		p.emitBoolFromScalar(val.Type)
		p.emitLogicalNot()
		return rvalue(types.Scalar(types.Int)), nil

	default:
		return p.parseExprPostfix()
	}
}

// emitNegate computes 0 - v, the only way to express unary minus with an
// opcode set that has no dedicated NEG: v is materialized so 0 can be
// pushed ahead of it in the order SUB_I/SUB_F's a,b pop convention needs.
func (p *Parser) emitNegate(t types.Type) {
	off := p.materialize(t)
	if t.Base == types.Double {
		p.code.PushF(0)
		p.code.FpLoad(off)
		p.code.SubF()
	} else {
		p.code.PushI(0)
		p.code.FpLoad(off)
		p.code.SubI()
	}
}

// emitLogicalNot computes 1 - v for a v already known to be a clean 0/1
// int (the boolean representation this module standardizes on).
func (p *Parser) emitLogicalNot() {
	off := p.materialize(types.Scalar(types.Int))
	p.code.PushI(1)
	p.code.FpLoad(off)
	p.code.SubI()
}

// emitBoolFromScalar normalizes any scalar value on top of stack into a
// clean 0/1 int, needed before `!` can apply 1-v (which only works when v
// is already exactly 0 or 1) and before a double-typed value can reach
// JF/JT (which pop an int cell).
func (p *Parser) emitBoolFromScalar(t types.Type) {
	if t.Base == types.Double {
		p.emitBoolFromDouble()
		return
	}
	p.emitBoolFromInt()
}

// emitBoolFromInt computes (v<0 || 0<v) for the int on top of stack,
// i.e. "v != 0" without an EQUAL/NOTEQ opcode to ask directly.
func (p *Parser) emitBoolFromInt() {
	off := p.materialize(types.Scalar(types.Int))
	p.code.FpLoad(off)
	p.code.PushI(0)
	p.code.LessI() // v < 0
	jt := p.code.Jt(0)
	p.code.PushI(0)
	p.code.FpLoad(off)
	p.code.LessI() // 0 < v
	jt2 := p.code.Jt(0)
	p.code.PushI(0)
	jmp := p.code.Jmp(0)
	trueAddr := p.code.Len()
	p.code.Patch(jt, trueAddr)
	p.code.Patch(jt2, trueAddr)
	p.code.PushI(1)
	p.code.Patch(jmp, p.code.Len())
}

// emitBoolFromDouble is emitBoolFromInt's double-typed twin.
func (p *Parser) emitBoolFromDouble() {
	off := p.materialize(types.Scalar(types.Double))
	p.code.FpLoad(off)
	p.code.PushF(0)
	p.code.LessF()
	jt := p.code.Jt(0)
	p.code.PushF(0)
	p.code.FpLoad(off)
	p.code.LessF()
	jt2 := p.code.Jt(0)
	p.code.PushI(0)
	jmp := p.code.Jmp(0)
	trueAddr := p.code.Len()
	p.code.Patch(jt, trueAddr)
	p.code.Patch(jt2, trueAddr)
	p.code.PushI(1)
	p.code.Patch(jmp, p.code.Len())
}

// parseExprPostfix is `exprPrimary (LBRACKET expr RBRACKET | DOT ID)*`.
// The DOT ID step recurses, so multi-level field access like a.b.c is
// already in scope.
func (p *Parser) parseExprPostfix() (*Returned, error) {
	left, err := p.parseExprPrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case token.LBRACKET:
			line := p.advance().Line
			baseOff, elemType, err := p.prepareIndexBase(left, line)
			if err != nil {
				return nil, err
			}
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			left, err = p.emitIndex(baseOff, elemType, idx, line)
			if err != nil {
				return nil, err
			}
		case token.DOT:
			p.advance()
			fieldTok, err := p.expect(token.ID)
			if err != nil {
				return nil, err
			}
			left, err = p.emitField(left, fieldTok)
			if err != nil {
				return nil, err
			}
		default:
			return left, nil
		}
	}
}

// prepareIndexBase materializes the array/pointer base address that
// `expr [ idx ]` indexes into, before idx itself is parsed: a fixed array
// (dim > 0) IS its own storage, so its own address (already pushed by the
// l-value code that produced `left`) is the base directly; a pointer/open
// array (dim == 0) instead stores an address as its value, so that value
// must be loaded first ("left must be non-scalar (dim >= 0)").
func (p *Parser) prepareIndexBase(left *Returned, line int) (int, types.Type, error) {
	if left.Type.IsScalar() {
		return 0, types.Type{}, &errs.InvalidType{Line: line, Msg: "cannot index a scalar value"}
	}
	if left.Type.Dim == types.DimPointer {
		if _, err := p.rval(left); err != nil {
			return 0, types.Type{}, err
		}
	} else if !left.IsLval {
		return 0, types.Type{}, &errs.InvalidType{Line: line, Msg: "array value has no addressable storage"}
	}
	off := p.materialize(types.Scalar(types.Int))
	return off, left.Type.ElementOf(), nil
}

// emitIndex computes baseAddr + idx*elemSlotSize, the element's address
// ("index must be castable to int; result type is the element
// type, scalar, l-value").
func (p *Parser) emitIndex(baseOff int, elemType types.Type, idx *Returned, line int) (*Returned, error) {
	idxVal, err := p.rval(idx)
	if err != nil {
		return nil, err
	}
	if !idxVal.Type.CanCastTo(types.Scalar(types.Int)) {
		return nil, &errs.TypeCast{Line: line, From: idxVal.Type.String(), To: "int"}
	}
	p.emitConvert(idxVal.Type, types.Scalar(types.Int))
	p.code.PushI(elemType.SlotSize())
	p.code.MulI()
	p.code.FpLoad(baseOff)
	p.code.AddI()
	return lvalue(elemType), nil
}

// emitField computes a struct-typed l-value's member address: base +
// member.Index ("left must have struct base type; field must
// exist in that StructDef").
func (p *Parser) emitField(left *Returned, fieldTok token.Token) (*Returned, error) {
	if left.Type.Base != types.StructBase || !left.Type.IsScalar() {
		return nil, &errs.InvalidType{Line: fieldTok.Line, Msg: "'.' requires a struct-typed operand"}
	}
	if !left.IsLval {
		return nil, &errs.InvalidType{Line: fieldTok.Line, Msg: "struct value has no addressable storage"}
	}
	def, ok := left.Type.Struct.(*symbols.StructDef)
	if !ok || def == nil {
		return nil, &errs.InvalidType{Line: fieldTok.Line, Msg: "struct definition not available"}
	}
	member := def.FindMember(fieldTok.Sval)
	if member == nil {
		return nil, &errs.UndefinedId{Line: fieldTok.Line, Name: fieldTok.Sval}
	}

	off := p.materialize(types.Scalar(types.Int))
	p.code.FpLoad(off)
	p.code.PushI(member.Index)
	p.code.AddI()
	return lvalue(member.Type), nil
}

// parseExprPrimary is `ID (LPAR (expr (COMMA expr)*)? RPAR)? | CT_INT |
// CT_REAL | CT_CHAR | CT_STRING | LPAR expr RPAR`.
func (p *Parser) parseExprPrimary() (*Returned, error) {
	tok := p.cur()
	switch tok.Kind {
	case token.ID:
		p.advance()
		if p.cur().Kind == token.LPAR {
			return p.parseCall(tok)
		}
		return p.parseIdentRef(tok)

	case token.CT_INT:
		p.advance()
		p.code.PushI(tok.Ival)
		return constant(types.Scalar(types.Int)), nil

	case token.CT_REAL:
		p.advance()
		p.code.PushF(tok.Rval)
		return constant(types.Scalar(types.Double)), nil

	case token.CT_CHAR:
		p.advance()
		p.code.PushI(int(tok.Cval))
		return constant(types.Scalar(types.Char)), nil

	case token.CT_STRING:
		// Non-goal: string manipulation beyond tokenization. The token
		// exists (for literal arguments a host extern might one day
		// accept raw), but no Type models it, so it has no usable
		// expression value.
		p.advance()
		return nil, &errs.InvalidType{Line: tok.Line, Msg: "string literals have no usable expression type"}

	case token.LPAR:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAR); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, p.syntaxErr(tok.Line, "expected an expression, found %s", tok.Kind)
	}
}

// parseIdentRef resolves a bare ID to a variable or parameter and emits
// its address-pushing code ("Plain ID cannot denote a
// StructDef or a Function").
func (p *Parser) parseIdentRef(tok token.Token) (*Returned, error) {
	sym, err := p.ds.Find(tok.Sval, tok.Line)
	if err != nil {
		return nil, err
	}
	switch s := sym.(type) {
	case *symbols.Variable:
		return p.emitVariableRef(s)
	case *symbols.Parameter:
		return p.emitParameterRef(s)
	default:
		return nil, &errs.InvalidType{Line: tok.Line, Msg: fmt.Sprintf("%q does not denote a variable", tok.Sval)}
	}
}

func (p *Parser) emitVariableRef(v *symbols.Variable) (*Returned, error) {
	if v.Owner == nil {
		p.code.Addr(v.Index)
		return lvalue(v.Type), nil
	}
	fn, ok := v.Owner.(*symbols.Function)
	if !ok {
		return nil, &errs.InvalidType{Msg: fmt.Sprintf("variable %q has no addressable storage", v.VarName)}
	}
	p.emitFpAddr(v.Type, fn.LocalFrameOffset(v))
	return lvalue(v.Type), nil
}

func (p *Parser) emitParameterRef(pm *symbols.Parameter) (*Returned, error) {
	fn, ok := pm.Owner.(*symbols.Function)
	if !ok {
		return nil, &errs.InvalidType{Msg: fmt.Sprintf("parameter %q has no addressable storage", pm.ParamName)}
	}
	p.emitFpAddr(pm.Type, fn.ParamFrameOffset(pm))
	return lvalue(pm.Type), nil
}

// parseCall is the `ID LPAR... RPAR` alternative of exprPrimary: arguments
// are checked pairwise against declared parameters, count exact. Each
// argument is evaluated, cast-checked and converted
// immediately after it is parsed — not batched after the whole argument
// list, the same ordering constraint parseBinaryChain's doc comment
// explains (an earlier argument's conversion code can't reach back past a
// later argument's already-emitted code).
func (p *Parser) parseCall(tok token.Token) (*Returned, error) {
	sym, err := p.ds.Find(tok.Sval, tok.Line)
	if err != nil {
		return nil, err
	}
	fn, ok := sym.(symbols.AnyFunction)
	if !ok {
		return nil, &errs.UncallableId{Line: tok.Line, Name: tok.Sval}
	}
	if _, err := p.expect(token.LPAR); err != nil {
		return nil, err
	}

	params := fn.ParamList()
	argCount := 0
	if p.cur().Kind != token.RPAR {
		if err := p.parseCallArg(tok, params, argCount); err != nil {
			return nil, err
		}
		argCount++
		for p.cur().Kind == token.COMMA {
			p.advance()
			if err := p.parseCallArg(tok, params, argCount); err != nil {
				return nil, err
			}
			argCount++
		}
	}
	if _, err := p.expect(token.RPAR); err != nil {
		return nil, err
	}

	if argCount != len(params) {
		word := "too many arguments"
		if argCount < len(params) {
			word = "too few arguments"
		}
		return nil, &errs.InvalidType{Line: tok.Line, Msg: word + " in call to " + tok.Sval}
	}

	switch f := fn.(type) {
	case *symbols.Function:
		addr := p.code.Call(0)
		p.pendingCalls = append(p.pendingCalls, pendingCall{addr: addr, fn: f})
	case *symbols.ExternalFunction:
		p.code.CallExt(f.FuncName)
	}

	if fn.ReturnType().Base == types.Void {
		return rvalue(types.Scalar(types.Void)), nil
	}
	return rvalue(fn.ReturnType()), nil
}

// parseCallArg parses, converts and pushes one call argument. Arguments
// beyond the declared parameter count are still parsed (the grammar
// requires it) but not type-checked; parseCall reports the arity mismatch
// once the whole list has been counted.
func (p *Parser) parseCallArg(tok token.Token, params []*symbols.Parameter, idx int) error {
	arg, err := p.parseExpr()
	if err != nil {
		return err
	}
	val, err := p.rval(arg)
	if err != nil {
		return err
	}
	if val.Type.Base == types.StructBase && val.Type.Dim == types.DimScalar {
		return &errs.InvalidType{Line: tok.Line, Msg: "cannot pass a whole struct value as an argument; pass its members instead"}
	}
	if idx >= len(params) {
		return nil
	}
	if !val.Type.CanCastTo(params[idx].Type) {
		return &errs.TypeCast{Line: tok.Line, From: val.Type.String(), To: params[idx].Type.String()}
	}
	p.emitConvert(val.Type, params[idx].Type)
	return nil
}
