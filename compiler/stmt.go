package compiler

import (
	"github.com/codeassociates/atomc/internal/errs"
	"github.com/codeassociates/atomc/token"
	"github.com/codeassociates/atomc/types"
)

// parseStmCompound is `LACC (varDef | stm)* RACC`. ownDomain is
// false only for a function's own body (parseFnDef calls it directly,
// sharing the parameter domain); every nested compound statement passes
// true, opening its own domain (fnDef rule).
func (p *Parser) parseStmCompound(ownDomain bool) error {
	if _, err := p.expect(token.LACC); err != nil {
		return err
	}
	if ownDomain {
		p.ds.Push()
	}

	for p.cur().Kind != token.RACC {
		if err := p.parseStmCompoundItem(); err != nil {
			if ownDomain {
				p.ds.Pop()
			}
			return err
		}
	}

	if ownDomain {
		p.ds.Pop()
	}
	_, err := p.expect(token.RACC)
	return err
}

// parseStmCompoundItem parses one element of a compound statement's body:
// a local varDef when a type keyword starts it, a stm otherwise.
func (p *Parser) parseStmCompoundItem() error {
	switch p.cur().Kind {
	case token.INT, token.DOUBLE, token.CHAR, token.STRUCT:
		return p.parseVarDef(p.localVarSink())
	default:
		return p.parseStm()
	}
}

// parseStm is the `stm` alternative list, dispatched by leading
// keyword; every other token starts the fallback `expr? SEMICOLON`.
func (p *Parser) parseStm() error {
	switch p.cur().Kind {
	case token.LACC:
		return p.parseStmCompound(true)
	case token.IF:
		return p.parseIfStm()
	case token.WHILE:
		return p.parseWhileStm()
	case token.FOR:
		return p.parseForStm()
	case token.BREAK:
		return p.parseBreakStm()
	case token.RETURN:
		return p.parseReturnStm()
	default:
		return p.parseExprStm()
	}
}

// requireScalarCondition enforces "if/while/for: condition must
// be scalar-typed" rule and normalizes the condition value left on top of
// stack to an int JF/JT can consume (see condValue in expr.go — a
// double-typed condition would otherwise make the VM's popInt panic).
func (p *Parser) requireScalarCondition(r *Returned, line int) error {
	_, err := p.condValue(r, line)
	return err
}

// parseIfStm is `IF LPAR expr RPAR stm (ELSE stm)?`. The condition's value
// (already normalized to an r-value by exprAssign's caller) drives a JF
// whose target is patched to either the else-branch's start or, with no
// else, straight past the then-branch; an else branch also needs an
// unconditional JMP at the end of the then-branch to skip over it.
func (p *Parser) parseIfStm() error {
	p.advance() // IF
	if _, err := p.expect(token.LPAR); err != nil {
		return err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return err
	}
	if err := p.requireScalarCondition(cond, p.line()); err != nil {
		return err
	}
	if _, err := p.expect(token.RPAR); err != nil {
		return err
	}

	jf := p.code.Jf(0)
	if err := p.parseStm(); err != nil {
		return err
	}

	if p.cur().Kind == token.ELSE {
		p.advance()
		jmpEnd := p.code.Jmp(0)
		p.code.Patch(jf, p.code.Len())
		if err := p.parseStm(); err != nil {
			return err
		}
		p.code.Patch(jmpEnd, p.code.Len())
		return nil
	}

	p.code.Patch(jf, p.code.Len())
	return nil
}

// parseWhileStm is `WHILE LPAR expr RPAR stm`: standard "test at top, jump
// back to test" loop, the pattern every example repo's interpreter loops
// use, here driven with an explicit code address instead of a label.
func (p *Parser) parseWhileStm() error {
	p.advance() // WHILE
	if _, err := p.expect(token.LPAR); err != nil {
		return err
	}
	condAddr := p.code.Len()
	cond, err := p.parseExpr()
	if err != nil {
		return err
	}
	if err := p.requireScalarCondition(cond, p.line()); err != nil {
		return err
	}
	if _, err := p.expect(token.RPAR); err != nil {
		return err
	}

	jf := p.code.Jf(0)
	p.pushLoop()
	bodyErr := p.parseStm()
	breaks := p.popLoop()
	if bodyErr != nil {
		return bodyErr
	}

	p.code.Jmp(condAddr)
	end := p.code.Len()
	p.code.Patch(jf, end)
	for _, addr := range breaks {
		p.code.Patch(addr, end)
	}
	return nil
}

// parseForStm is `FOR LPAR expr? SEMICOLON expr? SEMICOLON expr? RPAR stm`.
// The step expression is written textually before the body but must
// execute after each iteration; since the code buffer is append-only
// (nothing can be inserted behind already-emitted body code), the step is
// instead emitted where it's parsed — right after the condition — wrapped
// in jumps: the condition falls through to a JMP over the step into the
// body, and the body falls through to a JMP back into the step, which
// itself falls through to a JMP back to the condition. Four jumps in
// total, the standard textbook transformation for a test-at-top loop with
// a displaced step.
func (p *Parser) parseForStm() error {
	p.advance() // FOR
	if _, err := p.expect(token.LPAR); err != nil {
		return err
	}

	if p.cur().Kind != token.SEMICOLON {
		if err := p.parseExprDiscard(); err != nil {
			return err
		}
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return err
	}

	condAddr := p.code.Len()
	hasCond := p.cur().Kind != token.SEMICOLON
	var jf int
	if hasCond {
		cond, err := p.parseExpr()
		if err != nil {
			return err
		}
		if err := p.requireScalarCondition(cond, p.line()); err != nil {
			return err
		}
		jf = p.code.Jf(0)
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return err
	}

	jmpToBody := p.code.Jmp(0)
	stepAddr := p.code.Len()
	if p.cur().Kind != token.RPAR {
		if err := p.parseExprDiscard(); err != nil {
			return err
		}
	}
	p.code.Jmp(condAddr)

	if _, err := p.expect(token.RPAR); err != nil {
		return err
	}

	p.code.Patch(jmpToBody, p.code.Len())
	p.pushLoop()
	bodyErr := p.parseStm()
	breaks := p.popLoop()
	if bodyErr != nil {
		return bodyErr
	}
	p.code.Jmp(stepAddr)

	end := p.code.Len()
	if hasCond {
		p.code.Patch(jf, end)
	}
	for _, addr := range breaks {
		p.code.Patch(addr, end)
	}
	return nil
}

// parseBreakStm is `BREAK SEMICOLON`, valid only nested inside a while/for
// body.
func (p *Parser) parseBreakStm() error {
	tok := p.advance() // BREAK
	if p.loopDepth == 0 {
		return &errs.BreakOutsideLoop{Line: tok.Line}
	}
	addr := p.code.Jmp(0)
	p.recordBreak(addr)
	_, err := p.expect(token.SEMICOLON)
	return err
}

// parseReturnStm is `RETURN expr? SEMICOLON`: a void function forbids a
// value, a non-void function requires one castable to its declared
// return type.
func (p *Parser) parseReturnStm() error {
	tok := p.advance() // RETURN
	retType := p.curFn.RetType

	if p.cur().Kind == token.SEMICOLON {
		p.advance()
		if retType.Base != types.Void {
			return &errs.InvalidType{Line: tok.Line, Msg: "missing return value in a non-void function"}
		}
		p.code.RetVoid(p.curFn.ParamAreaSize())
		return nil
	}

	if retType.Base == types.Void {
		return &errs.InvalidType{Line: tok.Line, Msg: "void function cannot return a value"}
	}

	ret, err := p.parseExpr()
	if err != nil {
		return err
	}
	val, err := p.rval(ret)
	if err != nil {
		return err
	}
	if val.Type.Base == types.StructBase && val.Type.Dim == types.DimScalar {
		return &errs.InvalidType{Line: tok.Line, Msg: "cannot return a whole struct value; return its members instead"}
	}
	if !val.Type.CanCastTo(retType) {
		return &errs.TypeCast{Line: tok.Line, From: val.Type.String(), To: retType.String()}
	}
	p.emitConvert(val.Type, retType)

	if _, err := p.expect(token.SEMICOLON); err != nil {
		return err
	}
	p.code.Ret(p.curFn.ParamAreaSize())
	return nil
}

// parseExprStm is the fallback `expr? SEMICOLON` alternative.
func (p *Parser) parseExprStm() error {
	if p.cur().Kind != token.SEMICOLON {
		if err := p.parseExprDiscard(); err != nil {
			return err
		}
	}
	_, err := p.expect(token.SEMICOLON)
	return err
}

// parseExprDiscard parses one expr used purely for its side effects (an
// expression statement, or a for-loop's init/step clause) and drops its
// value, unless the expression was a void call, which left nothing to
// drop.
func (p *Parser) parseExprDiscard() error {
	ret, err := p.parseExpr()
	if err != nil {
		return err
	}
	if ret.Type.Base != types.Void {
		p.code.Drop()
	}
	return nil
}
