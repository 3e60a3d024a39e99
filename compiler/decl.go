package compiler

import (
	"github.com/codeassociates/atomc/internal/errs"
	"github.com/codeassociates/atomc/symbols"
	"github.com/codeassociates/atomc/token"
	"github.com/codeassociates/atomc/types"
)

// varSink is how parseVarDef hands a freshly-parsed "typeBase ID
// arrayDecl?" declaration back to its caller: the three contexts a varDef
// can appear in (global scope, a struct's member list, a function body)
// each register the resulting variable differently (globalVarSink,
// structMemberSink, localVarSink), but share the same parse once they've
// settled on this one callback shape.
type varSink func(name string, t types.Type, line int) error

// globalVarSink registers a global variable: domain uniqueness plus the
// next global storage slot (global_variable_index).
func (p *Parser) globalVarSink() varSink {
	return func(name string, t types.Type, line int) error {
		v := &symbols.Variable{VarName: name, Type: t}
		if err := p.ds.AddToCurrent(v, line); err != nil {
			return err
		}
		v.Index = p.globalOffset
		p.globalOffset += t.SlotSize()
		return nil
	}
}

// structMemberSink registers a struct member: name uniqueness is checked
// against the struct's own private domain (pushed by the caller), and the
// member is appended to def's layout, never to the global table.
func (p *Parser) structMemberSink(def *symbols.StructDef) varSink {
	return func(name string, t types.Type, line int) error {
		v := &symbols.Variable{VarName: name, Type: t}
		if err := p.ds.AddToCurrent(v, line); err != nil {
			return err
		}
		def.AddMember(v)
		return nil
	}
}

// localVarSink registers a local variable of the current function: domain
// uniqueness in the statement's own nested scope, storage in curFn's
// locals area.
func (p *Parser) localVarSink() varSink {
	return func(name string, t types.Type, line int) error {
		v := &symbols.Variable{VarName: name, Type: t}
		if err := p.ds.AddToCurrent(v, line); err != nil {
			return err
		}
		p.curFn.AddLocal(v)
		return nil
	}
}

// parseStructDef is `STRUCT ID LACC varDef* RACC SEMICOLON`. A
// struct's members live in their own private domain so a member name may
// shadow an outer declaration (struct-private-domain rule);
// that domain is used only for the redefinition check, member storage
// itself always goes through StructDef.AddMember.
func (p *Parser) parseStructDef() error {
	if _, err := p.expect(token.STRUCT); err != nil {
		return err
	}
	nameTok, err := p.expect(token.ID)
	if err != nil {
		return err
	}
	def := symbols.NewStructDef(nameTok.Sval)
	if err := p.ds.AddToCurrent(def, nameTok.Line); err != nil {
		return err
	}
	if _, err := p.expect(token.LACC); err != nil {
		return err
	}

	p.ds.Push()
	sink := p.structMemberSink(def)
	for p.cur().Kind != token.RACC {
		if err := p.parseVarDef(sink); err != nil {
			p.ds.Pop()
			return err
		}
	}
	p.ds.Pop()

	if _, err := p.expect(token.RACC); err != nil {
		return err
	}
	_, err = p.expect(token.SEMICOLON)
	return err
}

// parseVarDef is `typeBase ID arrayDecl? SEMICOLON`, with the
// registered-variable's destination supplied by the caller via sink so the
// same parse serves globals, struct members, and locals alike.
func (p *Parser) parseVarDef(sink varSink) error {
	base, err := p.parseTypeBase()
	if err != nil {
		return err
	}
	nameTok, err := p.expect(token.ID)
	if err != nil {
		return err
	}
	t := base
	if p.cur().Kind == token.LBRACKET {
		t, err = p.parseArrayDecl(base, nameTok)
		if err != nil {
			return err
		}
		if t.Dim == types.DimPointer {
			return &errs.InvalidArraySize{Line: nameTok.Line, Name: nameTok.Sval}
		}
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return err
	}
	return sink(nameTok.Sval, t, nameTok.Line)
}

// parseTypeBase is `INT | DOUBLE | CHAR | STRUCT ID`. VOID is
// handled separately by parseFnDef, since void is only ever a return type,
// never a variable's type.
func (p *Parser) parseTypeBase() (types.Type, error) {
	tok := p.advance()
	switch tok.Kind {
	case token.INT:
		return types.Scalar(types.Int), nil
	case token.DOUBLE:
		return types.Scalar(types.Double), nil
	case token.CHAR:
		return types.Scalar(types.Char), nil
	case token.STRUCT:
		nameTok, err := p.expect(token.ID)
		if err != nil {
			return types.Type{}, err
		}
		def, err := p.ds.FindStructDef(nameTok.Sval, nameTok.Line)
		if err != nil {
			return types.Type{}, err
		}
		return types.StructType(def), nil
	default:
		return types.Type{}, p.syntaxErr(tok.Line, "expected a type, found %s", tok.Kind)
	}
}

// parseArrayDecl is `LBRACKET CT_INT? RBRACKET`: a present, positive
// integer constant makes a fixed-size array; an absent size makes an open
// array (decays to a pointer, dim==0). Zero or negative sizes are
// rejected by design InvalidArraySize rule.
func (p *Parser) parseArrayDecl(base types.Type, nameTok token.Token) (types.Type, error) {
	if _, err := p.expect(token.LBRACKET); err != nil {
		return types.Type{}, err
	}
	hasSize := false
	size := 0
	if p.cur().Kind == token.CT_INT {
		sizeTok := p.advance()
		hasSize = true
		size = sizeTok.Ival
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return types.Type{}, err
	}
	if !hasSize {
		return types.Type{Base: base.Base, Dim: types.DimPointer, Struct: base.Struct}, nil
	}
	if size <= 0 {
		return types.Type{}, &errs.InvalidArraySize{Line: nameTok.Line, Name: nameTok.Sval}
	}
	return types.Type{Base: base.Base, Dim: size, Struct: base.Struct}, nil
}

// parseFnDef is `(typeBase | VOID) ID LPAR (fnParam (COMMA fnParam)*)?
// RPAR stmCompound`. Parameters and the body's top-level
// statements share one domain (a function's own stmCompound
// does not open a second scope over its parameters), so this pushes
// exactly one domain for the whole definition and calls parseStmCompound
// in "shared domain" mode for the body.
//
// ENTER's local-count operand is patched at the end, once every local the
// body declared (including hidden comparison temporaries — see
// allocTemp) is known; falling off the end of the body always reaches a
// RET_VOID safety net, the code-side analogue of the original always
// stopping at a known instruction rather than running into whatever
// follows in the flat code buffer.
func (p *Parser) parseFnDef() error {
	var retType types.Type
	if p.cur().Kind == token.VOID {
		p.advance()
		retType = types.Scalar(types.Void)
	} else {
		t, err := p.parseTypeBase()
		if err != nil {
			return err
		}
		retType = t
	}

	nameTok, err := p.expect(token.ID)
	if err != nil {
		return err
	}
	fn := symbols.NewFunction(nameTok.Sval, retType)
	if err := p.ds.AddToCurrent(fn, nameTok.Line); err != nil {
		return err
	}
	fn.AddrLabel = p.code.Len()

	if _, err := p.expect(token.LPAR); err != nil {
		return err
	}
	p.ds.Push()

	if p.cur().Kind != token.RPAR {
		if err := p.parseFnParam(fn); err != nil {
			p.ds.Pop()
			return err
		}
		for p.cur().Kind == token.COMMA {
			p.advance()
			if err := p.parseFnParam(fn); err != nil {
				p.ds.Pop()
				return err
			}
		}
	}
	if _, err := p.expect(token.RPAR); err != nil {
		p.ds.Pop()
		return err
	}

	enterAddr := p.code.Enter(0)

	prevFn, prevLoop := p.curFn, p.loopDepth
	p.curFn, p.loopDepth = fn, 0

	bodyErr := p.parseStmCompound(false)

	p.ds.Pop()
	p.curFn, p.loopDepth = prevFn, prevLoop
	if bodyErr != nil {
		return bodyErr
	}

	p.code.RetVoid(fn.ParamAreaSize())
	p.code.Patch(enterAddr, fn.LocalAreaSize())
	return nil
}

// parseFnParam is `typeBase ID arrayDecl?`. An array-typed
// parameter decays to a pointer to its element type regardless of any
// declared size, the same decay C applies to array parameters: the callee
// never owns the storage, so carrying a length in the type would be
// meaningless, and decaying here makes every array parameter exactly one
// VM slot.
func (p *Parser) parseFnParam(fn *symbols.Function) error {
	base, err := p.parseTypeBase()
	if err != nil {
		return err
	}
	nameTok, err := p.expect(token.ID)
	if err != nil {
		return err
	}
	t := base
	if p.cur().Kind == token.LBRACKET {
		t, err = p.parseArrayDecl(base, nameTok)
		if err != nil {
			return err
		}
	}
	if t.Dim > 0 {
		t = types.Type{Base: t.Base, Dim: types.DimPointer, Struct: t.Struct}
	}

	param := &symbols.Parameter{ParamName: nameTok.Sval, Type: t}
	if err := p.ds.AddToCurrent(param, nameTok.Line); err != nil {
		return err
	}
	fn.AddParam(param)
	return nil
}
