// Package symbols implements the compile-time symbol model :
// Variable, Parameter, Function, ExternalFunction and StructDef, each
// carrying the layout information (slot offset, size) the VM later uses to
// address storage. Grounded on atomc/domain_analyzer/symbol.py, redesigned
// by design from a Symbol inheritance hierarchy into a small Kind tag plus
// a narrow Symbol interface (source-pattern → redesign mapping).
package symbols

import "github.com/codeassociates/atomc/types"

// Kind tags the concrete symbol variant, replacing the source's class
// hierarchy with a closed enum.
type Kind int

const (
	KindVariable Kind = iota
	KindParameter
	KindFunction
	KindExternalFunction
	KindStructDef
)

// Symbol is the capability every variant provides: a name and a kind.
type Symbol interface {
	Name() string
	Kind() Kind
}

// Owner identifies where a Variable/Parameter's index is relative to: the
// global table, a Function's locals/params area, or a StructDef's layout.
type Owner interface {
	Symbol
}

// Variable is a non-functional symbol with a type, an owner, and a slot
// offset (index) within that owner's storage area. Index is measured in VM
// stack cells (types.Type.SlotSize), not bytes — the VM's Stack holds one
// value per cell, so a cell-addressed offset is what FPLOAD/FPSTORE/ADDR
// actually need (Open Question 1/2).
type Variable struct {
	VarName string
	Type    types.Type
	Owner   Owner // nil means global
	Index   int   // slot offset within owner's storage
}

func (v *Variable) Name() string { return v.VarName }
func (v *Variable) Kind() Kind   { return KindVariable }
func (v *Variable) Size() int    { return v.Type.Size() }

// Parameter is a function parameter: same shape as Variable, indexed by
// slot offset within the function's parameter area (Open Question
// 1 — params and locals are both packed one VM cell per scalar unit).
type Parameter struct {
	ParamName string
	Type      types.Type
	Owner     Owner
	Index     int
}

func (p *Parameter) Name() string { return p.ParamName }
func (p *Parameter) Kind() Kind   { return KindParameter }
func (p *Parameter) Size() int    { return p.Type.Size() }

// Function is a user-defined AtomC function: declared return type, an
// ordered parameter list, an ordered local-variable list, and the running
// slot-offset counters used while the parser adds params/locals in
// declaration order.
type Function struct {
	FuncName  string
	RetType   types.Type
	Params    []*Parameter
	Locals    []*Variable
	paramIdx  int
	localIdx  int
	AddrLabel int // code address of the function's first instruction
}

func NewFunction(name string, retType types.Type) *Function {
	return &Function{FuncName: name, RetType: retType}
}

func (f *Function) Name() string { return f.FuncName }
func (f *Function) Kind() Kind   { return KindFunction }

// AddParam appends a parameter, assigning it the next slot offset within
// the function's parameter area.
func (f *Function) AddParam(p *Parameter) {
	p.Owner = f
	p.Index = f.paramIdx
	f.paramIdx += p.Type.SlotSize()
	f.Params = append(f.Params, p)
}

// AddLocal appends a local variable, assigning it the next slot offset
// within the function's locals area.
func (f *Function) AddLocal(v *Variable) {
	v.Owner = f
	v.Index = f.localIdx
	f.localIdx += v.Type.SlotSize()
	f.Locals = append(f.Locals, v)
}

// ParamAreaSize is the total number of VM cells reserved for this
// function's parameters (sum of parameter slot sizes).
func (f *Function) ParamAreaSize() int { return f.paramIdx }

// ParamFrameOffset converts a parameter's forward running index into the
// negative FPLOAD/FPSTORE offset it actually lives at. AddParam's running
// index is the parameter's cell offset from the start of the parameter
// area, and the frame layout (args below the saved return address and
// saved fp, fp itself pointing at the saved-fp cell) ends that area at
// fp-2, so it starts at fp-1-ParamAreaSize, giving offset = index -
// (ParamAreaSize + 1).
func (f *Function) ParamFrameOffset(p *Parameter) int {
	return p.Index - (f.ParamAreaSize() + 1)
}

// LocalFrameOffset converts a local's running index into its positive
// FPLOAD/FPSTORE offset: locals sit directly above the saved-fp cell, so
// the first local is fp+1.
func (f *Function) LocalFrameOffset(v *Variable) int {
	return v.Index + 1
}

// LocalAreaSize is the total number of VM cells reserved for this
// function's locals (the ENTER instruction's operand).
func (f *Function) LocalAreaSize() int { return f.localIdx }

// ExternalFunction is a host-provided builtin registered in the VM's
// external-function registry by name.
type ExternalFunction struct {
	FuncName string
	RetType  types.Type
	Params   []*Parameter
	paramIdx int
}

func NewExternalFunction(name string, retType types.Type) *ExternalFunction {
	return &ExternalFunction{FuncName: name, RetType: retType}
}

func (e *ExternalFunction) Name() string { return e.FuncName }
func (e *ExternalFunction) Kind() Kind   { return KindExternalFunction }

func (e *ExternalFunction) AddParam(p *Parameter) {
	p.Owner = e
	p.Index = e.paramIdx
	e.paramIdx += p.Type.SlotSize()
	e.Params = append(e.Params, p)
}

// AnyFunction is the shape shared by Function and ExternalFunction that
// call-site analysis needs: its parameter list and return type.
type AnyFunction interface {
	Symbol
	ParamList() []*Parameter
	ReturnType() types.Type
}

func (f *Function) ParamList() []*Parameter { return f.Params }
func (f *Function) ReturnType() types.Type  { return f.RetType }

func (e *ExternalFunction) ParamList() []*Parameter { return e.Params }
func (e *ExternalFunction) ReturnType() types.Type  { return e.RetType }

// StructDef is a struct type definition: an ordered member list with
// members packed at byte offsets (StructSize, diagnostic only) and slot
// offsets (StructSlotSize, what the VM actually indexes with) in
// declaration order.
type StructDef struct {
	DefName     string
	Members     []*Variable
	memberIndex int
}

func NewStructDef(name string) *StructDef { return &StructDef{DefName: name} }

func (s *StructDef) Name() string { return s.DefName }
func (s *StructDef) Kind() Kind   { return KindStructDef }

// StructName/StructSize/StructSlotSize implement types.StructLayout.
func (s *StructDef) StructName() string { return s.DefName }

func (s *StructDef) StructSize() int {
	total := 0
	for _, m := range s.Members {
		total += m.Size()
	}
	return total
}

// StructSlotSize is the struct's footprint in VM cells: the sum of its
// members' slot sizes, which is what a struct-typed local/param/member
// actually reserves on the stack.
func (s *StructDef) StructSlotSize() int {
	total := 0
	for _, m := range s.Members {
		total += m.Type.SlotSize()
	}
	return total
}

// AddMember appends a member, assigning it the next slot offset in the
// struct's layout.
func (s *StructDef) AddMember(m *Variable) {
	m.Owner = s
	m.Index = s.memberIndex
	s.memberIndex += m.Type.SlotSize()
	s.Members = append(s.Members, m)
}

// FindMember looks up a member by name, used by '.' field access.
func (s *StructDef) FindMember(name string) *Variable {
	for _, m := range s.Members {
		if m.Name() == name {
			return m
		}
	}
	return nil
}
