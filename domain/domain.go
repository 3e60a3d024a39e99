// Package domain implements the lexical scope chain used during parsing:
// an ordered collection of symbols with uniqueness-by-name (Domain), and a
// LIFO chain of domains with top-down lookup (DomainStack). Grounded on
// atomc/domain_analyzer/domain.py.
package domain

import (
	"github.com/codeassociates/atomc/internal/errs"
	"github.com/codeassociates/atomc/symbols"
)

// Domain is a named collection of symbols with uniqueness by name.
type Domain struct {
	symbolsByOrder []symbols.Symbol
}

// Add appends sym to the domain without checking for duplicates; callers
// that need the uniqueness guarantee should go through
// DomainStack.AddToCurrent.
func (d *Domain) Add(sym symbols.Symbol) {
	d.symbolsByOrder = append(d.symbolsByOrder, sym)
}

// Find returns the first symbol in the domain matching name, or nil.
func (d *Domain) Find(name string) symbols.Symbol {
	for _, s := range d.symbolsByOrder {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// Symbols returns the domain's symbols in declaration order.
func (d *Domain) Symbols() []symbols.Symbol {
	return d.symbolsByOrder
}

// DomainStack is a LIFO chain of Domains. Iteration and lookup must
// traverse top-down so nested scopes shadow outer ones.
type DomainStack struct {
	domains []*Domain
}

// NewDomainStack returns an empty DomainStack.
func NewDomainStack() *DomainStack {
	return &DomainStack{}
}

// Push opens a new, empty domain at the top of the stack.
func (ds *DomainStack) Push() {
	ds.domains = append(ds.domains, &Domain{})
}

// Pop closes the top-most domain. Popping an empty stack panics: it
// signals a compiler bug (scope push/pop must always balance), not a
// recoverable AtomC program error.
func (ds *DomainStack) Pop() {
	if len(ds.domains) == 0 {
		panic("domain: pop on empty DomainStack")
	}
	ds.domains = ds.domains[:len(ds.domains)-1]
}

// Peek returns the current (top-most) domain.
func (ds *DomainStack) Peek() *Domain {
	return ds.domains[len(ds.domains)-1]
}

// Global returns the bottom-most (global) domain.
func (ds *DomainStack) Global() *Domain {
	return ds.domains[0]
}

// AddToCurrent inserts sym into the current domain, failing with
// RedefinitionError if a symbol of that name is already present there
// (— uniqueness is per-domain, not across the whole stack).
func (ds *DomainStack) AddToCurrent(sym symbols.Symbol, line int) error {
	current := ds.Peek()
	if existing := current.Find(sym.Name()); existing != nil {
		return &errs.RedefinitionError{
			Line:        line,
			Name:        sym.Name(),
			ExistingMsg: describeKind(existing.Kind()),
			NewMsg:      describeKind(sym.Kind()),
		}
	}
	current.Add(sym)
	return nil
}

// Find traverses the stack top-down and returns the first matching
// symbol, or an UndefinedId error.
func (ds *DomainStack) Find(name string, line int) (symbols.Symbol, error) {
	for i := len(ds.domains) - 1; i >= 0; i-- {
		if s := ds.domains[i].Find(name); s != nil {
			return s, nil
		}
	}
	return nil, &errs.UndefinedId{Line: line, Name: name}
}

// FindStructDef searches only the global domain, by design.
func (ds *DomainStack) FindStructDef(name string, line int) (*symbols.StructDef, error) {
	sym := ds.Global().Find(name)
	if def, ok := sym.(*symbols.StructDef); ok {
		return def, nil
	}
	return nil, &errs.NoStructDef{Line: line, Name: name}
}

func describeKind(k symbols.Kind) string {
	switch k {
	case symbols.KindVariable:
		return "variable"
	case symbols.KindParameter:
		return "parameter"
	case symbols.KindFunction:
		return "function"
	case symbols.KindExternalFunction:
		return "external function"
	case symbols.KindStructDef:
		return "struct definition"
	default:
		return "symbol"
	}
}
