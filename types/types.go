// Package types implements the AtomC type system: base types, composite
// Type{Base, Dim}, and the casting/arithmetic compatibility tables.
// Grounded on atomc/domain_analyzer/type.py, redesigned from an
// inheritance hierarchy to a small enum with a capability method (Size).
package types

import "fmt"

// Base identifies a scalar or structured base type.
type Base int

const (
	Int Base = iota
	Double
	Char
	Void
	StructBase
)

func (b Base) String() string {
	switch b {
	case Int:
		return "int"
	case Double:
		return "double"
	case Char:
		return "char"
	case Void:
		return "void"
	case StructBase:
		return "struct"
	default:
		return "?"
	}
}

// pointerWidth is the native pointer size used to size open arrays/pointers.
// AtomC's VM never dereferences raw host memory (see vm.Stack); this width
// only feeds the byte sizes Size reports, while VM layout uses SlotSize.
const pointerWidth = 8

// baseSize returns the byte size of a non-struct base type.
func baseSize(b Base) int {
	switch b {
	case Int:
		return 4
	case Double:
		return 8
	case Char:
		return 1
	case Void:
		return 0
	default:
		return 0
	}
}

// StructLayout is the minimal view of a struct definition the type system
// needs: its name (for diagnostics/identity) and its total size. The
// concrete definition lives in package symbols; this interface breaks the
// import cycle (symbols needs Type, Type needs struct size).
type StructLayout interface {
	StructName() string
	StructSize() int
	StructSlotSize() int
}

// Type is (base, dim): dim == -1 is scalar, dim == 0 is an open
// array/pointer, dim > 0 is a fixed array of dim elements.
type Type struct {
	Base   Base
	Dim    int
	Struct StructLayout // non-nil iff Base == StructBase
}

const (
	DimScalar  = -1
	DimPointer = 0
)

func Scalar(b Base) Type       { return Type{Base: b, Dim: DimScalar} }
func Pointer(b Base) Type      { return Type{Base: b, Dim: DimPointer} }
func Array(b Base, n int) Type { return Type{Base: b, Dim: n} }

func StructType(def StructLayout) Type {
	return Type{Base: StructBase, Dim: DimScalar, Struct: def}
}

func (t Type) String() string {
	var base string
	if t.Base == StructBase && t.Struct != nil {
		base = "struct " + t.Struct.StructName()
	} else {
		base = t.Base.String()
	}
	switch {
	case t.Dim == DimPointer:
		return base + "[]"
	case t.Dim > 0:
		return fmt.Sprintf("%s[%d]", base, t.Dim)
	default:
		return base
	}
}

// IsScalar reports whether t denotes a single scalar value (dim == -1).
// Array-typed and pointer-typed expressions are never scalar.
func (t Type) IsScalar() bool {
	return t.Dim == DimScalar
}

// baseSizeOf returns the per-element size of t's base.
func (t Type) baseSizeOf() int {
	if t.Base == StructBase {
		if t.Struct == nil {
			return 0
		}
		return t.Struct.StructSize()
	}
	return baseSize(t.Base)
}

// Size computes the byte size of t by design:
// size(scalar) = base size; size(pointer) = pointer width;
// size(array n) = n * base size; size(struct) = sum of member sizes.
// Reported by Variable.Size, Parameter.Size and StructDef.StructSize — see SlotSize
// for the unit FPLOAD/FPSTORE/ADDR offsets are actually expressed in.
func (t Type) Size() int {
	switch {
	case t.Dim == DimPointer:
		return pointerWidth
	case t.Dim > 0:
		return t.Dim * t.baseSizeOf()
	default:
		return t.baseSizeOf()
	}
}

// baseSlotSizeOf returns the number of VM cells one element of t's base
// occupies: 1 for every scalar base, or the struct's own slot count.
func (t Type) baseSlotSizeOf() int {
	if t.Base == StructBase {
		if t.Struct == nil {
			return 0
		}
		return t.Struct.StructSlotSize()
	}
	return 1
}

// SlotSize computes t's footprint in VM stack cells: the unit
// symbols.Variable/Parameter/StructDef layout offsets are expressed in,
// and so the unit FPLOAD/FPSTORE/ADDR/ENTER operands use (Open
// Question 1/2; explicitly allows "one slot for the
// boxed-cell implementation"). A pointer/open-array value is always one
// cell (a bare address); a fixed array of n elements is n cells of its
// element's slot size; a struct is the sum of its members' slot sizes.
func (t Type) SlotSize() int {
	switch {
	case t.Dim == DimPointer:
		return 1
	case t.Dim > 0:
		return t.Dim * t.baseSlotSizeOf()
	default:
		return t.baseSlotSizeOf()
	}
}

// ElementOf returns the element type of an array or pointer type t (dim >=
// 0): the same base, now scalar (AtomC has no nested arrays, so an
// element is always scalar).
func (t Type) ElementOf() Type {
	return Type{Base: t.Base, Dim: DimScalar, Struct: t.Struct}
}

// sameStruct reports whether two struct types name the same definition,
// identity by StructDef reference.
func sameStruct(a, b Type) bool {
	return a.Struct != nil && b.Struct != nil && a.Struct == b.Struct
}

// scalarCastTable enumerates the scalar↔scalar casts that are always legal
// ("scalar↔scalar among {int,double,char} freely").
var scalarCastTable = map[Base]map[Base]bool{
	Int:    {Int: true, Double: true, Char: true},
	Double: {Int: true, Double: true, Char: true},
	Char:   {Int: true, Double: true, Char: true},
}

// CanCastTo reports whether a value of type src may be cast to type dst,
// per the table in :
// - pointer↔pointer allowed (both dim >= 0)
// - non-pointer → pointer forbidden
// - scalar↔scalar per scalarCastTable
// - struct only to an identical struct (identity by StructDef reference)
func (src Type) CanCastTo(dst Type) bool {
	srcIsPointer := src.Dim >= 0
	dstIsPointer := dst.Dim >= 0

	if src.Base == StructBase || dst.Base == StructBase {
		if src.Base != StructBase || dst.Base != StructBase {
			return false
		}
		return sameStruct(src, dst)
	}

	if dstIsPointer && !srcIsPointer {
		return false
	}
	if srcIsPointer && dstIsPointer {
		return true
	}
	if srcIsPointer != dstIsPointer {
		return false
	}
	return scalarCastTable[src.Base][dst.Base]
}

// arithResultTable is the arithmetic result-type table from :
// int∘int→int, int∘double→double, int∘char→int, double∘*→double,
// char∘char→char. Struct and pointer operands are never arithmetic.
var arithResultTable = map[Base]map[Base]Base{
	Int:    {Int: Int, Double: Double, Char: Int},
	Double: {Int: Double, Double: Double, Char: Double},
	Char:   {Int: Int, Double: Double, Char: Char},
}

// Arith returns the result type of combining a and b arithmetically, and
// false iff either operand is non-scalar or not one of {int, double, char}.
func Arith(a, b Type) (Type, bool) {
	if !a.IsScalar() || !b.IsScalar() {
		return Type{}, false
	}
	if a.Base == StructBase || b.Base == StructBase {
		return Type{}, false
	}
	row, ok := arithResultTable[a.Base]
	if !ok {
		return Type{}, false
	}
	result, ok := row[b.Base]
	if !ok {
		return Type{}, false
	}
	return Scalar(result), true
}
