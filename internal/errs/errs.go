// Package errs collects the AtomC error taxonomy from every compilation and
// execution phase behind concrete error types. Every kind carries the
// source line where applicable, and its message then begins with
// "line <N>: "; the CLI prints Cause(err) on standard error (see cmd/atomc).
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Lexical errors (component B).
type LexicalError struct {
	Line int
	Msg  string
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("line %d: lexical error: %s", e.Line, e.Msg)
}

// Syntax errors (component F, committed parser paths only).
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: syntax error: %s", e.Line, e.Msg)
}

// RedefinitionError fires when a domain already holds a symbol of that name.
type RedefinitionError struct {
	Line        int
	Name        string
	ExistingMsg string
	NewMsg      string
}

func (e *RedefinitionError) Error() string {
	return fmt.Sprintf("line %d: redefinition of %q (previously: %s; now: %s)",
		e.Line, e.Name, e.ExistingMsg, e.NewMsg)
}

// InvalidArraySize fires when a declared array dimension is not > 0.
type InvalidArraySize struct {
	Line int
	Name string
}

func (e *InvalidArraySize) Error() string {
	return fmt.Sprintf("line %d: invalid array size for %q: must be greater than 0", e.Line, e.Name)
}

// NoStructDef fires when "struct Foo" names an undefined struct.
type NoStructDef struct {
	Line int
	Name string
}

func (e *NoStructDef) Error() string {
	return fmt.Sprintf("line %d: no struct definition for %q", e.Line, e.Name)
}

// UndefinedId fires when an identifier does not resolve in the domain stack.
type UndefinedId struct {
	Line int
	Name string
}

func (e *UndefinedId) Error() string {
	return fmt.Sprintf("line %d: undefined identifier %q", e.Line, e.Name)
}

// UncallableId fires when a call site's callee is not a function symbol.
type UncallableId struct {
	Line int
	Name string
}

func (e *UncallableId) Error() string {
	return fmt.Sprintf("line %d: %q is not callable", e.Line, e.Name)
}

// NotLval fires when an assignment target is not an l-value.
type NotLval struct {
	Line int
}

func (e *NotLval) Error() string {
	return fmt.Sprintf("line %d: left-hand side of assignment is not an l-value", e.Line)
}

// ConstantTarget fires when an assignment target is a constant.
type ConstantTarget struct {
	Line int
}

func (e *ConstantTarget) Error() string {
	return fmt.Sprintf("line %d: cannot assign to a constant", e.Line)
}

// InvalidType fires wherever two types meet incompatibly.
type InvalidType struct {
	Line int
	Msg  string
}

func (e *InvalidType) Error() string {
	return fmt.Sprintf("line %d: type error: %s", e.Line, e.Msg)
}

// TypeCast fires when a cast is not permitted by the cast table.
type TypeCast struct {
	Line     int
	From, To string
}

func (e *TypeCast) Error() string {
	return fmt.Sprintf("line %d: cannot cast %s to %s", e.Line, e.From, e.To)
}

// BreakOutsideLoop fires when a break statement appears outside any
// while/for nesting.
type BreakOutsideLoop struct {
	Line int
}

func (e *BreakOutsideLoop) Error() string {
	return fmt.Sprintf("line %d: break outside of a loop", e.Line)
}

// EmptyStack is a fatal runtime error: pop/peek on an empty execution stack.
type EmptyStack struct{}

func (e *EmptyStack) Error() string { return "runtime error: empty stack" }

// OutOfBounds is a fatal runtime error: a frame-relative address fell
// outside [bp, sp].
type OutOfBounds struct {
	Offset int
}

func (e *OutOfBounds) Error() string {
	return fmt.Sprintf("runtime error: out of bounds stack access at offset %d", e.Offset)
}

// Wrap attaches a stack trace to err using pkg/errors and prefixes its
// message with context ("context: message"); Cause recovers err.
func Wrap(err error, context string) error {
	return errors.Wrap(err, context)
}

// Cause returns the innermost error wrapped by Wrap, preserving the original
// typed error kind for CLI formatting.
func Cause(err error) error {
	return errors.Cause(err)
}
