// Package vm implements the AtomC execution stack and dispatch loop.
// Grounded on atomc/virtual_machine/stack.py (Stack.push/pop/fp_load/
// fp_store/create_function_frame/recover_function_frame) and
// atomc/virtual_machine/vm.py (external_function_map,
// call_external_function).
package vm

import "github.com/codeassociates/atomc/internal/errs"

// Stack is the VM's single flat memory: global variables occupy cells
// [0, globalBase), and the call/evaluation stack grows above that.
// Globals and frame-relative storage share one address space, so ADDR
// and FPADDR_* both push a plain absolute cell index and LOAD_*/STORE_*
// need no address tag to tell them apart. Each cell holds an untyped
// value; the opcode executing it determines how it is interpreted, not
// a tag on the cell itself.
type Stack struct {
	cells      []any
	fp         int
	globalBase int
}

// NewStack allocates a stack with globalSize cells of global storage
// pre-reserved at the bottom (cells 0..globalSize-1), zero-initialized.
func NewStack(globalSize int) *Stack {
	cells := make([]any, globalSize)
	for i := range cells {
		cells[i] = 0
	}
	return &Stack{cells: cells, fp: -1, globalBase: globalSize}
}

// sp is the index of the top cell, or globalBase-1 when the call stack is
// empty.
func (s *Stack) sp() int { return len(s.cells) - 1 }

// Size returns the number of cells above the global area (the "stack
// size" printed by the original VM's trace lines).
func (s *Stack) Size() int { return len(s.cells) - s.globalBase }

// FP returns the current frame pointer (absolute cell index).
func (s *Stack) FP() int { return s.fp }

// Push appends a value to the top of the stack.
func (s *Stack) Push(v any) {
	s.cells = append(s.cells, v)
}

// Pop removes and returns the top value. EmptyStack fires when the call
// stack (above the global area) has nothing left to pop.
func (s *Stack) Pop() (any, error) {
	if s.sp() < s.globalBase {
		return nil, &errs.EmptyStack{}
	}
	v := s.cells[s.sp()]
	s.cells = s.cells[:s.sp()]
	return v, nil
}

// Peek returns the top value without removing it.
func (s *Stack) Peek() (any, error) {
	if s.sp() < s.globalBase {
		return nil, &errs.EmptyStack{}
	}
	return s.cells[s.sp()], nil
}

// At returns the absolute cell at idx, bounds-checked against [0, sp]
// ("fp+off must lie in [bp, sp]"; bp here is 0, the bottom of
// the global area, since global addresses are always valid to read).
func (s *Stack) At(idx int) (any, error) {
	if idx < 0 || idx > s.sp() {
		return nil, &errs.OutOfBounds{Offset: idx}
	}
	return s.cells[idx], nil
}

// SetAt stores a value at absolute cell idx, used by LOAD_*/STORE_* and
// ADDR/FPADDR_*-targeted writes.
func (s *Stack) SetAt(idx int, v any) error {
	if idx < 0 || idx > s.sp() {
		return &errs.OutOfBounds{Offset: idx}
	}
	s.cells[idx] = v
	return nil
}

// FpLoad reads the cell at fp+offset.
func (s *Stack) FpLoad(offset int) (any, error) {
	return s.At(s.fp + offset)
}

// FpStore writes value at fp+offset.
func (s *Stack) FpStore(offset int, value any) error {
	return s.SetAt(s.fp+offset, value)
}

// FpAddr returns the absolute address of fp+offset, the value FPADDR_I/F
// pushes.
func (s *Stack) FpAddr(offset int) int {
	return s.fp + offset
}

// CreateFunctionFrame pushes the current fp, moves fp to that slot, and
// reserves localNum cells above it for the callee's locals.
func (s *Stack) CreateFunctionFrame(localNum int) {
	s.Push(s.fp)
	s.fp = s.sp()
	for i := 0; i < localNum; i++ {
		s.Push(0)
	}
}

// RecoverFunctionFrame restores the caller's stack and frame pointer:
// sp := fp; fp := pop (Open Question 3 — the semantically
// correct rule, not the buggy `sp -= fp` some source revisions used).
func (s *Stack) RecoverFunctionFrame() error {
	s.cells = s.cells[:s.fp+1]
	saved, err := s.Pop()
	if err != nil {
		return err
	}
	fp, ok := saved.(int)
	if !ok {
		return &errs.OutOfBounds{Offset: s.fp}
	}
	s.fp = fp
	return nil
}
