package vm

import (
	"github.com/codeassociates/atomc/codegen"
	"github.com/codeassociates/atomc/internal/errs"
)

// Tracer receives one line per executed instruction when tracing is
// enabled, replacing the earlier interpreter's unconditional per-opcode
// print.
type Tracer interface {
	Trace(ip int, stackSize int, instr codegen.Instruction)
}

// NoopTracer discards trace lines.
type NoopTracer struct{}

func (NoopTracer) Trace(int, int, codegen.Instruction) {}

// Interpreter is the VM's dispatch loop: ip runs over [0, len(code))
// until HALT sets it to -1.
type Interpreter struct {
	Code    *codegen.Code
	Stack   *Stack
	Externs *Registry
	Tracer  Tracer
}

// NewInterpreter builds an Interpreter over code, with globalSize cells of
// global storage and the given external-function registry.
func NewInterpreter(code *codegen.Code, globalSize int, externs *Registry) *Interpreter {
	return &Interpreter{
		Code:    code,
		Stack:   NewStack(globalSize),
		Externs: externs,
		Tracer:  NoopTracer{},
	}
}

// Run executes from ip = entry until HALT, returning any runtime error
// (EmptyStack/OutOfBounds are fatal by design).
func (vm *Interpreter) Run(entry int) error {
	ip := entry
	for ip != -1 {
		if ip < 0 || ip >= vm.Code.Len() {
			return &errs.OutOfBounds{Offset: ip}
		}
		instr := vm.Code.At(ip)
		vm.Tracer.Trace(ip, vm.Stack.Size(), instr)

		next, err := vm.step(ip, instr)
		if err != nil {
			return err
		}
		ip = next
	}
	return nil
}

func (vm *Interpreter) step(ip int, instr codegen.Instruction) (int, error) {
	switch instr.Op {
	case codegen.HALT:
		return -1, nil

	case codegen.CALL:
		vm.Stack.Push(ip + 1)
		return instr.ArgI, nil

	case codegen.CALL_EXT:
		if err := vm.Externs.Call(instr.Name, vm.Stack); err != nil {
			return 0, err
		}
		return ip + 1, nil

	case codegen.ENTER:
		vm.Stack.CreateFunctionFrame(instr.ArgI)
		return ip + 1, nil

	case codegen.RET:
		retVal, err := vm.Stack.Pop()
		if err != nil {
			return 0, err
		}
		if err := vm.Stack.RecoverFunctionFrame(); err != nil {
			return 0, err
		}
		retAddr, err := vm.popInt()
		if err != nil {
			return 0, err
		}
		if err := vm.dropN(instr.ArgI); err != nil {
			return 0, err
		}
		vm.Stack.Push(retVal)
		return retAddr, nil

	case codegen.RET_VOID:
		if err := vm.Stack.RecoverFunctionFrame(); err != nil {
			return 0, err
		}
		retAddr, err := vm.popInt()
		if err != nil {
			return 0, err
		}
		if err := vm.dropN(instr.ArgI); err != nil {
			return 0, err
		}
		return retAddr, nil

	case codegen.PUSH_I:
		vm.Stack.Push(instr.ArgI)
		return ip + 1, nil

	case codegen.PUSH_F:
		vm.Stack.Push(instr.ArgF)
		return ip + 1, nil

	case codegen.FPADDR_I, codegen.FPADDR_F:
		vm.Stack.Push(vm.Stack.FpAddr(instr.ArgI))
		return ip + 1, nil

	case codegen.FPLOAD:
		v, err := vm.Stack.FpLoad(instr.ArgI)
		if err != nil {
			return 0, err
		}
		vm.Stack.Push(v)
		return ip + 1, nil

	case codegen.FPSTORE:
		v, err := vm.Stack.Pop()
		if err != nil {
			return 0, err
		}
		if err := vm.Stack.FpStore(instr.ArgI, v); err != nil {
			return 0, err
		}
		return ip + 1, nil

	case codegen.LOAD_I, codegen.LOAD_F:
		addr, err := vm.popInt()
		if err != nil {
			return 0, err
		}
		v, err := vm.Stack.At(addr)
		if err != nil {
			return 0, err
		}
		vm.Stack.Push(v)
		return ip + 1, nil

	case codegen.STORE_I, codegen.STORE_F:
		value, err := vm.Stack.Pop()
		if err != nil {
			return 0, err
		}
		addr, err := vm.popInt()
		if err != nil {
			return 0, err
		}
		if err := vm.Stack.SetAt(addr, value); err != nil {
			return 0, err
		}
		vm.Stack.Push(value)
		return ip + 1, nil

	case codegen.ADDR:
		vm.Stack.Push(instr.ArgI)
		return ip + 1, nil

	case codegen.DROP:
		if _, err := vm.Stack.Pop(); err != nil {
			return 0, err
		}
		return ip + 1, nil

	case codegen.CONV_I_F:
		iv, err := vm.popInt()
		if err != nil {
			return 0, err
		}
		vm.Stack.Push(float64(iv))
		return ip + 1, nil

	case codegen.CONV_F_I:
		fv, err := vm.popFloat()
		if err != nil {
			return 0, err
		}
		vm.Stack.Push(int(fv))
		return ip + 1, nil

	case codegen.JMP:
		return instr.ArgI, nil

	case codegen.JF:
		cond, err := vm.popInt()
		if err != nil {
			return 0, err
		}
		if cond == 0 {
			return instr.ArgI, nil
		}
		return ip + 1, nil

	case codegen.JT:
		cond, err := vm.popInt()
		if err != nil {
			return 0, err
		}
		if cond != 0 {
			return instr.ArgI, nil
		}
		return ip + 1, nil

	case codegen.ADD_I:
		return ip + 1, vm.binInt(func(a, b int) int { return a + b })
	case codegen.SUB_I:
		return ip + 1, vm.binInt(func(a, b int) int { return a - b })
	case codegen.MUL_I:
		return ip + 1, vm.binInt(func(a, b int) int { return a * b })
	case codegen.DIV_I:
		return ip + 1, vm.binInt(func(a, b int) int { return a / b })
	case codegen.LESS_I:
		return ip + 1, vm.cmpInt(func(a, b int) bool { return a < b })

	case codegen.ADD_F:
		return ip + 1, vm.binFloat(func(a, b float64) float64 { return a + b })
	case codegen.SUB_F:
		return ip + 1, vm.binFloat(func(a, b float64) float64 { return a - b })
	case codegen.MUL_F:
		return ip + 1, vm.binFloat(func(a, b float64) float64 { return a * b })
	case codegen.DIV_F:
		return ip + 1, vm.binFloat(func(a, b float64) float64 { return a / b })
	case codegen.LESS_F:
		return ip + 1, vm.cmpFloat(func(a, b float64) bool { return a < b })

	default:
		return 0, &errs.OutOfBounds{Offset: ip}
	}
}

// dropN discards the n argument cells a caller pushed before CALL, which
// RecoverFunctionFrame's sp:=fp truncation does not reach: the matching
// RET/RET_VOID must restore sp and fp to the caller's values, or every
// call leaks one cell per argument.
func (vm *Interpreter) dropN(n int) error {
	for i := 0; i < n; i++ {
		if _, err := vm.Stack.Pop(); err != nil {
			return err
		}
	}
	return nil
}

func (vm *Interpreter) popInt() (int, error) {
	v, err := vm.Stack.Pop()
	if err != nil {
		return 0, err
	}
	iv, ok := v.(int)
	if !ok {
		return 0, &errs.OutOfBounds{Offset: vm.Stack.sp()}
	}
	return iv, nil
}

func (vm *Interpreter) popFloat() (float64, error) {
	v, err := vm.Stack.Pop()
	if err != nil {
		return 0, err
	}
	fv, ok := v.(float64)
	if !ok {
		return 0, &errs.OutOfBounds{Offset: vm.Stack.sp()}
	}
	return fv, nil
}

// binInt pops two int operands (operand_2 then operand_1, matching the
// source's pop order) and pushes op(operand_1, operand_2).
func (vm *Interpreter) binInt(op func(a, b int) int) error {
	b, err := vm.popInt()
	if err != nil {
		return err
	}
	a, err := vm.popInt()
	if err != nil {
		return err
	}
	vm.Stack.Push(op(a, b))
	return nil
}

func (vm *Interpreter) binFloat(op func(a, b float64) float64) error {
	b, err := vm.popFloat()
	if err != nil {
		return err
	}
	a, err := vm.popFloat()
	if err != nil {
		return err
	}
	vm.Stack.Push(op(a, b))
	return nil
}

// cmpInt pops two int operands and pushes 1/0 for true/false, matching
// LESS_I's "push 0/1 per comparison" contract.
func (vm *Interpreter) cmpInt(op func(a, b int) bool) error {
	b, err := vm.popInt()
	if err != nil {
		return err
	}
	a, err := vm.popInt()
	if err != nil {
		return err
	}
	vm.Stack.Push(boolToInt(op(a, b)))
	return nil
}

func (vm *Interpreter) cmpFloat(op func(a, b float64) bool) error {
	b, err := vm.popFloat()
	if err != nil {
		return err
	}
	a, err := vm.popFloat()
	if err != nil {
		return err
	}
	vm.Stack.Push(boolToInt(op(a, b)))
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
