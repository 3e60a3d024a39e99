package codegen

import (
	"fmt"
	"strings"
)

// Code is the linear instruction buffer the parser emits into. Instructions
// are appended once and never rewritten except through Patch, which fixes
// up a forward jump/call address once its target is known.
type Code struct {
	instrs []Instruction
}

// NewCode returns an empty code buffer.
func NewCode() *Code { return &Code{} }

// Len returns the address the next emitted instruction will receive.
func (c *Code) Len() int { return len(c.instrs) }

// At returns the instruction at addr.
func (c *Code) At(addr int) Instruction { return c.instrs[addr] }

// Instrs exposes the full instruction slice for the VM's read-only access.
func (c *Code) Instrs() []Instruction { return c.instrs }

func (c *Code) emit(i Instruction) int {
	c.instrs = append(c.instrs, i)
	return len(c.instrs) - 1
}

// Patch rewrites the integer argument of the instruction at addr, used to
// back-patch forward jumps (if/while/for/break) once their target address
// is known.
func (c *Code) Patch(addr, argI int) {
	c.instrs[addr].ArgI = argI
}

func (c *Code) Halt() int                 { return c.emit(Instruction{Op: HALT}) }
func (c *Code) Call(addr int) int         { return c.emit(Instruction{Op: CALL, ArgI: addr}) }
func (c *Code) CallExt(name string) int   { return c.emit(Instruction{Op: CALL_EXT, Name: name}) }
func (c *Code) Enter(n int) int           { return c.emit(Instruction{Op: ENTER, ArgI: n}) }
func (c *Code) Ret(nparams int) int       { return c.emit(Instruction{Op: RET, ArgI: nparams}) }
func (c *Code) RetVoid(nparams int) int   { return c.emit(Instruction{Op: RET_VOID, ArgI: nparams}) }
func (c *Code) PushI(v int) int           { return c.emit(Instruction{Op: PUSH_I, ArgI: v}) }
func (c *Code) PushF(v float64) int       { return c.emit(Instruction{Op: PUSH_F, ArgF: v}) }
func (c *Code) FpAddrI(off int) int       { return c.emit(Instruction{Op: FPADDR_I, ArgI: off}) }
func (c *Code) FpAddrF(off int) int       { return c.emit(Instruction{Op: FPADDR_F, ArgI: off}) }
func (c *Code) FpLoad(off int) int        { return c.emit(Instruction{Op: FPLOAD, ArgI: off}) }
func (c *Code) FpStore(off int) int       { return c.emit(Instruction{Op: FPSTORE, ArgI: off}) }
func (c *Code) LoadI() int                { return c.emit(Instruction{Op: LOAD_I}) }
func (c *Code) LoadF() int                { return c.emit(Instruction{Op: LOAD_F}) }
func (c *Code) StoreI() int               { return c.emit(Instruction{Op: STORE_I}) }
func (c *Code) StoreF() int               { return c.emit(Instruction{Op: STORE_F}) }
func (c *Code) Addr(globalOff int) int    { return c.emit(Instruction{Op: ADDR, ArgI: globalOff}) }
func (c *Code) Drop() int                 { return c.emit(Instruction{Op: DROP}) }
func (c *Code) ConvIF() int               { return c.emit(Instruction{Op: CONV_I_F}) }
func (c *Code) ConvFI() int               { return c.emit(Instruction{Op: CONV_F_I}) }
func (c *Code) Jmp(addr int) int          { return c.emit(Instruction{Op: JMP, ArgI: addr}) }
func (c *Code) Jf(addr int) int           { return c.emit(Instruction{Op: JF, ArgI: addr}) }
func (c *Code) Jt(addr int) int           { return c.emit(Instruction{Op: JT, ArgI: addr}) }
func (c *Code) AddI() int                 { return c.emit(Instruction{Op: ADD_I}) }
func (c *Code) AddF() int                 { return c.emit(Instruction{Op: ADD_F}) }
func (c *Code) SubI() int                 { return c.emit(Instruction{Op: SUB_I}) }
func (c *Code) SubF() int                 { return c.emit(Instruction{Op: SUB_F}) }
func (c *Code) MulI() int                 { return c.emit(Instruction{Op: MUL_I}) }
func (c *Code) MulF() int                 { return c.emit(Instruction{Op: MUL_F}) }
func (c *Code) DivI() int                 { return c.emit(Instruction{Op: DIV_I}) }
func (c *Code) DivF() int                 { return c.emit(Instruction{Op: DIV_F}) }
func (c *Code) LessI() int                { return c.emit(Instruction{Op: LESS_I}) }
func (c *Code) LessF() int                { return c.emit(Instruction{Op: LESS_F}) }

// Disassemble renders a static instruction listing, one line per address,
// used by `atomc build` instead of an earlier interpreter's unconditional
// per-execution stdout prints.
func (c *Code) Disassemble() string {
	var b strings.Builder
	for addr, instr := range c.instrs {
		fmt.Fprintf(&b, "%04d  %s", addr, instr.Op)
		switch instr.Op {
		case CALL_EXT:
			fmt.Fprintf(&b, " %s", instr.Name)
		case PUSH_F:
			fmt.Fprintf(&b, " %g", instr.ArgF)
		case HALT, LOAD_I, LOAD_F, STORE_I, STORE_F, DROP,
			CONV_I_F, CONV_F_I, ADD_I, ADD_F, SUB_I, SUB_F,
			MUL_I, MUL_F, DIV_I, DIV_F, LESS_I, LESS_F:
 // no operand
		default:
			fmt.Fprintf(&b, " %d", instr.ArgI)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
