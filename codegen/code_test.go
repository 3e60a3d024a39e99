package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeassociates/atomc/codegen"
)

func TestCode_EmitAssignsSequentialAddresses(t *testing.T) {
	c := codegen.NewCode()
	a := c.PushI(1)
	b := c.PushI(2)
	require.Equal(t, 0, a)
	require.Equal(t, 1, b)
	require.Equal(t, 2, c.Len())
}

func TestCode_PatchRewritesArgI(t *testing.T) {
	c := codegen.NewCode()
	jmp := c.Jmp(0)
	c.PushI(1)
	c.Patch(jmp, c.Len())
	require.Equal(t, c.Len(), c.At(jmp).ArgI)
}

func TestCode_DisassembleIncludesExternName(t *testing.T) {
	c := codegen.NewCode()
	c.CallExt("put_i")
	out := c.Disassemble()
	require.Contains(t, out, "put_i")
}

func TestCode_DisassembleOneLinePerInstruction(t *testing.T) {
	c := codegen.NewCode()
	c.PushI(5)
	c.PushI(7)
	c.AddI()
	c.Halt()
	out := c.Disassemble()
	require.Equal(t, 4, len(splitNonEmptyLines(out)))
}

func splitNonEmptyLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if i > start {
				lines = append(lines, s[start:i])
			}
			start = i + 1
		}
	}
	return lines
}
