package symbols_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeassociates/atomc/symbols"
	"github.com/codeassociates/atomc/types"
)

func TestFunction_ParamFrameOffsetIsNegativeBelowSavedFp(t *testing.T) {
	fn := symbols.NewFunction("f", types.Scalar(types.Int))
	a := &symbols.Parameter{ParamName: "a", Type: types.Scalar(types.Int)}
	b := &symbols.Parameter{ParamName: "b", Type: types.Scalar(types.Double)}
	fn.AddParam(a)
	fn.AddParam(b)

	require.Equal(t, 2, fn.ParamAreaSize())
	require.Equal(t, -3, fn.ParamFrameOffset(a))
	require.Equal(t, -2, fn.ParamFrameOffset(b))
}

func TestFunction_LocalFrameOffsetStartsAboveSavedFp(t *testing.T) {
	fn := symbols.NewFunction("f", types.Scalar(types.Void))
	v := &symbols.Variable{VarName: "x", Type: types.Scalar(types.Int)}
	fn.AddLocal(v)
	require.Equal(t, 1, fn.LocalFrameOffset(v))
	require.Equal(t, 1, fn.LocalAreaSize())
}

func TestFunction_AddLocalAccumulatesBySlotSize(t *testing.T) {
	fn := symbols.NewFunction("f", types.Scalar(types.Void))
	arr := &symbols.Variable{VarName: "arr", Type: types.Array(types.Int, 4)}
	scalar := &symbols.Variable{VarName: "n", Type: types.Scalar(types.Int)}
	fn.AddLocal(arr)
	fn.AddLocal(scalar)
	require.Equal(t, 1, fn.LocalFrameOffset(arr))
	require.Equal(t, 5, fn.LocalFrameOffset(scalar))
	require.Equal(t, 5, fn.LocalAreaSize())
}

func TestStructDef_AddMemberAccumulatesSlotOffsets(t *testing.T) {
	def := symbols.NewStructDef("P")
	x := &symbols.Variable{VarName: "x", Type: types.Scalar(types.Int)}
	y := &symbols.Variable{VarName: "y", Type: types.Scalar(types.Double)}
	def.AddMember(x)
	def.AddMember(y)

	require.Equal(t, 0, x.Index)
	require.Equal(t, 1, y.Index)
	require.Equal(t, 2, def.StructSlotSize())
	require.Same(t, y, def.FindMember("y"))
	require.Nil(t, def.FindMember("z"))
}

func TestExternalFunction_ImplementsAnyFunction(t *testing.T) {
	ext := symbols.NewExternalFunction("put_i", types.Scalar(types.Void))
	ext.AddParam(&symbols.Parameter{ParamName: "v", Type: types.Scalar(types.Int)})

	var fn symbols.AnyFunction = ext
	require.Len(t, fn.ParamList(), 1)
	require.Equal(t, types.Void, fn.ReturnType().Base)
	require.Equal(t, symbols.KindExternalFunction, fn.Kind())
}
