package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeassociates/atomc/types"
)

func TestType_SlotSizeScalarsAreOneCell(t *testing.T) {
	require.Equal(t, 1, types.Scalar(types.Int).SlotSize())
	require.Equal(t, 1, types.Scalar(types.Double).SlotSize())
	require.Equal(t, 1, types.Scalar(types.Char).SlotSize())
}

func TestType_SlotSizePointerIsOneCell(t *testing.T) {
	require.Equal(t, 1, types.Pointer(types.Int).SlotSize())
}

func TestType_SlotSizeFixedArray(t *testing.T) {
	require.Equal(t, 5, types.Array(types.Int, 5).SlotSize())
}

func TestType_ElementOfArrayIsScalar(t *testing.T) {
	arr := types.Array(types.Double, 3)
	elem := arr.ElementOf()
	require.True(t, elem.IsScalar())
	require.Equal(t, types.Double, elem.Base)
}

func TestType_ElementOfPointerIsScalar(t *testing.T) {
	ptr := types.Pointer(types.Char)
	elem := ptr.ElementOf()
	require.True(t, elem.IsScalar())
	require.Equal(t, types.Char, elem.Base)
}

func TestType_CanCastTo_ScalarsFreelyInterconvert(t *testing.T) {
	i, d, c := types.Scalar(types.Int), types.Scalar(types.Double), types.Scalar(types.Char)
	require.True(t, i.CanCastTo(d))
	require.True(t, d.CanCastTo(c))
	require.True(t, c.CanCastTo(i))
}

func TestType_CanCastTo_NonPointerToPointerForbidden(t *testing.T) {
	require.False(t, types.Scalar(types.Int).CanCastTo(types.Pointer(types.Int)))
}

func TestType_CanCastTo_PointerToPointerAllowed(t *testing.T) {
	require.True(t, types.Pointer(types.Int).CanCastTo(types.Pointer(types.Double)))
}

func TestType_Arith_IntAndDoubleYieldsDouble(t *testing.T) {
	result, ok := types.Arith(types.Scalar(types.Int), types.Scalar(types.Double))
	require.True(t, ok)
	require.Equal(t, types.Double, result.Base)
}

func TestType_Arith_CharAndCharYieldsChar(t *testing.T) {
	result, ok := types.Arith(types.Scalar(types.Char), types.Scalar(types.Char))
	require.True(t, ok)
	require.Equal(t, types.Char, result.Base)
}

func TestType_Arith_RejectsNonScalar(t *testing.T) {
	_, ok := types.Arith(types.Array(types.Int, 3), types.Scalar(types.Int))
	require.False(t, ok)
}

func TestType_StringRendersDims(t *testing.T) {
	require.Equal(t, "int", types.Scalar(types.Int).String())
	require.Equal(t, "int[]", types.Pointer(types.Int).String())
	require.Equal(t, "double[4]", types.Array(types.Double, 4).String())
}
