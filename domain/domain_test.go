package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeassociates/atomc/domain"
	"github.com/codeassociates/atomc/internal/errs"
	"github.com/codeassociates/atomc/symbols"
	"github.com/codeassociates/atomc/types"
)

func TestDomainStack_AddToCurrentRejectsRedefinition(t *testing.T) {
	ds := domain.NewDomainStack()
	ds.Push()
	a := &symbols.Variable{VarName: "x", Type: types.Scalar(types.Int)}
	b := &symbols.Variable{VarName: "x", Type: types.Scalar(types.Double)}

	require.NoError(t, ds.AddToCurrent(a, 1))
	err := ds.AddToCurrent(b, 2)
	require.Error(t, err)
	var redef *errs.RedefinitionError
	require.ErrorAs(t, err, &redef)
	require.Equal(t, "x", redef.Name)
	require.Equal(t, 2, redef.Line)
}

func TestDomainStack_FindIsTopDown(t *testing.T) {
	ds := domain.NewDomainStack()
	ds.Push()
	outer := &symbols.Variable{VarName: "x", Type: types.Scalar(types.Int)}
	require.NoError(t, ds.AddToCurrent(outer, 1))

	ds.Push()
	inner := &symbols.Variable{VarName: "x", Type: types.Scalar(types.Double)}
	require.NoError(t, ds.AddToCurrent(inner, 2))

	sym, err := ds.Find("x", 3)
	require.NoError(t, err)
	require.Same(t, inner, sym)

	ds.Pop()
	sym, err = ds.Find("x", 4)
	require.NoError(t, err)
	require.Same(t, outer, sym)
}

func TestDomainStack_FindUndefinedReturnsUndefinedId(t *testing.T) {
	ds := domain.NewDomainStack()
	ds.Push()
	_, err := ds.Find("nope", 7)
	require.Error(t, err)
	var undef *errs.UndefinedId
	require.ErrorAs(t, err, &undef)
	require.Equal(t, 7, undef.Line)
}

func TestDomainStack_FindStructDefOnlySearchesGlobal(t *testing.T) {
	ds := domain.NewDomainStack()
	ds.Push() // global
	def := symbols.NewStructDef("P")
	require.NoError(t, ds.AddToCurrent(def, 1))

	ds.Push() // nested scope
	found, err := ds.FindStructDef("P", 2)
	require.NoError(t, err)
	require.Same(t, def, found)

	_, err = ds.FindStructDef("Q", 3)
	require.Error(t, err)
	var nsd *errs.NoStructDef
	require.ErrorAs(t, err, &nsd)
}
