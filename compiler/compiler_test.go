package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeassociates/atomc/compiler"
	"github.com/codeassociates/atomc/internal/errs"
	"github.com/codeassociates/atomc/lexer"
)

func compileSrc(t *testing.T, src string) error {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	_, _, _, err = compiler.Compile(toks, nil)
	return err
}

func TestCompile_BreakOutsideLoopIsRejected(t *testing.T) {
	err := compileSrc(t, `void main(){ break; }`)
	require.Error(t, err)
	var boL *errs.BreakOutsideLoop
	require.ErrorAs(t, err, &boL)
}

func TestCompile_BreakInsideWhileIsAccepted(t *testing.T) {
	err := compileSrc(t, `void main(){ while(1) break; }`)
	require.NoError(t, err)
}

func TestCompile_AssignToConstantIsRejected(t *testing.T) {
	err := compileSrc(t, `void main(){ 1 = 2; }`)
	require.Error(t, err)
	var ct *errs.ConstantTarget
	require.ErrorAs(t, err, &ct)
}

func TestCompile_AssignTypeMismatchPointerToScalarIsRejected(t *testing.T) {
	err := compileSrc(t, `void main(){ int v[3]; int x; x = v; }`)
	require.Error(t, err)
	var tc *errs.TypeCast
	require.ErrorAs(t, err, &tc)
}

func TestCompile_CallingANonFunctionIsRejected(t *testing.T) {
	err := compileSrc(t, `void main(){ int x; x(); }`)
	require.Error(t, err)
	var uc *errs.UncallableId
	require.ErrorAs(t, err, &uc)
}

func TestCompile_InvalidArraySizeIsRejected(t *testing.T) {
	err := compileSrc(t, `void main(){ int v[0]; }`)
	require.Error(t, err)
	var ias *errs.InvalidArraySize
	require.ErrorAs(t, err, &ias)
}

func TestCompile_UndefinedIdentifierIsRejected(t *testing.T) {
	err := compileSrc(t, `void main(){ y = 1; }`)
	require.Error(t, err)
	var undef *errs.UndefinedId
	require.ErrorAs(t, err, &undef)
}

func TestCompile_VoidReturnWithValueIsRejected(t *testing.T) {
	err := compileSrc(t, `void main(){ return 1; }`)
	require.Error(t, err)
	var it *errs.InvalidType
	require.ErrorAs(t, err, &it)
}

func TestCompile_NonVoidReturnWithoutValueIsRejected(t *testing.T) {
	err := compileSrc(t, `int f(){ return; } void main(){}`)
	require.Error(t, err)
	var it *errs.InvalidType
	require.ErrorAs(t, err, &it)
}

func TestCompile_WellFormedProgramCompilesCleanly(t *testing.T) {
	err := compileSrc(t, `
struct Point { int x; int y; };
int add(int a, int b) { return a + b; }
void main(){
	struct Point p;
	p.x = 1;
	p.y = 2;
	int sum;
	sum = add(p.x, p.y);
}`)
	require.NoError(t, err)
}

func TestCompile_ExternCallWithoutSeedingIsUndefined(t *testing.T) {
	err := compileSrc(t, `void main(){ put_i(1); }`)
	require.Error(t, err)
	var undef *errs.UndefinedId
	require.ErrorAs(t, err, &undef)
}
