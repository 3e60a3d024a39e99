package session_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeassociates/atomc/internal/config"
	"github.com/codeassociates/atomc/internal/errs"
	"github.com/codeassociates/atomc/session"
)

// runProgram compiles and executes src, returning everything put_i/put_d
// wrote to standard output.
func runProgram(t *testing.T, src string) string {
	t.Helper()
	var out bytes.Buffer
	sess, err := session.New(config.WithOutput(&out))
	require.NoError(t, err)
	defer sess.Sync()

	prog, err := sess.Compile(src)
	require.NoError(t, err)
	require.NoError(t, sess.Run(prog))
	return out.String()
}

func TestE2E_IntegerLoop(t *testing.T) {
	src := `void main(){ int i; for(i=0;i<3;i=i+1) put_i(i); }`
	require.Equal(t, "=> 0\n=> 1\n=> 2\n", runProgram(t, src))
}

func TestE2E_DoubleLoop(t *testing.T) {
	src := `void main(){ double x; for(x=0.0;x<1.5;x=x+0.5) put_d(x); }`
	require.Equal(t, "=> 0.0\n=> 0.5\n=> 1.0\n", runProgram(t, src))
}

func TestE2E_CastRequired(t *testing.T) {
	src := `int x; void main(){ x = (int)2.7; put_i(x); }`
	require.Equal(t, "=> 2\n", runProgram(t, src))
}

func TestE2E_RedefinitionError(t *testing.T) {
	var out bytes.Buffer
	sess, err := session.New(config.WithOutput(&out))
	require.NoError(t, err)
	defer sess.Sync()

	_, err = sess.Compile(`int a; int a;`)
	require.Error(t, err)
	var redef *errs.RedefinitionError
	require.ErrorAs(t, err, &redef)
	require.Equal(t, "a", redef.Name)
	require.Equal(t, 1, redef.Line)
}

func TestE2E_NoStructDef(t *testing.T) {
	var out bytes.Buffer
	sess, err := session.New(config.WithOutput(&out))
	require.NoError(t, err)
	defer sess.Sync()

	_, err = sess.Compile(`struct P p;`)
	require.Error(t, err)
	var nsd *errs.NoStructDef
	require.ErrorAs(t, err, &nsd)
	require.Equal(t, "P", nsd.Name)
}

func TestE2E_CallArity(t *testing.T) {
	var out bytes.Buffer
	sess, err := session.New(config.WithOutput(&out))
	require.NoError(t, err)
	defer sess.Sync()

	_, err = sess.Compile(`void f(int a){} void main(){ f(); }`)
	require.Error(t, err)
	var it *errs.InvalidType
	require.ErrorAs(t, err, &it)
	require.Contains(t, it.Msg, "too few arguments")
}

func TestE2E_StructFieldAccess(t *testing.T) {
	src := `
struct Point { int x; int y; };
void main(){
	struct Point p;
	p.x = 3;
	p.y = 4;
	put_i(p.x + p.y);
}`
	require.Equal(t, "=> 7\n", runProgram(t, src))
}

func TestE2E_ArrayIndexing(t *testing.T) {
	src := `
void main(){
	int v[5];
	int i;
	for (i=0; i<5; i=i+1) v[i] = i*i;
	put_i(v[3]);
}`
	require.Equal(t, "=> 9\n", runProgram(t, src))
}

func TestE2E_FunctionCallAndReturn(t *testing.T) {
	src := `
int square(int n){ return n*n; }
void main(){ put_i(square(6)); }`
	require.Equal(t, "=> 36\n", runProgram(t, src))
}

func TestE2E_RelationalAndLogicalOperators(t *testing.T) {
	src := `
void main(){
	int a; int b;
	a = 3; b = 5;
	put_i(a<b);
	put_i(a>b);
	put_i(a<=3);
	put_i(a>=3);
	put_i(a==3);
	put_i(a!=3);
	put_i(a<b && b<10);
	put_i(a<b || b>100);
	put_i(!(a==b));
}`
	require.Equal(t, "=> 1\n=> 0\n=> 1\n=> 1\n=> 1\n=> 0\n=> 1\n=> 1\n=> 1\n", runProgram(t, src))
}

func TestE2E_UnaryMinus(t *testing.T) {
	src := `void main(){ int a; a = 5; put_i(-a + 2); }`
	require.Equal(t, "=> -3\n", runProgram(t, src))
}

func TestE2E_RecursiveFunction(t *testing.T) {
	src := `
int fact(int n){
	if (n <= 1) return 1;
	return n * fact(n-1);
}
void main(){ put_i(fact(5)); }`
	require.Equal(t, "=> 120\n", runProgram(t, src))
}

func TestE2E_BreakExitsLoop(t *testing.T) {
	src := `
void main(){
	int i;
	for (i=0; i<10; i=i+1) {
		if (i==3) break;
		put_i(i);
	}
}`
	require.Equal(t, "=> 0\n=> 1\n=> 2\n", runProgram(t, src))
}

func TestE2E_Trace(t *testing.T) {
	var out bytes.Buffer
	sess, err := session.New(config.WithOutput(&out), config.WithTrace(true))
	require.NoError(t, err)
	defer sess.Sync()

	prog, err := sess.Compile(`void main(){ put_i(1); }`)
	require.NoError(t, err)
	require.NoError(t, sess.Run(prog))
	require.Equal(t, "=> 1\n", out.String())
}
