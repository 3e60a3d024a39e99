package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeassociates/atomc/lexer"
	"github.com/codeassociates/atomc/token"
)

func kinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	ks := make([]token.Kind, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}

func TestTokenize_Punctuation(t *testing.T) {
	got := kinds(t, "( ) { } [ ] , ; .")
	want := []token.Kind{
		token.LPAR, token.RPAR, token.LACC, token.RACC,
		token.LBRACKET, token.RBRACKET, token.COMMA, token.SEMICOLON, token.DOT,
		token.END,
	}
	require.Equal(t, want, got)
}

func TestTokenize_TwoCharOperators(t *testing.T) {
	got := kinds(t, "&& || == != <= >= = < > ! + - * /")
	want := []token.Kind{
		token.AND, token.OR, token.EQUAL, token.NOTEQ, token.LESSEQ, token.GREATEREQ,
		token.ASSIGN, token.LESS, token.GREATER, token.NOT,
		token.ADD, token.SUB, token.MUL, token.DIV,
		token.END,
	}
	require.Equal(t, want, got)
}

func TestTokenize_KeywordsVsIdentifiers(t *testing.T) {
	toks, err := lexer.Tokenize("int x_1 struct while return")
	require.NoError(t, err)
	require.Equal(t, token.INT, toks[0].Kind)
	require.Equal(t, token.ID, toks[1].Kind)
	require.Equal(t, "x_1", toks[1].Sval)
	require.Equal(t, token.STRUCT, toks[2].Kind)
	require.Equal(t, token.WHILE, toks[3].Kind)
	require.Equal(t, token.RETURN, toks[4].Kind)
}

func TestTokenize_NumericLiterals(t *testing.T) {
	toks, err := lexer.Tokenize("42 3.14 2e10 1.5e-3")
	require.NoError(t, err)
	require.Equal(t, token.CT_INT, toks[0].Kind)
	require.Equal(t, 42, toks[0].Ival)
	require.Equal(t, token.CT_REAL, toks[1].Kind)
	require.InDelta(t, 3.14, toks[1].Rval, 1e-9)
	require.Equal(t, token.CT_REAL, toks[2].Kind)
	require.InDelta(t, 2e10, toks[2].Rval, 1)
	require.Equal(t, token.CT_REAL, toks[3].Kind)
	require.InDelta(t, 1.5e-3, toks[3].Rval, 1e-9)
}

func TestTokenize_CharAndStringLiterals(t *testing.T) {
	toks, err := lexer.Tokenize(`'a' "hi"`)
	require.NoError(t, err)
	require.Equal(t, token.CT_CHAR, toks[0].Kind)
	require.Equal(t, byte('a'), toks[0].Cval)
	require.Equal(t, token.CT_STRING, toks[1].Kind)
	require.Equal(t, "hi", toks[1].Sval)
}

func TestTokenize_LineCommentsAndNewlinesCountLines(t *testing.T) {
	toks, err := lexer.Tokenize("int a; // comment\nint b;")
	require.NoError(t, err)
	require.Equal(t, 1, toks[0].Line)
	var secondIntLine int
	seen := 0
	for _, tok := range toks {
		if tok.Kind == token.INT {
			seen++
			if seen == 2 {
				secondIntLine = tok.Line
			}
		}
	}
	require.Equal(t, 2, secondIntLine)
}

func TestTokenize_UnrecognizedCharacterIsLexicalError(t *testing.T) {
	_, err := lexer.Tokenize("int a; @ ")
	require.Error(t, err)
}

func TestTokenize_EndsWithEND(t *testing.T) {
	toks, err := lexer.Tokenize("")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, token.END, toks[0].Kind)
}

func TestTokenize_IsDeterministic(t *testing.T) {
	src := "void main(){ int i; for(i=0;i<3;i=i+1) put_i(i); }"
	a, err := lexer.Tokenize(src)
	require.NoError(t, err)
	b, err := lexer.Tokenize(src)
	require.NoError(t, err)
	require.Equal(t, a, b)
}
