// Package token defines the closed set of lexical token kinds produced by
// the lexer and consumed by the parser.
package token

import "fmt"

// Kind identifies the syntactic category of a Token.
type Kind int

const (
	ILLEGAL Kind = iota
	END          // end of input

	// Identifiers and literals.
	ID
	CT_INT
	CT_REAL
	CT_CHAR
	CT_STRING

	// Punctuation.
	COMMA
	SEMICOLON
	LPAR
	RPAR
	LBRACKET
	RBRACKET
	LACC
	RACC
	DOT

	// Operators.
	ADD
	SUB
	MUL
	DIV
	AND
	OR
	EQUAL
	NOTEQ
	LESS
	LESSEQ
	GREATER
	GREATEREQ
	ASSIGN
	NOT

	// Keywords.
	INT
	DOUBLE
	CHAR
	VOID
	STRUCT
	IF
	ELSE
	WHILE
	FOR
	BREAK
	RETURN
)

var kindNames = map[Kind]string{
	ILLEGAL:   "ILLEGAL",
	END:       "END",
	ID:        "ID",
	CT_INT:    "CT_INT",
	CT_REAL:   "CT_REAL",
	CT_CHAR:   "CT_CHAR",
	CT_STRING: "CT_STRING",
	COMMA:     "COMMA",
	SEMICOLON: "SEMICOLON",
	LPAR:      "LPAR",
	RPAR:      "RPAR",
	LBRACKET:  "LBRACKET",
	RBRACKET:  "RBRACKET",
	LACC:      "LACC",
	RACC:      "RACC",
	DOT:       "DOT",
	ADD:       "ADD",
	SUB:       "SUB",
	MUL:       "MUL",
	DIV:       "DIV",
	AND:       "AND",
	OR:        "OR",
	EQUAL:     "EQUAL",
	NOTEQ:     "NOTEQ",
	LESS:      "LESS",
	LESSEQ:    "LESSEQ",
	GREATER:   "GREATER",
	GREATEREQ: "GREATEREQ",
	ASSIGN:    "ASSIGN",
	NOT:       "NOT",
	INT:       "INT",
	DOUBLE:    "DOUBLE",
	CHAR:      "CHAR",
	VOID:      "VOID",
	STRUCT:    "STRUCT",
	IF:        "IF",
	ELSE:      "ELSE",
	WHILE:     "WHILE",
	FOR:       "FOR",
	BREAK:     "BREAK",
	RETURN:    "RETURN",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps reserved identifier spellings to their keyword kind.
var Keywords = map[string]Kind{
	"int":    INT,
	"double": DOUBLE,
	"char":   CHAR,
	"void":   VOID,
	"struct": STRUCT,
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"for":    FOR,
	"break":  BREAK,
	"return": RETURN,
}

// LookupIdent retags an identifier lexeme as a keyword kind when it matches
// the reserved table, or returns ID otherwise.
func LookupIdent(lexeme string) Kind {
	if kind, ok := Keywords[lexeme]; ok {
		return kind
	}
	return ID
}

// Token is a single lexical unit: a kind, an optional value payload, and the
// source line it was read from. Value is populated only for ID, CT_INT,
// CT_REAL, CT_CHAR and CT_STRING.
type Token struct {
	Kind Kind
	Ival int     // CT_INT
	Rval float64 // CT_REAL
	Sval string  // ID, CT_STRING
	Cval byte    // CT_CHAR
	Line int
}

func (t Token) String() string {
	switch t.Kind {
	case ID, CT_STRING:
		return fmt.Sprintf("%s(%q) @%d", t.Kind, t.Sval, t.Line)
	case CT_INT:
		return fmt.Sprintf("%s(%d) @%d", t.Kind, t.Ival, t.Line)
	case CT_REAL:
		return fmt.Sprintf("%s(%g) @%d", t.Kind, t.Rval, t.Line)
	case CT_CHAR:
		return fmt.Sprintf("%s(%q) @%d", t.Kind, t.Cval, t.Line)
	default:
		return fmt.Sprintf("%s @%d", t.Kind, t.Line)
	}
}
