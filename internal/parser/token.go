package parser

import (
	"fmt"

	"github.com/gnolang/pygolf/internal/ast"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNewline
	tokIndent
	tokDedent
	tokName
	tokNumber
	tokString
	tokOp
)

var tokenKindNames = [...]string{
	tokEOF:     "end of input",
	tokNewline: "newline",
	tokIndent:  "indent",
	tokDedent:  "dedent",
	tokName:    "name",
	tokNumber:  "number",
	tokString:  "string",
	tokOp:      "operator",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return fmt.Sprintf("token(%d)", int(k))
	}
	return tokenKindNames[k]
}

type token struct {
	kind tokenKind
	text string
	pos  ast.Pos
}

func (t token) String() string {
	switch t.kind {
	case tokName, tokNumber, tokString, tokOp:
		return fmt.Sprintf("%q", t.text)
	}
	return t.kind.String()
}

var keywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// IsKeyword reports whether name is a reserved word.
func IsKeyword(name string) bool { return keywords[name] }

// operators, longest first so that the lexer can match greedily.
var operators = []string{
	"**=", "//=", ">>=", "<<=", "...",
	"->", ":=", "**", "//", "<<", ">>", "<=", ">=", "==", "!=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
	"+", "-", "*", "/", "%", "@", "&", "|", "^", "~", "<", ">",
	"(", ")", "[", "]", "{", "}", ",", ":", ".", ";", "=", "`",
}

var augOps = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/", "//=": "//", "%=": "%",
	"@=": "@", "&=": "&", "|=": "|", "^=": "^", ">>=": ">>", "<<=": "<<",
	"**=": "**",
}
