package rules

import (
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"

	"github.com/gnolang/pygolf/internal/ast"
)

// FormatCall rewrites 'a{}b'.format(x) into f'a{x}b'. Only automatic
// positional fields are handled, optionally with a conversion and a plain
// format specification.
type FormatCall struct{}

func (FormatCall) Name() string           { return FormatToFString }
func (FormatCall) OnNode() ast.Kind       { return ast.KindCall }
func (FormatCall) Since() *semver.Version { return Py36 }

func (FormatCall) Predicate(n ast.Node) bool {
	call := n.(*ast.Call)
	tmpl, ok := formatTemplate(call)
	if !ok || len(call.Keywords) > 0 {
		return false
	}
	_, fields, ok := splitTemplate(tmpl.Value)
	if !ok || len(fields) != len(call.Args) {
		return false
	}
	for _, arg := range call.Args {
		if _, starred := arg.(*ast.Starred); starred || !embeddable(arg) {
			return false
		}
	}
	return true
}

func (FormatCall) Transform(n ast.Node) ast.Node {
	call := n.(*ast.Call)
	tmpl, _ := formatTemplate(call)
	lits, fields, _ := splitTemplate(tmpl.Value)

	js := &ast.JoinedStr{Pos: tmpl.Pos}
	for i, lit := range lits {
		if lit != "" {
			js.Values = append(js.Values, &ast.Const{Pos: tmpl.Pos, Type: ast.ConstStr, Value: lit})
		}
		if i == len(fields) {
			break
		}
		arg := call.Args[i]
		fv := &ast.FormattedValue{Pos: arg.Start(), Value: arg, Conversion: fields[i].conv}
		if fields[i].spec != "" {
			fv.FormatSpec = &ast.JoinedStr{
				Pos:    arg.Start(),
				Values: []ast.Expr{&ast.Const{Pos: arg.Start(), Type: ast.ConstStr, Value: fields[i].spec}},
			}
		}
		js.Values = append(js.Values, fv)
	}
	return js
}

func formatTemplate(call *ast.Call) (*ast.Const, bool) {
	attr, ok := call.Func.(*ast.Attribute)
	if !ok || attr.Attr != "format" {
		return nil, false
	}
	c, ok := attr.Value.(*ast.Const)
	if !ok || !c.IsString() {
		return nil, false
	}
	return c, true
}

type field struct {
	conv byte
	spec string
}

// splitTemplate splits a format string into literal text and replacement
// fields. It fails on numbered or named fields and on nested fields in a
// specification. lits always has one more element than fields.
func splitTemplate(s string) (lits []string, fields []field, ok bool) {
	var lit strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '{':
			if i+1 < len(s) && s[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return nil, nil, false
			}
			f, ok := parseField(s[i+1 : i+1+end])
			if !ok {
				return nil, nil, false
			}
			lits = append(lits, lit.String())
			lit.Reset()
			fields = append(fields, f)
			i += end + 1
		case '}':
			if i+1 < len(s) && s[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return nil, nil, false
		default:
			lit.WriteByte(c)
		}
	}
	return append(lits, lit.String()), fields, true
}

func parseField(inner string) (field, bool) {
	var f field
	if strings.ContainsAny(inner, "{") {
		return f, false
	}
	if strings.HasPrefix(inner, "!") {
		if len(inner) < 2 || !strings.ContainsRune("rsa", rune(inner[1])) {
			return f, false
		}
		f.conv = inner[1]
		inner = inner[2:]
	}
	switch {
	case inner == "":
	case inner[0] == ':':
		f.spec = inner[1:]
	default:
		return f, false
	}
	return f, true
}

// embeddable reports whether e can be written inside an f-string
// substitution with either quote character outside it: no nested
// f-strings or lambdas, and no string literal needing quotes of both kinds, escapes or
// a '#'.
func embeddable(e ast.Expr) bool {
	ok := true
	ast.Inspect(e, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.JoinedStr, *ast.Lambda:
			ok = false
		case *ast.Const:
			if n.Type == ast.ConstStr || n.Type == ast.ConstBytes {
				ok = ok && plainText(n.Value)
			}
		}
		return ok
	})
	return ok
}

func plainText(s string) bool {
	for _, r := range s {
		if r == '\\' || r == '\'' || r == '"' || r == '#' || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
