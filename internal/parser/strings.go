package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gnolang/pygolf/internal/ast"
)

// strToken is a string token split into its parts.
type strToken struct {
	tok     token
	raw     bool
	bytes   bool
	fstring bool
	body    string // text between the quotes, undecoded
	bodyOff int    // offset of body within tok.text
}

func splitStringToken(t token) strToken {
	st := strToken{tok: t}
	i := 0
	for i < len(t.text) && t.text[i] != '\'' && t.text[i] != '"' {
		switch t.text[i] {
		case 'r', 'R':
			st.raw = true
		case 'b', 'B':
			st.bytes = true
		case 'f', 'F':
			st.fstring = true
		}
		i++
	}
	q := 1
	if strings.HasPrefix(t.text[i:], `'''`) || strings.HasPrefix(t.text[i:], `"""`) {
		q = 3
	}
	st.bodyOff = i + q
	st.body = t.text[i+q : len(t.text)-q]
	return st
}

// posWithin returns the source position of byte off of the token text.
func posWithin(t token, off int) ast.Pos {
	pos := t.pos
	pos.Offset += off
	if nl := strings.LastIndexByte(t.text[:off], '\n'); nl >= 0 {
		pos.Line += strings.Count(t.text[:off], "\n")
		pos.Column = off - nl
	} else {
		pos.Column += off
	}
	return pos
}

// stringAtom parses one or more adjacent string literals, which the language
// concatenates.
func (p *parser) stringAtom() ast.Expr {
	start := p.tok()
	var parts []strToken
	for p.tok().kind == tokString {
		parts = append(parts, splitStringToken(p.tok()))
		p.next()
	}

	isBytes, isF := parts[0].bytes, false
	for _, st := range parts {
		if st.bytes != isBytes {
			p.errorAt(st.tok.pos, "cannot mix bytes and nonbytes literals")
		}
		if st.bytes && st.fstring {
			p.errorAt(st.tok.pos, "invalid string prefix")
		}
		isF = isF || st.fstring
	}

	if !isF {
		var b strings.Builder
		for _, st := range parts {
			b.WriteString(p.decode(st, st.body, 0))
		}
		typ := ast.ConstStr
		if isBytes {
			typ = ast.ConstBytes
		}
		return &ast.Const{Pos: start.pos, Type: typ, Value: b.String()}
	}

	js := &ast.JoinedStr{Pos: start.pos}
	for _, st := range parts {
		if !st.fstring {
			js.Values = appendLiteral(js.Values, st.tok.pos, p.decode(st, st.body, 0))
			continue
		}
		values, _ := p.fstringParts(st, 0, false)
		for _, v := range values {
			if c, ok := v.(*ast.Const); ok {
				js.Values = appendLiteral(js.Values, c.Pos, c.Value)
				continue
			}
			js.Values = append(js.Values, v)
		}
	}
	return js
}

// appendLiteral appends text to values, merging it into a trailing literal.
func appendLiteral(values []ast.Expr, pos ast.Pos, text string) []ast.Expr {
	if text == "" {
		return values
	}
	if n := len(values); n > 0 {
		if c, ok := values[n-1].(*ast.Const); ok {
			c.Value += text
			return values
		}
	}
	return append(values, &ast.Const{Pos: pos, Type: ast.ConstStr, Value: text})
}

// fstringParts splits the body of a formatted string literal starting at
// byte i into literal and substitution values. In a format spec it stops at
// the '}' closing the enclosing field and returns its index.
func (p *parser) fstringParts(st strToken, i int, inSpec bool) ([]ast.Expr, int) {
	var values []ast.Expr
	var lit strings.Builder
	litStart := i
	flush := func() {
		if lit.Len() > 0 {
			pos := posWithin(st.tok, st.bodyOff+litStart)
			values = appendLiteral(values, pos, p.decode(st, lit.String(), st.bodyOff+litStart))
			lit.Reset()
		}
	}

	body := st.body
	for i < len(body) {
		c := body[i]
		switch {
		case c == '{':
			if !inSpec && i+1 < len(body) && body[i+1] == '{' {
				lit.WriteByte('{')
				i += 2
				continue
			}
			flush()
			var field []ast.Expr
			field, i = p.fstringField(st, i+1)
			values = append(values, field...)
			litStart = i
		case c == '}':
			if inSpec {
				flush()
				return values, i
			}
			if i+1 < len(body) && body[i+1] == '}' {
				lit.WriteByte('}')
				i += 2
				continue
			}
			p.errorAt(posWithin(st.tok, st.bodyOff+i), "f-string: single '}' is not allowed")
		case c == '\\' && !st.raw && i+1 < len(body):
			if body[i+1] == 'N' && i+2 < len(body) && body[i+2] == '{' {
				end := strings.IndexByte(body[i:], '}')
				if end < 0 {
					end = len(body) - i - 1
				}
				lit.WriteString(body[i : i+end+1])
				i += end + 1
				continue
			}
			lit.WriteString(body[i : i+2])
			i += 2
		default:
			lit.WriteByte(c)
			i++
		}
	}
	if inSpec {
		p.errorAt(st.tok.pos, "f-string: expecting '}'")
	}
	flush()
	return values, i
}

// fstringField parses one replacement field whose expression starts at byte
// i of the body. It returns the values the field contributes (a literal for
// the self-documenting form, then the substitution) and the index after the
// closing '}'.
func (p *parser) fstringField(st strToken, i int) ([]ast.Expr, int) {
	body := st.body
	start := i
	depth := 0
	end := -1
	for i < len(body) && end < 0 {
		c := body[i]
		switch {
		case c == '\'' || c == '"':
			i = skipQuoted(body, i)
			continue
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']':
			depth--
		case c == '}':
			if depth == 0 {
				end = i
				continue
			}
			depth--
		case depth == 0 && c == '!' && (i+1 >= len(body) || body[i+1] != '='):
			end = i
			continue
		case depth == 0 && c == ':':
			end = i
			continue
		}
		i++
	}
	if end < 0 {
		p.errorAt(posWithin(st.tok, st.bodyOff+start), "f-string: expecting '}'")
	}

	text := body[start:end]
	var out []ast.Expr
	fieldPos := posWithin(st.tok, st.bodyOff+start)
	exprText := text
	debug := false
	if trimmed := strings.TrimRight(text, " \t\n"); strings.HasSuffix(trimmed, "=") {
		before := strings.TrimSuffix(trimmed, "=")
		if before != "" && !strings.ContainsAny(before[len(before)-1:], "=!<>") {
			debug = true
			exprText = before
			out = append(out, &ast.Const{Pos: fieldPos, Type: ast.ConstStr, Value: text})
		}
	}
	if strings.TrimSpace(exprText) == "" {
		p.errorAt(fieldPos, "f-string: empty expression not allowed")
	}

	fv := &ast.FormattedValue{Pos: fieldPos, Value: p.subExpr(exprText, fieldPos)}
	i = end
	if body[i] == '!' {
		if i+1 >= len(body) || !strings.ContainsRune("rsa", rune(body[i+1])) {
			p.errorAt(posWithin(st.tok, st.bodyOff+i), "f-string: invalid conversion character")
		}
		fv.Conversion = body[i+1]
		i += 2
	}
	if i < len(body) && body[i] == ':' {
		specPos := posWithin(st.tok, st.bodyOff+i+1)
		var spec []ast.Expr
		spec, i = p.fstringParts(st, i+1, true)
		fv.FormatSpec = &ast.JoinedStr{Pos: specPos, Values: spec}
	}
	if i >= len(body) || body[i] != '}' {
		p.errorAt(posWithin(st.tok, st.bodyOff+start), "f-string: expecting '}'")
	}
	if debug && fv.Conversion == 0 && fv.FormatSpec == nil {
		fv.Conversion = 'r'
	}
	return append(out, fv), i + 1
}

// skipQuoted returns the index after the string literal starting at i.
func skipQuoted(s string, i int) int {
	q := s[i]
	if strings.HasPrefix(s[i:], strings.Repeat(string(q), 3)) {
		end := strings.Index(s[i+3:], strings.Repeat(string(q), 3))
		if end < 0 {
			return len(s)
		}
		return i + 3 + end + 3
	}
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case q:
			return j + 1
		}
	}
	return len(s)
}

// subExpr parses the expression of a replacement field.
func (p *parser) subExpr(text string, pos ast.Pos) ast.Expr {
	toks, err := tokenize("("+text+")", p.filename)
	if err != nil {
		perr := err.(*Error)
		p.errorAt(pos, "f-string: "+perr.Msg)
	}
	for i := range toks {
		t := &toks[i]
		if t.pos.Line == 1 {
			t.pos.Line = pos.Line
			t.pos.Column += pos.Column - 2
		} else {
			t.pos.Line += pos.Line - 1
		}
		t.pos.Offset += pos.Offset - 1
	}
	sub := &parser{filename: p.filename, toks: toks}
	e := sub.starExpressions()
	if sub.tok().kind != tokNewline {
		sub.errorf("f-string: invalid syntax")
	}
	return e
}

// decode resolves the escape sequences of s, a piece of the body of st
// starting at body offset off.
func (p *parser) decode(st strToken, s string, off int) string {
	if st.raw {
		return s
	}
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			i++
			continue
		}
		e := s[i+1]
		i += 2
		switch e {
		case '\n':
		case '\\', '\'', '"':
			b.WriteByte(e)
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i - 1
			for i < len(s) && i-j < 3 && s[i] >= '0' && s[i] <= '7' {
				i++
			}
			v, _ := strconv.ParseUint(s[j:i], 8, 32)
			p.writeCode(&b, st, rune(v), off)
		case 'x':
			p.writeCode(&b, st, p.hexEscape(st, s, &i, 2, off), off)
		case 'u', 'U':
			if st.bytes {
				b.WriteByte('\\')
				b.WriteByte(e)
				continue
			}
			n := 4
			if e == 'U' {
				n = 8
			}
			p.writeCode(&b, st, p.hexEscape(st, s, &i, n, off), off)
		case 'N':
			if st.bytes {
				b.WriteString(`\N`)
				continue
			}
			p.errorAt(posWithin(st.tok, st.bodyOff+off), `named unicode escapes (\N{...}) are not supported`)
		default:
			b.WriteByte('\\')
			b.WriteByte(e)
		}
	}
	return b.String()
}

func (p *parser) hexEscape(st strToken, s string, i *int, n, off int) rune {
	if *i+n > len(s) {
		p.errorAt(posWithin(st.tok, st.bodyOff+off), "truncated escape sequence")
	}
	v, err := strconv.ParseUint(s[*i:*i+n], 16, 32)
	if err != nil {
		p.errorAt(posWithin(st.tok, st.bodyOff+off), "truncated escape sequence")
	}
	*i += n
	return rune(v)
}

func (p *parser) writeCode(b *strings.Builder, st strToken, r rune, off int) {
	if st.bytes {
		b.WriteByte(byte(r))
		return
	}
	if r > utf8.MaxRune || (r >= 0xD800 && r <= 0xDFFF) {
		p.errorAt(posWithin(st.tok, st.bodyOff+off), "escape sequence does not encode a valid character")
	}
	b.WriteRune(r)
}
