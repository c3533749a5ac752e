package printer

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gnolang/pygolf/internal/ast"
)

func (p *printer) constant(c *ast.Const) {
	switch c.Type {
	case ast.ConstNone:
		p.write("None")
	case ast.ConstTrue:
		p.write("True")
	case ast.ConstFalse:
		p.write("False")
	case ast.ConstEllipsis:
		p.write("...")
	case ast.ConstInt:
		p.number(FormatInt(c.Value), true)
	case ast.ConstFloat:
		p.number(FormatFloat(c.Value), false)
	case ast.ConstImag:
		p.number(FormatImag(c.Value), false)
	case ast.ConstStr:
		p.str(c, false)
	case ast.ConstBytes:
		p.str(c, true)
	default:
		p.fail(c)
	}
}

// FormatInt returns the shortest spelling of an integer literal, preferring
// decimal over hexadecimal.
func FormatInt(src string) string {
	var x big.Int
	if _, ok := x.SetString(src, 0); !ok {
		return src
	}
	dec := x.Text(10)
	if hex := "0x" + x.Text(16); len(hex) < len(dec) {
		return hex
	}
	return dec
}

// FormatFloat returns the shortest spelling of a float literal. Values out
// of range keep their source spelling.
func FormatFloat(src string) string {
	f, err := strconv.ParseFloat(src, 64)
	if err != nil || math.IsInf(f, 0) {
		return src
	}
	return shortestFloat(f)
}

// FormatImag returns the shortest spelling of an imaginary literal.
func FormatImag(src string) string {
	f, err := strconv.ParseFloat(strings.TrimRight(src, "jJ"), 64)
	if err != nil || math.IsInf(f, 0) {
		return src
	}
	best := shortestFloat(f) + "j"
	if f == math.Trunc(f) && f < 1e16 {
		if whole := strconv.FormatFloat(f, 'f', -1, 64) + "j"; len(whole) <= len(best) {
			best = whole
		}
	}
	return best
}

func shortestFloat(f float64) string {
	if f == 0 {
		return ".0"
	}
	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	e, _ := strconv.Atoi(exp)
	digits := strings.Replace(mant, ".", "", 1)

	var positional string
	switch {
	case e < 0:
		positional = "." + strings.Repeat("0", -e-1) + digits
	case len(digits) > e+1:
		positional = digits[:e+1] + "." + digits[e+1:]
	default:
		positional = digits + strings.Repeat("0", e+1-len(digits)) + ".0"
	}
	scientific := digits + "e" + strconv.Itoa(e-(len(digits)-1))
	if len(scientific) < len(positional) {
		return scientific
	}
	return positional
}

// ----------------------------------------------------------------------------
// Strings

func (p *printer) str(c *ast.Const, isBytes bool) {
	s, ok := p.quote(c.Value, isBytes)
	if !ok {
		p.failf("string at %d:%d inside a formatted string substitution", c.Line, c.Column)
	}
	p.write(s)
}

// quote returns the shortest literal spelling v, trying both quote
// characters and, where they can help, raw and triple-quoted forms.
func (p *printer) quote(v string, isBytes bool) (string, bool) {
	prefix := ""
	if isBytes {
		prefix = "b"
	}
	var candidates []string
	for _, q := range []byte{'\'', '"'} {
		if strings.IndexByte(p.banned, q) >= 0 {
			continue
		}
		qs := string(q)
		candidates = append(candidates, prefix+qs+escape(v, q, false, isBytes)+qs)
		if r, ok := rawString(v, q, isBytes); ok {
			candidates = append(candidates, r)
		}
		if !p.inField && strings.Contains(v, "\n") {
			t := strings.Repeat(qs, 3)
			candidates = append(candidates, prefix+t+escape(v, q, true, isBytes)+t)
		}
	}
	best := ""
	for _, c := range candidates {
		if p.inField && strings.Contains(c, `\`) {
			continue
		}
		if best == "" || utf8.RuneCountInString(c) < utf8.RuneCountInString(best) {
			best = c
		}
	}
	return best, best != ""
}

func units(v string, isBytes bool) []rune {
	if !isBytes {
		return []rune(v)
	}
	out := make([]rune, len(v))
	for i := 0; i < len(v); i++ {
		out[i] = rune(v[i])
	}
	return out
}

// escape spells v for the body of a literal delimited by q, or by three of
// q when triple is set.
func escape(v string, q byte, triple, isBytes bool) string {
	var b strings.Builder
	rs := units(v, isBytes)
	for i, r := range rs {
		next := rune(-1)
		if i+1 < len(rs) {
			next = rs[i+1]
		}
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			if !triple || next == rune(q) || next < 0 {
				b.WriteByte('\\')
			}
			b.WriteByte(q)
		case r == '\n':
			if triple {
				b.WriteByte('\n')
			} else {
				b.WriteString(`\n`)
			}
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == 0:
			if next >= '0' && next <= '7' {
				b.WriteString(`\x00`)
			} else {
				b.WriteString(`\0`)
			}
		case isBytes && (r < 0x20 || r >= 0x7f):
			fmt.Fprintf(&b, `\x%02x`, r)
		case !isBytes && !unicode.IsPrint(r):
			switch {
			case r < 0x100:
				fmt.Fprintf(&b, `\x%02x`, r)
			case r < 0x10000:
				fmt.Fprintf(&b, `\u%04x`, r)
			default:
				fmt.Fprintf(&b, `\U%08x`, r)
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// rawString spells v as a raw literal when that is possible and could be
// shorter than the escaped form.
func rawString(v string, q byte, isBytes bool) (string, bool) {
	if !strings.Contains(v, `\`) || strings.IndexByte(v, q) >= 0 {
		return "", false
	}
	if trailing := len(v) - len(strings.TrimRight(v, `\`)); trailing%2 == 1 {
		return "", false
	}
	for _, r := range units(v, isBytes) {
		if r == '\n' || r == '\r' || r < 0x20 || r == 0x7f || (isBytes && r >= 0x80) || !unicode.IsPrint(r) {
			return "", false
		}
	}
	prefix := "r"
	if isBytes {
		prefix = "br"
	}
	return prefix + string(q) + v + string(q), true
}

// ----------------------------------------------------------------------------
// Formatted strings

func (p *printer) joinedStr(js *ast.JoinedStr) {
	var (
		fields  bool
		newline bool
		plain   strings.Builder
	)
	for _, v := range js.Values {
		switch v := v.(type) {
		case *ast.Const:
			plain.WriteString(v.Value)
			newline = newline || strings.Contains(v.Value, "\n")
		case *ast.FormattedValue:
			fields = true
		default:
			p.fail(v)
		}
	}
	if !fields {
		p.str(&ast.Const{Pos: js.Pos, Type: ast.ConstStr, Value: plain.String()}, false)
		return
	}

	var (
		best    string
		lastErr error
	)
	for _, q := range []string{"'", `"`, "'''", `"""`} {
		if strings.Contains(p.banned, q[:1]) || (len(q) == 3 && (p.inField || !newline)) {
			continue
		}
		s, err := p.fstring(js, q)
		if err != nil {
			lastErr = err
			continue
		}
		if best == "" || utf8.RuneCountInString(s) < utf8.RuneCountInString(best) {
			best = s
		}
	}
	if best == "" {
		panic(bailout{lastErr})
	}
	p.write(best)
}

func (p *printer) fstring(js *ast.JoinedStr, q string) (string, error) {
	var b strings.Builder
	b.WriteString("f" + q)
	for _, v := range js.Values {
		switch v := v.(type) {
		case *ast.Const:
			lit := escape(v.Value, q[0], len(q) == 3, false)
			if p.inField && strings.Contains(lit, `\`) {
				return "", fmt.Errorf("%w: escape sequence in nested formatted string", ErrUnrepresentable)
			}
			lit = strings.ReplaceAll(lit, "{", "{{")
			b.WriteString(strings.ReplaceAll(lit, "}", "}}"))
		case *ast.FormattedValue:
			field, err := p.field(v, q)
			if err != nil {
				return "", err
			}
			b.WriteString(field)
		}
	}
	b.WriteString(q)
	return b.String(), nil
}

// field spells one substitution of an f-string delimited by q.
func (p *printer) field(fv *ast.FormattedValue, q string) (string, error) {
	sub := &printer{cfg: p.cfg, modern: p.modern, banned: p.banned + q[:1], inField: true}
	text, err := sub.capture(func() { sub.expr(fv.Value, precTuple) })
	if err != nil {
		return "", err
	}
	if strings.Contains(text, "#") {
		return "", fmt.Errorf("%w: '#' in formatted string substitution", ErrUnrepresentable)
	}
	if topLevelColon(text) {
		text = "(" + text + ")"
	}
	if strings.HasPrefix(text, "{") {
		text = " " + text
	}

	var b strings.Builder
	b.WriteString("{" + text)
	if fv.Conversion != 0 {
		b.WriteString("!" + string(fv.Conversion))
	}
	if fv.FormatSpec != nil {
		b.WriteByte(':')
		for _, v := range fv.FormatSpec.Values {
			switch v := v.(type) {
			case *ast.Const:
				if strings.ContainsAny(v.Value, "{}") {
					return "", fmt.Errorf("%w: brace in format specification", ErrUnrepresentable)
				}
				b.WriteString(escape(v.Value, q[0], len(q) == 3, false))
			case *ast.FormattedValue:
				nested, err := p.field(v, q)
				if err != nil {
					return "", err
				}
				b.WriteString(nested)
			}
		}
	}
	b.WriteByte('}')
	return b.String(), nil
}

func (p *printer) capture(fn func()) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			err = b.err
		}
	}()
	fn()
	return p.buf.String(), nil
}

// topLevelColon reports whether expression text holds a ':' outside any
// brackets or string literals.
func topLevelColon(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '\'', '"':
			j := strings.IndexByte(s[i+1:], c)
			if j < 0 {
				return false
			}
			i += j + 1
		case ':':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}
