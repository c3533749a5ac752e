package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gnolang/pygolf/internal/ast"
)

// lexer splits source text into tokens, synthesizing NEWLINE, INDENT and
// DEDENT the way the language's tokenizer does: newlines inside brackets
// and after a backslash are ignored, blank and comment-only lines produce
// nothing.
type lexer struct {
	src       string
	filename  string
	off       int
	line      int
	lineStart int
	depth     int
	indents   []int
	bol       bool
	toks      []token
}

func tokenize(src, filename string) (toks []token, err error) {
	l := &lexer{
		src:      src,
		filename: filename,
		line:     1,
		indents:  []int{0},
		bol:      true,
	}
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			toks, err = nil, e
		}
	}()
	l.run()
	return l.toks, nil
}

func (l *lexer) pos() ast.Pos {
	return ast.Pos{Offset: l.off, Line: l.line, Column: l.off - l.lineStart + 1}
}

func (l *lexer) fail(pos ast.Pos, incomplete bool, format string) {
	panic(&Error{Filename: l.filename, Pos: pos, Msg: format, Incomplete: incomplete})
}

func (l *lexer) emit(kind tokenKind, text string, pos ast.Pos) {
	l.toks = append(l.toks, token{kind: kind, text: text, pos: pos})
}

func (l *lexer) newline() {
	if l.src[l.off] == '\r' && l.off+1 < len(l.src) && l.src[l.off+1] == '\n' {
		l.off++
	}
	l.off++
	l.line++
	l.lineStart = l.off
}

func (l *lexer) run() {
	for {
		if l.bol && l.depth == 0 {
			if !l.indentation() {
				continue
			}
		}
		l.skipSpace()
		if l.off >= len(l.src) {
			break
		}
		c := l.src[l.off]
		switch {
		case c == '#':
			for l.off < len(l.src) && l.src[l.off] != '\n' && l.src[l.off] != '\r' {
				l.off++
			}
		case c == '\n' || c == '\r':
			pos := l.pos()
			l.newline()
			if l.depth == 0 {
				l.emit(tokNewline, "", pos)
				l.bol = true
			}
		case c == '\\':
			pos := l.pos()
			l.off++
			if l.off >= len(l.src) {
				l.fail(pos, true, "unexpected end of input after line continuation")
			}
			if l.src[l.off] != '\n' && l.src[l.off] != '\r' {
				l.fail(pos, false, "unexpected character after line continuation character")
			}
			l.newline()
		case isDigit(c) || (c == '.' && l.off+1 < len(l.src) && isDigit(l.src[l.off+1])):
			l.number()
		case c == '\'' || c == '"':
			l.str(l.off)
		case c < utf8.RuneSelf && !isIdentStartByte(c):
			l.operator()
		default:
			l.name()
		}
	}

	eof := l.pos()
	if l.depth > 0 {
		l.fail(eof, true, "unexpected end of input: unclosed bracket")
	}
	if n := len(l.toks); n > 0 && l.toks[n-1].kind != tokNewline {
		l.emit(tokNewline, "", eof)
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(tokDedent, "", eof)
	}
	l.emit(tokEOF, "", eof)
}

// indentation measures the indentation of the line at l.off. Blank and
// comment-only lines are consumed and false is returned.
func (l *lexer) indentation() bool {
	col := 0
scan:
	for l.off < len(l.src) {
		switch l.src[l.off] {
		case ' ':
			col++
		case '\t':
			col = (col/8 + 1) * 8
		case '\f':
			col = 0
		default:
			break scan
		}
		l.off++
	}
	if l.off >= len(l.src) {
		l.bol = false
		return true
	}
	switch l.src[l.off] {
	case '#':
		for l.off < len(l.src) && l.src[l.off] != '\n' && l.src[l.off] != '\r' {
			l.off++
		}
		if l.off < len(l.src) {
			l.newline()
		}
		return false
	case '\n', '\r':
		l.newline()
		return false
	}

	l.bol = false
	pos := l.pos()
	top := l.indents[len(l.indents)-1]
	switch {
	case col > top:
		l.indents = append(l.indents, col)
		l.emit(tokIndent, "", pos)
	case col < top:
		for col < l.indents[len(l.indents)-1] {
			l.indents = l.indents[:len(l.indents)-1]
			l.emit(tokDedent, "", pos)
		}
		if col != l.indents[len(l.indents)-1] {
			l.fail(pos, false, "unindent does not match any outer indentation level")
		}
	}
	return true
}

func (l *lexer) skipSpace() {
	for l.off < len(l.src) {
		switch l.src[l.off] {
		case ' ', '\t', '\f':
			l.off++
		default:
			return
		}
	}
}

func (l *lexer) name() {
	pos := l.pos()
	start := l.off
	r, size := utf8.DecodeRuneInString(l.src[l.off:])
	if !isIdentStart(r) {
		l.fail(pos, false, "invalid character "+quoteRune(r))
	}
	l.off += size
	for l.off < len(l.src) {
		r, size = utf8.DecodeRuneInString(l.src[l.off:])
		if !isIdentPart(r) {
			break
		}
		l.off += size
	}
	text := l.src[start:l.off]
	if l.off < len(l.src) && (l.src[l.off] == '\'' || l.src[l.off] == '"') && isStringPrefix(text) {
		l.str(start)
		return
	}
	l.emit(tokName, text, pos)
}

func (l *lexer) number() {
	pos := l.pos()
	start := l.off
	digits := func(ok func(byte) bool) {
		for l.off < len(l.src) && (ok(l.src[l.off]) || l.src[l.off] == '_') {
			l.off++
		}
	}
	if l.src[l.off] == '0' && l.off+1 < len(l.src) {
		switch l.src[l.off+1] {
		case 'x', 'X':
			l.off += 2
			digits(isHexDigit)
			l.emit(tokNumber, l.src[start:l.off], pos)
			return
		case 'o', 'O':
			l.off += 2
			digits(func(c byte) bool { return c >= '0' && c <= '7' })
			l.emit(tokNumber, l.src[start:l.off], pos)
			return
		case 'b', 'B':
			l.off += 2
			digits(func(c byte) bool { return c == '0' || c == '1' })
			l.emit(tokNumber, l.src[start:l.off], pos)
			return
		}
	}
	digits(isDigit)
	if l.off < len(l.src) && l.src[l.off] == '.' {
		l.off++
		digits(isDigit)
	}
	if l.off < len(l.src) && (l.src[l.off] == 'e' || l.src[l.off] == 'E') {
		next := l.off + 1
		if next < len(l.src) && (l.src[next] == '+' || l.src[next] == '-') {
			next++
		}
		if next < len(l.src) && isDigit(l.src[next]) {
			l.off = next
			digits(isDigit)
		}
	}
	if l.off < len(l.src) && (l.src[l.off] == 'j' || l.src[l.off] == 'J') {
		l.off++
	}
	l.emit(tokNumber, l.src[start:l.off], pos)
}

// str scans a string literal whose prefix (possibly empty) starts at start
// and whose opening quote is at l.off.
func (l *lexer) str(start int) {
	pos := ast.Pos{Offset: start, Line: l.line, Column: start - l.lineStart + 1}
	q := l.src[l.off]
	triple := strings.HasPrefix(l.src[l.off:], strings.Repeat(string(q), 3))
	if triple {
		l.off += 3
	} else {
		l.off++
	}
	for {
		if l.off >= len(l.src) {
			if triple {
				l.fail(pos, true, "unterminated triple-quoted string literal")
			}
			l.fail(pos, false, "unterminated string literal")
		}
		c := l.src[l.off]
		switch {
		case c == '\\':
			l.off++
			if l.off < len(l.src) {
				if l.src[l.off] == '\n' || l.src[l.off] == '\r' {
					l.newline()
				} else {
					l.off++
				}
			}
		case c == '\n' || c == '\r':
			if !triple {
				l.fail(pos, false, "unterminated string literal")
			}
			l.newline()
		case c == q:
			if !triple {
				l.off++
				l.emit(tokString, l.src[start:l.off], pos)
				return
			}
			if strings.HasPrefix(l.src[l.off:], strings.Repeat(string(q), 3)) {
				l.off += 3
				l.emit(tokString, l.src[start:l.off], pos)
				return
			}
			l.off++
		default:
			l.off++
		}
	}
}

func (l *lexer) operator() {
	pos := l.pos()
	for _, op := range operators {
		if !strings.HasPrefix(l.src[l.off:], op) {
			continue
		}
		switch op {
		case "(", "[", "{":
			l.depth++
		case ")", "]", "}":
			if l.depth == 0 {
				l.fail(pos, false, "unmatched '"+op+"'")
			}
			l.depth--
		}
		l.off += len(op)
		l.emit(tokOp, op, pos)
		return
	}
	l.fail(pos, false, "invalid character "+quoteRune(rune(l.src[l.off])))
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStartByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.Is(unicode.Nl, r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) ||
		unicode.In(r, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc)
}

func isStringPrefix(s string) bool {
	switch strings.ToLower(s) {
	case "r", "u", "b", "f", "br", "rb", "fr", "rf":
		return true
	}
	return false
}

func quoteRune(r rune) string {
	if r < utf8.RuneSelf && unicode.IsPrint(r) {
		return "'" + string(r) + "'"
	}
	return fmt.Sprintf("%U", r)
}
