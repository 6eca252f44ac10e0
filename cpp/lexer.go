package cpp

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// lexOne classifies the lexeme at f.cursor (already positioned past any
// whitespace/comments by skipWhitespace) and advances f.cursor past it.
// ws is the whitespace already consumed for this lexeme; it is attached
// to the returned token unchanged. The '#' case only consumes the hash
// and reports Directive — the caller is responsible for handing the
// result to the directive processor, which is the tail call spec.md
// §4.2 describes.
func (pp *Preprocessor) lexOne(f *frame, ws string) (Token, bool) {
	src := f.source
	start := f.cursor
	c := src[start]

	switch {
	case c == '#':
		f.cursor++
		return Token{Type: Directive, Whitespace: ws, Text: "#"}, true

	case isIdentStart(c):
		i := start + 1
		for i < len(src) && isIdentCont(src[i]) {
			i++
		}
		f.cursor = i
		return Token{Type: Identifier, Whitespace: ws, Text: src[start:i]}, true

	case isDigit(c):
		return pp.lexNumber(f, ws)

	case c == '\'' || c == '"':
		return pp.lexString(f, ws, c)

	case isOperatorLead(c):
		return pp.lexOperator(f, ws)

	default:
		f.cursor++
		return Token{Type: Unknown, Whitespace: ws, Text: src[start : start+1]}, true
	}
}

func (pp *Preprocessor) lexNumber(f *frame, ws string) (Token, bool) {
	src := f.source
	start := f.cursor
	i := start
	sawDot := false
	sawExp := false

	for i < len(src) {
		c := src[i]
		switch {
		case isDigit(c):
			i++
		case c == '.':
			if sawDot || sawExp {
				f.cursor = i + 1
				pp.fail(SyntaxError, f)
				return Token{}, false
			}
			sawDot = true
			i++
		case c == 'e' || c == 'E':
			if sawExp {
				f.cursor = i + 1
				pp.fail(SyntaxError, f)
				return Token{}, false
			}
			sawExp = true
			i++
			if i < len(src) && (src[i] == '+' || src[i] == '-') {
				i++
			}
		case c == 'f':
			if i > start && isDigit(src[i-1]) {
				i++
				goto done
			}
			f.cursor = i + 1
			pp.fail(SyntaxError, f)
			return Token{}, false
		default:
			goto done
		}
	}
done:
	f.cursor = i
	return Token{Type: Number, Whitespace: ws, Text: src[start:i]}, true
}

func (pp *Preprocessor) lexString(f *frame, ws string, quote byte) (Token, bool) {
	src := f.source
	start := f.cursor
	i := start + 1
	for {
		if i >= len(src) {
			f.cursor = i
			pp.fail(InvalidString, f)
			return Token{}, false
		}
		if src[i] == quote && src[i-1] != '\\' {
			i++
			break
		}
		i++
	}
	f.cursor = i
	return Token{Type: String, Whitespace: ws, Text: src[start:i]}, true
}

func (pp *Preprocessor) lexOperator(f *frame, ws string) (Token, bool) {
	src := f.source
	start := f.cursor
	if start+1 < len(src) {
		if tt, ok := twoCharOperators[src[start:start+2]]; ok {
			f.cursor = start + 2
			return Token{Type: tt, Whitespace: ws, Text: src[start : start+2]}, true
		}
	}
	c := src[start]
	if tt, ok := oneCharOperators[c]; ok {
		f.cursor = start + 1
		return Token{Type: tt, Whitespace: ws, Text: src[start : start+1]}, true
	}
	f.cursor = start + 1
	return Token{Type: Unknown, Whitespace: ws, Text: src[start : start+1]}, true
}
