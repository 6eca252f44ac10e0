// Package cpp implements a C-style, pull-based preprocessor: given a
// root source text, it produces a stream of tokens whose concatenated
// whitespace+text reproduces the preprocessed output, with #-prefixed
// directives interpreted and comments stripped.
//
// The library never touches the filesystem, a terminal, or any global
// state on its own. Callers drive it with IncludeString/IncludeFile and
// drain it with NextToken or ReadAll; #include resolution goes through
// the caller-supplied FileReader collaborator.
package cpp

import "container/list"

// FileReader is the read_file collaborator spec.md §6 requires: read
// the file at path and return its contents, or ok=false on failure.
// The zero value of Preprocessor has no FileReader and fails every
// #include/IncludeFile with ReadFailed.
type FileReader interface {
	ReadFile(path string) (contents string, ok bool)
}

// UnknownDirectiveHandler is process_unknown_directive: called with a
// directive name the processor doesn't recognize. A positive return
// keeps the directive line as ordinary passthrough content, zero
// drops it silently, and negative raises an error.
type UnknownDirectiveHandler func(name string) int

// Preprocessor is a single preprocessing session. It is not safe for
// concurrent use; two instances are entirely independent.
type Preprocessor struct {
	macros macroTable
	frames []*frame
	cond   condStack

	insideCommentBlock bool
	pendingWhitespace  string

	// pending is the synthetic-token scratch ownership queue spec.md
	// §5 describes: at most one real content token is ever stashed
	// here (behind the #line marker that must precede it), but a
	// FIFO is what the teacher reaches for whenever more than one
	// synthesized token might need to outlive a single call.
	pending *list.List

	err *Error

	fileReader       FileReader
	unknownDirective UnknownDirectiveHandler
}

func (pp *Preprocessor) queueToken(t Token) {
	if pp.pending == nil {
		pp.pending = list.New()
	}
	pp.pending.PushBack(t)
}

func (pp *Preprocessor) dequeueToken() (Token, bool) {
	if pp.pending == nil || pp.pending.Len() == 0 {
		return Token{}, false
	}
	front := pp.pending.Front()
	pp.pending.Remove(front)
	return front.Value.(Token), true
}

// New returns an empty Preprocessor. Use IncludeString or IncludeFile
// to give it something to scan before calling NextToken.
func New() *Preprocessor {
	pp := &Preprocessor{}
	pp.unknownDirective = func(string) int { return 1 }
	return pp
}

// SetFileReader installs the collaborator used to resolve #include and
// IncludeFile. Without one, every include attempt fails with ReadFailed.
func (pp *Preprocessor) SetFileReader(r FileReader) { pp.fileReader = r }

// SetUnknownDirectiveHandler overrides the default (keep-everything)
// handling of directive names the processor does not recognize.
func (pp *Preprocessor) SetUnknownDirectiveHandler(h UnknownDirectiveHandler) {
	if h == nil {
		h = func(string) int { return 1 }
	}
	pp.unknownDirective = h
}

// Reset returns the preprocessor to its initial state: no macros, no
// source frames, no error, conditional stack empty.
func (pp *Preprocessor) Reset() {
	reader := pp.fileReader
	handler := pp.unknownDirective
	*pp = Preprocessor{fileReader: reader, unknownDirective: handler}
	if pp.unknownDirective == nil {
		pp.unknownDirective = func(string) int { return 1 }
	}
}

// --- macro table -----------------------------------------------------

// Define inserts or replaces a macro, returning true if it already
// existed.
func (pp *Preprocessor) Define(name, value string) bool {
	return pp.macros.define(name, value)
}

// DefineEmpty defines name with an empty replacement value.
func (pp *Preprocessor) DefineEmpty(name string) bool {
	return pp.macros.define(name, "")
}

// Undef removes a macro, returning true if it was defined.
func (pp *Preprocessor) Undef(name string) bool {
	return pp.macros.undef(name)
}

// FindMacro returns a macro's replacement text and whether it is
// defined.
func (pp *Preprocessor) FindMacro(name string) (string, bool) {
	return pp.macros.find(name)
}

// --- error reporting ---------------------------------------------------

// fail records the first error only; later calls are no-ops, matching
// spec.md §4.7's sticky error policy.
func (pp *Preprocessor) fail(kind ErrorKind, f *frame) {
	if pp.err != nil {
		return
	}
	e := &Error{Kind: kind}
	if f != nil {
		e.SourceName = f.sourceName
		e.Line = f.lineNumber
	}
	pp.err = e
}

// failMsg is fail with an attached message, used only by the #error
// directive.
func (pp *Preprocessor) failMsg(kind ErrorKind, f *frame, message string) {
	if pp.err != nil {
		return
	}
	pp.fail(kind, f)
	pp.err.Message = message
}

func (pp *Preprocessor) hasError() bool { return pp.err != nil }

// Err returns the sticky error, or nil if none has occurred.
func (pp *Preprocessor) Err() *Error { return pp.err }

// --- observables -------------------------------------------------------

// CurrentSourceName returns the name of the innermost active source,
// or "" if the stack is empty.
func (pp *Preprocessor) CurrentSourceName() string {
	if f := pp.top(); f != nil {
		return f.sourceName
	}
	return ""
}

// CurrentLineNumber returns the innermost active source's 1-based line
// number, or 0 if the stack is empty.
func (pp *Preprocessor) CurrentLineNumber() int {
	if f := pp.top(); f != nil {
		return f.lineNumber
	}
	return 0
}

// IsInsideTrueBlock reports whether the emission gate is currently
// open: every nested conditional branch is active.
func (pp *Preprocessor) IsInsideTrueBlock() bool {
	return pp.cond.allTrue()
}

// --- source stack --------------------------------------------------------

func (pp *Preprocessor) top() *frame {
	if len(pp.frames) == 0 {
		return nil
	}
	return pp.frames[len(pp.frames)-1]
}

func (pp *Preprocessor) pushFrame(f *frame) {
	pp.frames = append(pp.frames, f)
}

// popFrame discards the innermost frame. Per spec.md §4.5, popping
// while any conditional is still open is a fault, whichever source
// opened it: this includes an included file that ends inside an #if
// of its includer.
func (pp *Preprocessor) popFrame() {
	popped := pp.frames[len(pp.frames)-1]
	pp.frames = pp.frames[:len(pp.frames)-1]
	if pp.cond.bits != 0 {
		pp.fail(MismatchIf, popped)
	}
}

// IncludeString pushes text as a new top-of-stack source frame. An
// empty body is a deliberate no-op: no frame is pushed and nothing is
// emitted, matching the original lipp.hpp's include_string.
func (pp *Preprocessor) IncludeString(text string) {
	pp.IncludeStringNamed(text, "")
}

// IncludeStringNamed is IncludeString with an explicit source name,
// used for #line bookkeeping and #include resolution of relative
// paths. A named push is itself preceded by an embedded
// "#line 1 \"name\"\n" marker, exactly as a file pulled in by the
// #include directive is - the caller sees it as the first emitted
// token the way S5 in spec.md §8 requires of the root source too.
func (pp *Preprocessor) IncludeStringNamed(text, sourceName string) {
	if len(text) == 0 {
		return
	}
	wrapped := text
	if sourceName != "" {
		wrapped = synthLineText(1, sourceName) + text
	}
	pp.pushFrame(newFrame(wrapped, sourceName))
}

// IncludeFile resolves path through the installed FileReader and
// pushes its contents as a new frame. isSystem controls whether the
// path is treated as an angle-bracket (verbatim) or quoted (cwd
// relative) include for path composition purposes. This is the public
// entry point for embedding a file the way a caller would seed root
// content with IncludeString - the #include directive itself does not
// go through here, since it also needs to book-end with the caller's
// own return position (see doInclude in directive.go).
func (pp *Preprocessor) IncludeFile(path string, isSystem bool) bool {
	resolved := pp.resolveIncludePath(path, isSystem)
	if pp.fileReader == nil {
		pp.fail(ReadFailed, pp.top())
		return false
	}
	contents, ok := pp.fileReader.ReadFile(resolved)
	if !ok {
		pp.fail(ReadFailed, pp.top())
		return false
	}
	pp.IncludeStringNamed(contents, resolved)
	return true
}

func (pp *Preprocessor) resolveIncludePath(path string, isSystem bool) string {
	path = normalizeSeparators(path)
	if isSystem {
		return path
	}
	cwd := ""
	if f := pp.top(); f != nil {
		cwd = f.cwd
	}
	if cwd == "" {
		return path
	}
	return cwd + "/" + path
}

func normalizeSeparators(p string) string {
	out := make([]byte, len(p))
	for i := 0; i < len(p); i++ {
		if p[i] == '\\' {
			out[i] = '/'
		} else {
			out[i] = p[i]
		}
	}
	return string(out)
}

// --- token pull ----------------------------------------------------------

// Flags controls NextToken's behavior. The zero value expands macros,
// matching spec.md's "expand_macros default on".
type Flags struct {
	NoExpandMacros bool
}

// NextToken returns the next emitted token, or ok=false on clean end of
// input or on error (distinguish the two with Err). Tokens gated off by
// a false conditional branch are silently consumed and never observed
// here.
func (pp *Preprocessor) NextToken(flags Flags) (Token, bool) {
	if pp.hasError() {
		return Token{}, false
	}

	if tok, ok := pp.dequeueToken(); ok {
		tok.Whitespace = pp.takePendingWhitespace() + tok.Whitespace
		return tok, true
	}

	expand := !flags.NoExpandMacros
	for {
		f := pp.top()
		if f == nil {
			return Token{}, false
		}

		tok, endOfFrame, ok := pp.coreNextToken(f, expand)
		if !ok {
			return Token{}, false
		}

		if endOfFrame {
			pp.popFrame()
			if pp.hasError() {
				return Token{}, false
			}
			continue
		}

		if tok.Type == Directive {
			hashWS := tok.Whitespace
			result, emit, ok := pp.processDirective(f)
			if !ok {
				return Token{}, false
			}
			if !emit {
				continue
			}
			result.Whitespace = pp.takePendingWhitespace() + hashWS + result.Whitespace
			return result, true
		}

		if !pp.cond.allTrue() {
			continue
		}

		if f.emitLineDirective {
			f.emitLineDirective = false
			line := pp.synthLine(f.lineNumber, f.sourceName)
			tok.Whitespace = pp.takePendingWhitespace() + tok.Whitespace
			pp.queueToken(tok)
			return line, true
		}

		tok.Whitespace = pp.takePendingWhitespace() + tok.Whitespace
		return tok, true
	}
}

// ReadAll drains NextToken and concatenates Whitespace+Text of every
// emitted token.
func (pp *Preprocessor) ReadAll() string {
	var sb []byte
	for {
		tok, ok := pp.NextToken(Flags{})
		if !ok {
			break
		}
		sb = append(sb, tok.Whitespace...)
		sb = append(sb, tok.Text...)
	}
	return string(sb)
}

func (pp *Preprocessor) takePendingWhitespace() string {
	ws := pp.pendingWhitespace
	pp.pendingWhitespace = ""
	return ws
}

// coreNextToken is the shared scanner+tokenizer+macro-expansion core.
// It never looks at the conditional stack or dispatches directives;
// NextToken and the expression evaluator each layer their own policy
// on top. endOfFrame signals that f has no more bytes to scan (and
// pp.pendingWhitespace has absorbed any trailing whitespace the caller
// should still attach to whatever token comes after the frame pops).
func (pp *Preprocessor) coreNextToken(f *frame, expand bool) (tok Token, endOfFrame bool, ok bool) {
	const maxExpansions = 1 << 16
	expansions := 0
	for {
		lexemeStart := f.cursor
		ws, sawNewline := pp.skipWhitespace(f)
		if pp.hasError() {
			return Token{}, false, false
		}
		if sawNewline {
			f.cursor++
			f.lineNumber++
			return Token{Type: EndOfLine, Whitespace: ws, Text: "\n"}, false, true
		}
		if f.atEnd() {
			pp.pendingWhitespace += ws
			return Token{}, true, true
		}

		t, lexOK := pp.lexOne(f, ws)
		if !lexOK {
			return Token{}, false, false
		}

		if expand && t.Type == Identifier {
			if value, found := pp.macros.find(t.Text); found {
				expansions++
				if expansions > maxExpansions {
					pp.fail(ExpressionTooComplex, f)
					return Token{}, false, false
				}
				f.splice(lexemeStart, ws+value)
				continue
			}
		}
		return t, false, true
	}
}
