package cpp

import "strings"

// frame is one entry on the source stack (spec.md's SourceFrame): a
// single active input, either the root text handed to IncludeString or
// one spliced in by #include. source is reassigned whenever a macro
// expansion splices replacement text in front of cursor: Go strings are
// immutable, so "mutate in place" here means "rebuild the tail and
// repoint cursor at the splice", which is observably identical to the
// original's owned mutable buffer.
type frame struct {
	sourceName string
	cwd        string
	source     string
	cursor     int
	lineNumber int

	// emitLineDirective is set when an #else/#endif transitions the
	// emission gate from false to true: the caller owes a fresh #line
	// resync before the next real token. #include's own book-ending
	// #line markers are embedded directly as source text instead (see
	// directive.go's doInclude), so a freshly pushed frame does not
	// need this flag - its leading marker is just ordinary content.
	emitLineDirective bool
}

func newFrame(source, sourceName string) *frame {
	f := &frame{
		sourceName: sourceName,
		source:     source,
		cursor:     0,
		lineNumber: 1,
	}
	f.cwd = dirOf(sourceName)
	return f
}

// dirOf returns the path prefix of name up to (but not including) the
// final slash, normalizing backslashes first, or "" if there is none.
func dirOf(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		return name[:idx]
	}
	return ""
}

// atEnd reports whether the frame has no more bytes to scan.
func (f *frame) atEnd() bool {
	return f.cursor >= len(f.source)
}

// splice replaces the frame's source at and after spliceStart with
// replacement, and rewinds the cursor to spliceStart so the tokenizer
// rescans it. Used for macro expansion.
func (f *frame) splice(spliceStart int, replacement string) {
	f.source = f.source[:spliceStart] + replacement + f.source[f.cursor:]
	f.cursor = spliceStart
}

// remaining returns the unscanned tail of the frame's source.
func (f *frame) remaining() string {
	return f.source[f.cursor:]
}
