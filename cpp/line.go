package cpp

import "strconv"

// synthLine builds the "#line N \"name\"\n" marker token NextToken
// emits when an #else or #endif has reopened the emission gate
// (frame.emitLineDirective). It is handed straight to the caller;
// nothing ever feeds it back through the tokenizer.
func (pp *Preprocessor) synthLine(line int, sourceName string) Token {
	return Token{Type: Directive, Text: synthLineText(line, sourceName)}
}

// synthLineText formats the literal directive text, with no leading
// whitespace: "#line <N> \"<source>\"\n", or "#line <N>\n" when
// sourceName is empty. Used both to build the returned marker token
// and to embed a leading marker directly into pushed source text (see
// IncludeStringNamed and doInclude).
func synthLineText(line int, sourceName string) string {
	text := "#line " + strconv.Itoa(line)
	if sourceName != "" {
		text += " \"" + sourceName + "\""
	}
	text += "\n"
	return text
}
