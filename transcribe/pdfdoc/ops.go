package pdfdoc

// scanPaintOps scans a decoded page content stream for XObject paint
// operators (`/Name Do`) and returns the referenced resource names in
// painting order. The scanner is a minimal content-stream tokenizer: it
// skips string literals, hex strings, comments, and inline image data so
// operator keywords inside them are not misread. Form XObject streams are
// not recursed into; images painted only through forms are not found,
// which mirrors the single-level operator walk of the extractor contract.
func scanPaintOps(data []byte) []string {
	var names []string
	lastName := ""

	i := 0
	for i < len(data) {
		c := data[i]
		switch {
		case c == '%': // comment to end of line
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case c == '(': // literal string, with escapes and nesting
			i = skipString(data, i)
		case c == '<':
			if i+1 < len(data) && data[i+1] == '<' {
				i += 2 // dict open, not a hex string
			} else {
				for i < len(data) && data[i] != '>' {
					i++
				}
				i++
			}
		case c == '/':
			start := i + 1
			i = start
			for i < len(data) && !isDelim(data[i]) {
				i++
			}
			lastName = string(data[start:i])
		case isRegular(c):
			start := i
			for i < len(data) && isRegular(data[i]) {
				i++
			}
			switch string(data[start:i]) {
			case "Do":
				if lastName != "" {
					names = append(names, lastName)
					lastName = ""
				}
			case "BI": // inline image: skip through EI
				i = skipInlineImage(data, i)
			}
		default:
			i++
		}
	}
	return names
}

// skipString advances past a literal string starting at the '(' and
// returns the index after the closing ')'.
func skipString(data []byte, i int) int {
	depth := 0
	for ; i < len(data); i++ {
		switch data[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return i
}

// skipInlineImage advances past BI ... ID <binary> EI.
func skipInlineImage(data []byte, i int) int {
	for i+1 < len(data) {
		if data[i] == 'E' && data[i+1] == 'I' &&
			(i == 0 || isWhitespace(data[i-1])) &&
			(i+2 >= len(data) || isDelim(data[i+2])) {
			return i + 2
		}
		i++
	}
	return len(data)
}

func isWhitespace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(c byte) bool {
	if isWhitespace(c) {
		return true
	}
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// isRegular reports a byte that can start an operator keyword.
func isRegular(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '\'' || c == '"' || c == '*'
}
