package cobol

import "strings"

// splitSentences splits s into COBOL sentences: substrings terminated by a
// '.' followed by whitespace or end-of-input, with periods inside a quoted
// literal ignored. This is the free-format lexical unit both the data
// division and procedure division scanners work over — one data-item
// declaration, or one statement (by convention, one verb per sentence), per
// segment.
func splitSentences(s string) []string {
	var out []string
	var buf strings.Builder
	inQuote := byte(0)
	b := []byte(s)
	for i := 0; i < len(b); i++ {
		c := b[i]
		if inQuote != 0 {
			buf.WriteByte(c)
			if c == inQuote {
				inQuote = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			inQuote = c
			buf.WriteByte(c)
			continue
		}
		if c == '.' {
			var next byte
			if i+1 < len(b) {
				next = b[i+1]
			}
			if next == 0 || next == ' ' || next == '\t' || next == '\n' || next == '\r' {
				if t := strings.TrimSpace(buf.String()); t != "" {
					out = append(out, t)
				}
				buf.Reset()
				continue
			}
		}
		buf.WriteByte(c)
	}
	if t := strings.TrimSpace(buf.String()); t != "" {
		out = append(out, t)
	}
	return out
}
