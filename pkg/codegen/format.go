package codegen

import "strings"

const indentUnit = "    "

// Format re-indents src by brace depth, trims trailing whitespace and
// collapses runs of blank lines. Braces inside string literals and comments
// are ignored. Lines that start inside a template literal are kept verbatim.
func Format(src string) string {
	var (
		out        []string
		depth      int
		sc         scanState
		blankCount int
	)
	for _, raw := range strings.Split(src, "\n") {
		if sc.quote == '`' {
			out = append(out, strings.TrimRight(raw, " \t\r"))
			opens, closes := sc.scan(raw)
			depth = max(depth+opens-closes, 0)
			blankCount = 0
			continue
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			blankCount++
			continue
		}

		inComment := sc.blockComment
		opens, closes := sc.scan(line)

		level := depth
		if !inComment && (strings.HasPrefix(line, "}") || strings.HasPrefix(line, "]")) {
			level--
		}
		level = max(level, 0)

		if blankCount > 0 && len(out) > 0 {
			prev := out[len(out)-1]
			opensBlock := strings.HasSuffix(prev, "{") || strings.HasSuffix(prev, "[")
			closesBlock := strings.HasPrefix(line, "}") || strings.HasPrefix(line, "]")
			if !opensBlock && !closesBlock {
				out = append(out, "")
			}
		}
		blankCount = 0

		prefix := strings.Repeat(indentUnit, level)
		if inComment && strings.HasPrefix(line, "*") {
			prefix += " "
		}
		out = append(out, prefix+line)
		depth = max(depth+opens-closes, 0)
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}

// scanState tracks lexical context that survives line breaks.
type scanState struct {
	quote        rune // open string delimiter, 0 outside strings
	blockComment bool
}

// scan counts the block openers and closers of line that sit outside strings
// and comments.
func (s *scanState) scan(line string) (opens, closes int) {
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}
		switch {
		case s.blockComment:
			if c == '*' && next == '/' {
				s.blockComment = false
				i++
			}
		case s.quote != 0:
			if c == '\\' {
				i++
			} else if c == s.quote {
				s.quote = 0
			}
		case c == '/' && next == '/':
			return opens, closes
		case c == '/' && next == '*':
			s.blockComment = true
			i++
		case c == '"' || c == '\'' || c == '`':
			s.quote = c
		case c == '{' || c == '[':
			opens++
		case c == '}' || c == ']':
			closes++
		}
	}
	// Only template literals span lines.
	if s.quote != '`' {
		s.quote = 0
	}
	return opens, closes
}
