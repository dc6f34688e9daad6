package analysis

import "strings"

// ExtractJSONObject returns the first balanced {...} span in s. When the
// object never closes (a response cut off mid-generation) it returns the text
// from the first '{' to the end and complete is false.
func ExtractJSONObject(s string) (span string, complete bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return s[start:], false
}

// Repair salvages a parseable object from s. If a top-level object closes, the
// text up to that point is kept and anything after it dropped. Otherwise the
// text is cut at the last point where every open value was complete and the
// missing closers are appended. Trailing commas are removed in both cases.
// ok is false when nothing could be salvaged.
func Repair(s string) (repaired string, ok bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}

	var (
		stack             []byte
		inString, escaped bool
		cut               = -1
		cutStack          []byte
	)
	mark := func(at int) {
		cut = at
		cutStack = append(cutStack[:0], stack...)
	}

scan:
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != ch {
				break scan
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return stripTrailingCommas(s[start : i+1]), true
			}
			mark(i + 1)
		case ',':
			mark(i)
		}
	}

	if cut <= start {
		return "", false
	}
	var b strings.Builder
	b.WriteString(s[start:cut])
	for i := len(cutStack) - 1; i >= 0; i-- {
		b.WriteByte(cutStack[i])
	}
	return stripTrailingCommas(b.String()), true
}

// stripTrailingCommas drops commas that directly precede a closing bracket.
func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			b.WriteByte(ch)
			continue
		}
		if ch == '"' {
			inString = true
		}
		if ch == ',' {
			j := i + 1
			for j < len(s) && strings.IndexByte(" \t\r\n", s[j]) >= 0 {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}
