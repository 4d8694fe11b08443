package action

import (
	"fmt"
	"regexp"
	"strings"
)

// Pre-compiled regexes for JSON repair (compiled once, used many times).
// These handle common LLM output errors but have limitations: escaped quotes
// within single-quoted strings are not fully supported, and deeply nested
// structures may not be repaired correctly.
var (
	// Fix trailing commas before closing brace/bracket: ,} -> }
	trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)

	// Fix single quotes for object keys: {'key': -> {"key":
	singleQuoteKeyRegex = regexp.MustCompile(`([{,]\s*)'(\w+)'(\s*:)`)

	// Fix single quotes for string values after colon: : 'value' -> : "value"
	singleQuoteValueRegex = regexp.MustCompile(`(:\s*)'((?:[^'\\]|\\.)*)'(\s*[,}\]])`)
)

// repairJSON attempts to fix common JSON syntax errors from LLMs: raw
// control characters inside strings, trailing commas, and single-quoted
// keys or values.
func repairJSON(input string) string {
	result := sanitizeControlChars(input)

	result = trailingCommaRegex.ReplaceAllString(result, `$1`)
	result = singleQuoteKeyRegex.ReplaceAllString(result, `$1"$2"$3`)

	result = singleQuoteValueRegex.ReplaceAllStringFunc(result, func(match string) string {
		parts := singleQuoteValueRegex.FindStringSubmatch(match)
		if len(parts) != 4 {
			return match
		}
		value := parts[2]
		value = strings.ReplaceAll(value, `\'`, `'`)
		value = strings.ReplaceAll(value, `"`, `\"`)
		return parts[1] + `"` + value + `"` + parts[3]
	})

	return result
}

// sanitizeControlChars escapes literal control characters inside JSON
// strings. LLMs often output raw tabs or newlines, which are invalid there.
func sanitizeControlChars(input string) string {
	var result strings.Builder
	result.Grow(len(input))

	inString := false
	escaped := false

	for i := 0; i < len(input); i++ {
		c := input[i]

		if escaped {
			result.WriteByte(c)
			escaped = false
			continue
		}

		if c == '\\' && inString {
			result.WriteByte(c)
			escaped = true
			continue
		}

		if c == '"' {
			inString = !inString
			result.WriteByte(c)
			continue
		}

		if inString {
			switch c {
			case '\t':
				result.WriteString(`\t`)
			case '\n':
				result.WriteString(`\n`)
			case '\r':
				result.WriteString(`\r`)
			default:
				if c < 0x20 {
					result.WriteString(fmt.Sprintf(`\u%04x`, c))
				} else {
					result.WriteByte(c)
				}
			}
		} else {
			result.WriteByte(c)
		}
	}

	return result.String()
}
