package target

import "strings"

// Expand substitutes $NAME and ${NAME} references in value with entries from
// env. NAME in the bare form is [A-Za-z0-9_]+; the braced form additionally
// allows dots. References with no matching key are left verbatim, as are a
// lone '$' and an unterminated '${'. Expand never fails.
func Expand(value string, env map[string]string) string {
	if !strings.Contains(value, "$") {
		return value
	}

	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); {
		if value[i] != '$' || i+1 >= len(value) {
			b.WriteByte(value[i])
			i++
			continue
		}

		if value[i+1] == '{' {
			end := i + 2
			for end < len(value) && isBracedNameByte(value[end]) {
				end++
			}
			if end == i+2 || end >= len(value) || value[end] != '}' {
				b.WriteByte(value[i])
				i++
				continue
			}
			name := value[i+2 : end]
			if resolved, ok := env[name]; ok {
				b.WriteString(resolved)
			} else {
				b.WriteString(value[i : end+1])
			}
			i = end + 1
			continue
		}

		end := i + 1
		for end < len(value) && isNameByte(value[end]) {
			end++
		}
		if end == i+1 {
			b.WriteByte(value[i])
			i++
			continue
		}
		name := value[i+1 : end]
		if resolved, ok := env[name]; ok {
			b.WriteString(resolved)
		} else {
			b.WriteString(value[i:end])
		}
		i = end
	}
	return b.String()
}

func isNameByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func isBracedNameByte(c byte) bool {
	return isNameByte(c) || c == '.'
}
