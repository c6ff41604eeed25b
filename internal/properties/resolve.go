package properties

import "strings"

const (
	refOpen  = "${"
	refClose = "}"
	refEsc   = '$'
)

// Interpolate replaces every ${identifier} in value with lookup(identifier).
// Identifiers lookup does not know are left as literal text. A doubled dollar
// ($${x}) escapes the reference and yields the literal ${x}. Replacement text
// is not scanned again.
func Interpolate(value string, lookup func(string) (string, bool)) string {
	if !strings.Contains(value, refOpen) {
		return value
	}

	var sb strings.Builder
	sb.Grow(len(value))

	for i := 0; i < len(value); {
		start := strings.Index(value[i:], refOpen)
		if start < 0 {
			sb.WriteString(value[i:])
			break
		}
		start += i

		if start > i && value[start-1] == refEsc {
			// "$${" -> literal "${"
			sb.WriteString(value[i : start-1])
			sb.WriteString(refOpen)
			i = start + len(refOpen)
			continue
		}

		end := strings.Index(value[start+len(refOpen):], refClose)
		if end < 0 {
			sb.WriteString(value[i:])
			break
		}
		end += start + len(refOpen)

		sb.WriteString(value[i:start])
		name := value[start+len(refOpen) : end]
		if replacement, ok := lookup(name); ok && name != "" {
			sb.WriteString(replacement)
		} else {
			sb.WriteString(value[start : end+len(refClose)])
		}
		i = end + len(refClose)
	}

	return sb.String()
}

// resolveReferences runs the one interpolation pass. Every value is resolved
// against the values as they were before the pass started, so the result does
// not depend on map iteration order and references are never chased further.
func resolveReferences(values map[string]string) int {
	snapshot := make(map[string]string, len(values))
	for k, v := range values {
		snapshot[k] = v
	}
	lookup := func(name string) (string, bool) {
		v, ok := snapshot[name]
		return v, ok
	}

	changed := 0
	for key, value := range snapshot {
		if strings.TrimSpace(value) == "" {
			continue
		}
		resolved := Interpolate(value, lookup)
		if resolved != value {
			values[key] = resolved
			changed++
		}
	}
	return changed
}
