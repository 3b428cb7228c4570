package cleaning

import (
	"fmt"
	"strings"
)

// maxIdentifierLen caps column and table identifiers; 63 bytes is the
// tightest limit across the supported backends.
const maxIdentifierLen = 63

// NormalizeColumnNames converts raw header names into safe, unique,
// lowercase identifiers.
//
// The function is idempotent: feeding its own output back yields the same
// names. Collisions are disambiguated with a numeric suffix on the second
// and later occurrences.
func NormalizeColumnNames(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]int, len(in))

	for _, raw := range in {
		name := normalizeName(raw)
		if name == "" {
			name = "col"
		}
		if name[0] >= '0' && name[0] <= '9' {
			name = "col_" + name
		}
		name = truncateIdentifier(name)

		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = truncateIdentifier(fmt.Sprintf("%s_%d", name, n))
			seen[name] = 1
		} else {
			seen[name] = 1
		}
		out = append(out, name)
	}
	return out
}

// normalizeName lowercases and strips a header to [a-z0-9_]: every run of
// other characters collapses to a single underscore, then leading/trailing
// underscores are trimmed.
func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

func truncateIdentifier(s string) string {
	if len(s) <= maxIdentifierLen {
		return s
	}
	return strings.TrimRight(s[:maxIdentifierLen], "_")
}
