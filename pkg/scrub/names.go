package scrub

import (
	"strconv"
	"strings"
)

// uniquifier turns arbitrary header names into unique identifiers made of
// lowercase ASCII letters, digits and underscores.
type uniquifier struct {
	used map[string]bool
}

func newUniquifier() *uniquifier {
	return &uniquifier{used: make(map[string]bool)}
}

// uniqueID returns the cleaned form of name, suffixed with _2, _3, ... if
// that form was already handed out.
func (u *uniquifier) uniqueID(name string) string {
	base := cleanName(name)
	id := base
	for n := 2; u.used[id]; n++ {
		id = base + "_" + strconv.Itoa(n)
	}
	u.used[id] = true
	return id
}

// cleanName lowercases name and collapses every run of other bytes into a
// single underscore. Leading and trailing underscores from such runs are
// dropped. Names that end up empty become "column"; names starting with a
// digit get a leading underscore.
func cleanName(name string) string {
	var b strings.Builder
	pendingSep := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			c += 'a' - 'A'
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
		default:
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteByte(c)
	}

	out := b.String()
	if out == "" {
		return "column"
	}
	if out[0] >= '0' && out[0] <= '9' {
		return "_" + out
	}
	return out
}
