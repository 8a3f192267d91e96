package tool

import (
	"strings"
	"unicode"
)

// NormalizeName keeps ASCII letters only and upper-cases the first one.
// The rest keeps its case: "send_Email!" becomes "SendEmail".
func NormalizeName(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
