package recurrence

import (
	"strings"
	"unicode"
)

// NormalizeKey reduces a transaction label to its comparable core: lower
// case, letters only. Dates, amounts and reference numbers embedded in
// labels vary between occurrences of the same payment and must not break
// grouping.
func NormalizeKey(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
