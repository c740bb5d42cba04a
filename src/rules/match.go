package rules

import (
	"strings"

	"tresorier-server/src/models"
)

// QuickMatch reports whether the rule's whole pattern occurs in the
// label, case-insensitively. This is the import-time semantic: the
// pattern is one contiguous substring. An empty pattern matches nothing.
func QuickMatch(rule models.Rule, label string) bool {
	pattern := strings.ToLower(strings.TrimSpace(rule.Pattern))
	if pattern == "" {
		return false
	}
	return strings.Contains(strings.ToLower(label), pattern)
}

// FirstQuickMatch scans rules in order and returns the first one whose
// pattern matches the label, or nil.
func FirstQuickMatch(ruleList []models.Rule, label string) *models.Rule {
	for i := range ruleList {
		if QuickMatch(ruleList[i], label) {
			return &ruleList[i]
		}
	}
	return nil
}

// Tokens splits a pattern on whitespace.
func Tokens(pattern string) []string {
	return strings.Fields(pattern)
}

// RetroactiveMatch reports whether every pattern token occurs in the
// label, in order, with anything allowed between tokens. This is the
// bulk-recategorization semantic, deliberately looser than QuickMatch.
// A pattern with no tokens matches nothing.
func RetroactiveMatch(rule models.Rule, label string) bool {
	tokens := Tokens(rule.Pattern)
	if len(tokens) == 0 {
		return false
	}
	rest := strings.ToLower(label)
	for _, tok := range tokens {
		idx := strings.Index(rest, strings.ToLower(tok))
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(tok):]
	}
	return true
}

// LikePattern builds the SQL LIKE expression equivalent to
// RetroactiveMatch: %tok1%tok2%...%. An empty pattern yields "".
func LikePattern(pattern string) string {
	tokens := Tokens(pattern)
	if len(tokens) == 0 {
		return ""
	}
	return "%" + strings.ToLower(strings.Join(tokens, "%")) + "%"
}
