// Package filter implements the include/exclude display predicate applied
// to classified packet summaries.
package filter

import "strings"

// Rule is one pattern from the filter spec. An exclude rule suppresses any
// summary containing its pattern; an include rule admits matching summaries.
type Rule struct {
	Pattern string
	Exclude bool
}

// ParseSpec parses a raw filter spec into an ordered rule list.
//
// Spec syntax:
//   - patterns are separated by ";"
//   - a leading "!" marks an exclude rule
//   - surrounding whitespace is trimmed, empty fragments are skipped
//
// "TCP;!192.168.1.1" keeps TCP summaries except those touching 192.168.1.1.
func ParseSpec(raw string) []Rule {
	var rules []Rule
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if after, ok := strings.CutPrefix(part, "!"); ok {
			pattern := strings.TrimSpace(after)
			if pattern == "" {
				continue
			}
			rules = append(rules, Rule{Pattern: pattern, Exclude: true})
			continue
		}
		rules = append(rules, Rule{Pattern: part})
	}
	return rules
}

// ShouldDisplay reports whether a summary passes the rule list. Matching is
// case-insensitive substring containment, evaluated in a fixed order:
//
//  1. no rules -> display
//  2. any exclude rule matches -> drop, regardless of include rules
//  3. no include rules -> display (exclude-only sets act as a deny list)
//  4. otherwise display only if some include rule matches
func ShouldDisplay(text string, rules []Rule) bool {
	if len(rules) == 0 {
		return true
	}

	lower := strings.ToLower(text)
	hasInclude := false
	for _, r := range rules {
		if r.Exclude {
			if strings.Contains(lower, strings.ToLower(r.Pattern)) {
				return false
			}
			continue
		}
		hasInclude = true
	}
	if !hasInclude {
		return true
	}

	for _, r := range rules {
		if !r.Exclude && strings.Contains(lower, strings.ToLower(r.Pattern)) {
			return true
		}
	}
	return false
}
