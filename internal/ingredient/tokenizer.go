// Package ingredient parses raw ingredient-list text into discrete entries.
package ingredient

import "strings"

// Entry is one parsed unit from the user's ingredient list.
type Entry struct {
	// Raw is the entry text exactly as it appeared, trimmed.
	Raw string
	// MainName is the text before the first top-level parenthetical.
	MainName string
	// Parenthetical is the content of the first top-level parenthetical
	// group, or empty if there is none.
	Parenthetical string
	// SearchTerms are the independent terms to resolve for this entry,
	// derived per the parenthetical rules below.
	SearchTerms []string
}

// Tokenize splits a raw ingredient list into entries. Separators are comma,
// semicolon, and newline, but only at parenthesis depth zero, so a qualifier
// like "Vitamin E (DL-alpha-tocopheryl acetate, synthetic)" stays one entry.
// Unmatched closing parens are tolerated: depth never goes below zero. Empty
// entries are dropped; a trailing entry without a terminating separator is
// kept.
func Tokenize(rawList string) []Entry {
	var entries []Entry
	var current strings.Builder
	depth := 0

	flush := func() {
		raw := strings.TrimSpace(current.String())
		current.Reset()
		if raw == "" {
			return
		}
		entries = append(entries, parseEntry(raw))
	}

	for _, r := range rawList {
		switch r {
		case '(':
			depth++
			current.WriteRune(r)
		case ')':
			if depth > 0 {
				depth--
			}
			current.WriteRune(r)
		case ',', ';', '\n':
			if depth == 0 {
				flush()
			} else {
				current.WriteRune(r)
			}
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return entries
}

// parseEntry splits one entry into main name, parenthetical content, and the
// derived search terms:
//
//   - no parenthetical: search the main name only
//   - parenthetical without commas: search main name and parenthetical as
//     two independent terms
//   - parenthetical with commas: each comma-separated piece is its own term
//     and the pre-parenthetical text is treated as a descriptive label (a
//     carrier-agent heading, not a substance) and not searched
func parseEntry(raw string) Entry {
	entry := Entry{Raw: raw}

	open := strings.Index(raw, "(")
	if open < 0 {
		entry.MainName = strings.TrimSpace(raw)
		if entry.MainName != "" {
			entry.SearchTerms = []string{entry.MainName}
		}
		return entry
	}

	entry.MainName = strings.TrimSpace(raw[:open])
	inner, _ := firstGroup(raw[open:])
	entry.Parenthetical = strings.TrimSpace(inner)

	switch {
	case entry.Parenthetical == "":
		if entry.MainName != "" {
			entry.SearchTerms = []string{entry.MainName}
		}
	case strings.Contains(entry.Parenthetical, ","):
		for _, part := range strings.Split(entry.Parenthetical, ",") {
			if p := strings.TrimSpace(part); p != "" {
				entry.SearchTerms = append(entry.SearchTerms, p)
			}
		}
	default:
		if entry.MainName != "" {
			entry.SearchTerms = append(entry.SearchTerms, entry.MainName)
		}
		entry.SearchTerms = append(entry.SearchTerms, entry.Parenthetical)
	}

	if len(entry.SearchTerms) == 0 && entry.MainName != "" {
		entry.SearchTerms = []string{entry.MainName}
	}
	return entry
}

// firstGroup returns the content of the leading parenthetical group in s,
// which must start with '('. Nested groups are kept intact; an unterminated
// group runs to the end of the string.
func firstGroup(s string) (inner string, rest string) {
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:]
			}
		}
	}
	return s[1:], ""
}
