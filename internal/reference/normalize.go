package reference

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, drops combining marks, and recomposes,
// so "Pézier" and "Pezier" index to the same key.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes free text for index keys and query terms. The same
// function must be used on both sides or exact lookup fails silently.
// Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	s := strings.ToLower(text)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\'', '’', ',':
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// langTagSuffix matches a trailing two-letter parenthetical language tag,
// e.g. "Nattljusolja (EN)".
func hasLangTagSuffix(s string) (string, bool) {
	t := strings.TrimSpace(s)
	if len(t) < 4 || !strings.HasSuffix(t, ")") {
		return "", false
	}
	open := strings.LastIndex(t, "(")
	if open < 0 {
		return "", false
	}
	inner := t[open+1 : len(t)-1]
	if len(inner) != 2 {
		return "", false
	}
	for _, r := range inner {
		if !unicode.IsLetter(r) {
			return "", false
		}
	}
	return strings.TrimSpace(t[:open]), true
}

// stripParentheticals removes every parenthesized group from the text.
func stripParentheticals(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// IndexVariants returns the normalized forms under which a reference name is
// indexed: the name itself, the name with a trailing language tag removed,
// and the name with all parenthetical content removed. Duplicates and empty
// variants are dropped.
func IndexVariants(name string) []string {
	seen := make(map[string]struct{}, 3)
	var variants []string
	add := func(raw string) {
		n := Normalize(raw)
		if n == "" {
			return
		}
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		variants = append(variants, n)
	}

	add(name)
	if stripped, ok := hasLangTagSuffix(name); ok {
		add(stripped)
	}
	add(stripParentheticals(name))
	return variants
}
