// Package itemlist parses the free-text work item fields of a unit.
//
// Users type items one per line, comma separated, or a mix of both. The
// parsed list is what the report prints and what decides whether a unit
// counts as active.
package itemlist

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize splits text on newlines and commas, trims every token, drops
// empty tokens and removes case-insensitive duplicates. The first spelling
// and the first position of an item win.
//
// Normalize is idempotent: feeding its output back (joined by newlines)
// returns the same list.
func Normalize(text string) []string {
	out := []string{}
	if strings.TrimSpace(text) == "" {
		return out
	}

	seen := map[string]struct{}{}
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == ','
	})
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		k := foldKey(tok)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// foldKey lowercases s for duplicate detection. Invalid UTF-8 bytes are kept
// as they are; strings.ToLower would turn them all into U+FFFD.
func foldKey(s string) string {
	if utf8.ValidString(s) {
		return strings.ToLower(s)
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(s[i])
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		i += size
	}
	return b.String()
}

// HasItems reports whether text normalizes to at least one item.
func HasItems(text string) bool {
	return len(Normalize(text)) > 0
}

// Join renders a normalized list the way reports print it.
func Join(items []string) string {
	return strings.Join(items, ", ")
}
