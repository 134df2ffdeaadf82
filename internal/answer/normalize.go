package answer

import (
	"slices"
	"strings"
)

// Separator splits multi-part answers.
const Separator = ","

// Normalize turns a raw answer into its canonical comparable form.
//
// The answer is split on commas; each part is trimmed and lower-cased, empty
// parts are dropped, and the tokens are sorted by byte order so that part
// order does not matter. Duplicate tokens are kept. Empty or whitespace-only
// input yields nil, the "no answer supplied" sentinel.
//
// Examples:
//
//	Normalize("Paris")                 // [paris]
//	Normalize("Red, Blue, Yellow")     // [blue red yellow]
//	Normalize("  washington , george") // [george washington]
func Normalize(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, Separator)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		tokens = append(tokens, p)
	}
	if len(tokens) == 0 {
		return nil
	}

	slices.Sort(tokens)
	return tokens
}

// Join renders canonical tokens back into a single answer string.
func Join(tokens []string) string {
	return strings.Join(tokens, Separator+" ")
}

// Display tidies a raw answer for human-readable output: parts are trimmed,
// empty parts removed, case is preserved.
func Display(raw string) string {
	parts := strings.Split(raw, Separator)
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, Separator+" ")
}
