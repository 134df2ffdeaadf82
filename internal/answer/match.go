package answer

import "slices"

// Verdict is the outcome of checking one submission.
type Verdict struct {
	Correct    bool
	Normalized []string
}

// IsCorrect reports whether submitted matches the canonical answer.
// Comparison is exact sequence equality of normalized tokens, so repeated
// tokens must match in count: "red, red, blue" does not equal "red, blue".
// An empty submission is never correct, and neither is anything compared
// against an empty canonical answer.
func IsCorrect(canonical []string, submitted string) bool {
	return Check(canonical, submitted).Correct
}

// Check normalizes the submission and compares it to canonical.
func Check(canonical []string, submitted string) Verdict {
	normalized := Normalize(submitted)
	if len(canonical) == 0 || len(normalized) == 0 {
		return Verdict{Normalized: normalized}
	}
	return Verdict{
		Correct:    slices.Equal(canonical, normalized),
		Normalized: normalized,
	}
}

// Equivalent reports whether two raw answers normalize to the same
// non-empty canonical form.
func Equivalent(submitted, expected string) bool {
	return IsCorrect(Normalize(expected), submitted)
}
