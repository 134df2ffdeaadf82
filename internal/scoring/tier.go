package scoring

// Tier buckets a score for feedback messages.
type Tier string

const (
	TierPerfect   Tier = "perfect"
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierClose     Tier = "close"
	TierFailed    Tier = "failed"
)

// TierFor maps a percentage score to its tier.
func TierFor(score float64) Tier {
	switch {
	case score >= 100:
		return TierPerfect
	case score >= 90:
		return TierExcellent
	case score >= 80:
		return TierGood
	case score >= 70:
		return TierClose
	default:
		return TierFailed
	}
}

// Message is a short feedback line for the tier.
func (t Tier) Message() string {
	switch t {
	case TierPerfect:
		return "Perfect score! All answers correct."
	case TierExcellent:
		return "Excellent work!"
	case TierGood:
		return "Good job, you passed."
	case TierClose:
		return "Close! A little more practice."
	default:
		return "Keep practicing."
	}
}
