package app

import "tactical-trivia/internal/domain"

// DefaultPickCount is the number of questions in a quiz run.
const DefaultPickCount = 5

// Pick selects the ordered question sequence for a run.
//
// Ranked runs take questions of the exact tier. Fun runs take the head of the whole
// bank regardless of mode or tier, which also pulls in ranked questions; this is kept
// as-is pending product review. Any other mode filters on mode alone.
// The result is never longer than count and may be empty.
func Pick(bank []domain.Question, mode domain.Mode, tier domain.Tier, count int) []domain.Question {
	if count <= 0 {
		count = DefaultPickCount
	}
	picked := make([]domain.Question, 0, count)
	for _, q := range bank {
		if len(picked) == count {
			break
		}
		if matches(q, mode, tier) {
			picked = append(picked, q)
		}
	}
	return picked
}

func matches(q domain.Question, mode domain.Mode, tier domain.Tier) bool {
	switch mode {
	case domain.ModeFun:
		return true
	case domain.ModeRanked:
		return q.Mode == domain.ModeRanked && q.Tier == tier
	default:
		return q.Mode == mode
	}
}
