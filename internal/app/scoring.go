package app

import (
	"sort"

	"tactical-trivia/internal/domain"
)

// ScoreDelta is the change a single answer makes to a ScoreRecord.
// Stores that cannot run Go against their state (Redis) translate it into increments.
type ScoreDelta struct {
	Answered      int
	Correct       int
	Tier          domain.Tier
	RankedPoints  int
	CalloutPoints int
}

// AnswerDelta computes the effect of one answer. Only correct ranked answers move the
// total and tier totals, only correct callout answers move callout points, and fun
// answers never change points.
func AnswerDelta(mode domain.Mode, tier domain.Tier, points int, correct bool) ScoreDelta {
	d := ScoreDelta{Answered: 1, Tier: tier}
	if !correct {
		return d
	}
	d.Correct = 1
	switch mode {
	case domain.ModeRanked:
		d.RankedPoints = points
	case domain.ModeCallouts:
		d.CalloutPoints = points
	}
	return d
}

// Apply mutates rec in place.
func (d ScoreDelta) Apply(rec *domain.ScoreRecord) {
	if rec.TierTotals == nil {
		rec.TierTotals = make(map[domain.Tier]int)
	}
	rec.Answered += d.Answered
	rec.Correct += d.Correct
	if d.RankedPoints != 0 {
		rec.Total += d.RankedPoints
		rec.TierTotals[d.Tier] += d.RankedPoints
	}
	rec.CalloutPoints += d.CalloutPoints
}

// RankEntries orders entries by total descending, then username, assigns 1-based
// ranks and truncates to limit (limit <= 0 keeps all).
func RankEntries(entries []domain.LeaderboardEntry, limit int) []domain.LeaderboardEntry {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].Username < entries[j].Username
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
