package domain

import "math"

// Mode is the question category a quiz run is played in.
type Mode string

const (
	ModeRanked   Mode = "ranked"
	ModeFun      Mode = "fun"
	ModeCallouts Mode = "callouts"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeRanked, ModeFun, ModeCallouts:
		return true
	}
	return false
}

// Tier is the difficulty/reward bracket of a question. The zero value means no tier.
type Tier string

const (
	TierNone  Tier = ""
	Tier1     Tier = "tier1"
	Tier2     Tier = "tier2"
	Tier3     Tier = "tier3"
	Tier4     Tier = "tier4"
	TierMixed Tier = "mixed"
)

// Question is a single trivia item. Questions are immutable once loaded.
type Question struct {
	ID     int    `json:"id" yaml:"id"`
	Mode   Mode   `json:"mode" yaml:"mode"`
	Tier   Tier   `json:"tier,omitempty" yaml:"tier"`
	Points int    `json:"points" yaml:"points"`
	Prompt string `json:"prompt" yaml:"prompt"`
	Answer string `json:"answer" yaml:"answer"`
}

// User is a registered player. Password holds an opaque hash, never the raw secret.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

// ScoreRecord aggregates a player's results across every run they played.
type ScoreRecord struct {
	Total         int          `json:"total"`
	TierTotals    map[Tier]int `json:"tierTotals"`
	CalloutPoints int          `json:"calloutPoints"`
	Answered      int          `json:"answered"`
	Correct       int          `json:"correct"`
}

// NewScoreRecord returns a zero-valued record ready for mutation.
func NewScoreRecord() ScoreRecord {
	return ScoreRecord{TierTotals: make(map[Tier]int)}
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (r ScoreRecord) Clone() ScoreRecord {
	out := r
	out.TierTotals = make(map[Tier]int, len(r.TierTotals))
	for tier, points := range r.TierTotals {
		out.TierTotals[tier] = points
	}
	return out
}

// Accuracy is the rounded share of correct answers, 0 when nothing was answered.
func (r ScoreRecord) Accuracy() int {
	return Percent(r.Correct, r.Answered)
}

// Completion is the final tally of a finished quiz run.
type Completion struct {
	Correct    int `json:"correct"`
	Answered   int `json:"answered"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// LeaderboardEntry is one ranked row of the ranked-points leaderboard.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Total    int    `json:"total"`
}

// Percent returns round(part/whole*100), or 0 for an empty whole.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
