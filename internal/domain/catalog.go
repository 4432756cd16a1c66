package domain

// TierInfo describes a selectable ranked tier.
type TierInfo struct {
	ID     Tier   `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

var tiers = []TierInfo{
	{ID: Tier1, Name: "Tier 1", Points: 4},
	{ID: Tier2, Name: "Tier 2", Points: 3},
	{ID: Tier3, Name: "Tier 3", Points: 2},
	{ID: Tier4, Name: "Tier 4", Points: 1},
}

// Tiers lists the ranked tiers, highest value first.
func Tiers() []TierInfo {
	out := make([]TierInfo, len(tiers))
	copy(out, tiers)
	return out
}

// DefaultQuestionBank is the built-in catalog used when no loader is configured.
func DefaultQuestionBank() []Question {
	return []Question{
		{ID: 1, Mode: ModeRanked, Tier: Tier4, Points: 1, Prompt: "How many operators are on a standard team?", Answer: "Five"},
		{ID: 2, Mode: ModeRanked, Tier: Tier3, Points: 2, Prompt: "What gadget destroys defender electronics in its radius?", Answer: "Thatcher EMP"},
		{ID: 3, Mode: ModeRanked, Tier: Tier2, Points: 3, Prompt: "Name the defender with Black Eye cameras.", Answer: "Valkyrie"},
		{ID: 4, Mode: ModeRanked, Tier: Tier1, Points: 4, Prompt: "What is the default round timer in ranked?", Answer: "3 minutes"},
		{ID: 5, Mode: ModeFun, Tier: TierMixed, Points: 0, Prompt: "Which operator has the best mustache?", Answer: "Subjective, Tachanka is acceptable"},
	}
}

// View is the screen a client should render after a server response.
type View string

const (
	ViewLanding     View = "landing"
	ViewAuth        View = "auth"
	ViewProfile     View = "profile"
	ViewLeaderboard View = "leaderboard"
	ViewQuiz        View = "quiz"
	ViewResults     View = "results"
	ViewCallouts    View = "callouts"
)
