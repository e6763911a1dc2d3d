package enrich

import "strings"

// seniorityTiers weight title keywords from ownership down to individual
// contributors. First matching tier wins; candidates with no match score
// the default.
var seniorityTiers = []struct {
	score    int
	keywords []string
}{
	{60, []string{"founder", "owner", "partner", "principal"}},
	{50, []string{"chief", "ceo", "cfo", "coo", "cto", "cmo", "cro", "president"}},
	{40, []string{"vp", "vice president"}},
	{30, []string{"director", "head of"}},
	{20, []string{"manager", "lead", "senior"}},
}

const defaultSeniorityScore = 10

// SeniorityScore rates a job title for candidate selection. Higher is more
// senior. Empty titles score zero so titled candidates always win.
func SeniorityScore(title string) int {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return 0
	}
	for _, tier := range seniorityTiers {
		for _, kw := range tier.keywords {
			if strings.Contains(t, kw) {
				return tier.score
			}
		}
	}
	return defaultSeniorityScore
}

// pickBySeniority returns the index of the highest-scoring title, breaking
// ties by the order the search returned.
func pickBySeniority(titles []string) int {
	best, bestScore := 0, -1
	for i, title := range titles {
		if score := SeniorityScore(title); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
