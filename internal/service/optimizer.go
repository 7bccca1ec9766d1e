package service

import (
	"fmt"
	"sort"
	"strings"

	"relief-ops/internal/model"
)

// PrioritySkills skills the optimizer rewards, lower case
var PrioritySkills = map[string]struct{}{
	"first aid":       {},
	"cpr":             {},
	"nursing":         {},
	"medical doctor":  {},
	"paramedic":       {},
	"boat operator":   {},
	"driving":         {},
	"search & rescue": {},
}

// Suggestion one proposed pairing and why it scored what it did
type Suggestion struct {
	Case      model.Case
	Volunteer model.User
	Score     int
	Rationale []string
}

// Plan optimizer output. Unmatched lists the cases left without a
// volunteer because the pool ran out.
type Plan struct {
	Suggestions []Suggestion
	Unmatched   []string
}

// Optimize runs one greedy case-major pass. Every volunteer is offered at
// most once per plan; on equal scores the earlier volunteer wins. Cases are
// taken in the order given and never re-sorted, so a later case can lose the
// best volunteer to an earlier one.
func Optimize(cases []model.Case, volunteers []model.User, workload map[string]int) Plan {
	plan := Plan{Suggestions: make([]Suggestion, 0, len(cases))}
	consumed := make(map[string]bool, len(volunteers))

	for _, c := range cases {
		type ranked struct {
			idx   int
			score int
			why   []string
		}
		var pool []ranked
		for i := range volunteers {
			v := &volunteers[i]
			if consumed[v.UserID] {
				continue
			}
			score, why := scoreVolunteer(&c, v, workload[v.UserID])
			pool = append(pool, ranked{idx: i, score: score, why: why})
		}
		if len(pool) == 0 {
			plan.Unmatched = append(plan.Unmatched, c.CaseID)
			continue
		}
		sort.SliceStable(pool, func(a, b int) bool { return pool[a].score > pool[b].score })

		top := pool[0]
		v := volunteers[top.idx]
		consumed[v.UserID] = true
		plan.Suggestions = append(plan.Suggestions, Suggestion{
			Case:      c,
			Volunteer: v,
			Score:     top.score,
			Rationale: top.why,
		})
	}
	return plan
}

func scoreVolunteer(c *model.Case, v *model.User, load int) (int, []string) {
	score := 0
	var why []string

	if sameText(v.Region, c.Region) {
		score += 2
		why = append(why, "same region")
	}
	if sameText(v.Country, c.Country) {
		score++
		why = append(why, "same country")
	}

	overlap := 0
	for skill := range v.SkillSet() {
		if _, ok := PrioritySkills[skill]; ok {
			overlap++
		}
	}
	if overlap > 0 {
		score += 3 * overlap
		why = append(why, fmt.Sprintf("%d skill match", overlap))
	}

	if load > 0 {
		score -= load
		why = append(why, fmt.Sprintf("-%d workload penalty", load))
	}

	if len(why) == 0 {
		why = []string{"generic"}
	}
	return score, why
}

// sameText compares trimmed values case-insensitively; empty never matches
func sameText(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
