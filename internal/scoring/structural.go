// Package scoring implements the résumé heuristics: a structural
// completeness score and job-description keyword coverage.
package scoring

import (
	"fmt"
	"strconv"
	"strings"

	"resume-builder/internal/model"
)

// Rule names usable in penalty overrides.
const (
	RuleFullName     = "missing_full_name"
	RuleEmail        = "missing_email"
	RuleExperience   = "no_experience"
	RulePhoneCountry = "phone_country_code"
	RuleSkills       = "few_skills"
	RuleBullets      = "thin_bullets"
)

// Rubric names reported in Result.Rubric.
const (
	RubricDefault  = "default"
	RubricExtended = "extended"
	RubricLocal    = "local"
)

const (
	minSkills      = 5
	minBulletChars = 100
)

// Rule is one independent penalty. Applies reports whether the penalty
// should be charged for doc.
type Rule struct {
	Name    string
	Penalty int
	Hint    string
	Applies func(doc model.Document) bool
}

// Rubric is an ordered penalty table. Hints are reported in table order.
type Rubric struct {
	Name  string
	Rules []Rule
}

// Result is the outcome of a structural check.
type Result struct {
	Score  int      `json:"score"`
	Hints  []string `json:"hints"`
	Rubric string   `json:"rubric,omitempty"`
}

var (
	fullNameRule = Rule{
		Name:    RuleFullName,
		Penalty: 20,
		Hint:    "Add your full name in Contact.",
		Applies: func(d model.Document) bool { return strings.TrimSpace(d.Contact.FullName) == "" },
	}
	emailRule = Rule{
		Name:    RuleEmail,
		Penalty: 20,
		Hint:    "Add an email address.",
		Applies: func(d model.Document) bool { return strings.TrimSpace(d.Contact.Email) == "" },
	}
	experienceRule = Rule{
		Name:    RuleExperience,
		Penalty: 25,
		Hint:    "Add at least one experience entry.",
		Applies: func(d model.Document) bool { return len(d.Experience) == 0 },
	}
	skillsRule = Rule{
		Name:    RuleSkills,
		Penalty: 10,
		Hint:    "Add more relevant skills (aim for 8–12).",
		Applies: func(d model.Document) bool { return len(d.Skills) < minSkills },
	}
	phoneRule = Rule{
		Name:    RulePhoneCountry,
		Penalty: 5,
		Hint:    "Include country code in phone (e.g., +91...).",
		Applies: func(d model.Document) bool {
			phone := strings.TrimSpace(d.Contact.Phone)
			return d.Locale == "IN" && phone != "" && !strings.HasPrefix(phone, "+")
		},
	}
	bulletsRule = Rule{
		Name:    RuleBullets,
		Penalty: 10,
		Hint:    "Add quantified bullet points under experience.",
		Applies: func(d model.Document) bool {
			n := 0
			for _, e := range d.Experience {
				if e == nil {
					continue
				}
				for _, b := range e.Bullets {
					n += len(b)
				}
			}
			return n < minBulletChars
		},
	}
)

// DefaultRubric is the client-computable rubric shared by every scoring
// path.
func DefaultRubric() Rubric {
	return Rubric{Name: RubricDefault, Rules: []Rule{fullNameRule, emailRule, experienceRule, skillsRule}}
}

// ExtendedRubric adds the locale phone and bullet-volume checks on top of
// the default rules.
func ExtendedRubric() Rubric {
	return Rubric{Name: RubricExtended, Rules: []Rule{fullNameRule, emailRule, experienceRule, phoneRule, skillsRule, bulletsRule}}
}

// RubricByName returns the named rubric, or an error for unknown names.
func RubricByName(name string) (Rubric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", RubricDefault:
		return DefaultRubric(), nil
	case RubricExtended:
		return ExtendedRubric(), nil
	}
	return Rubric{}, fmt.Errorf("unknown rubric %q", name)
}

// WithPenalties returns a copy of r with the points of the named rules
// replaced. Unknown names are ignored.
func (r Rubric) WithPenalties(points map[string]int) Rubric {
	rules := make([]Rule, len(r.Rules))
	copy(rules, r.Rules)
	for i := range rules {
		if p, ok := points[rules[i].Name]; ok {
			rules[i].Penalty = p
		}
	}
	return Rubric{Name: r.Name, Rules: rules}
}

// Score charges every applicable rule independently, starting from 100.
// The result is clamped to [0, 100].
func (r Rubric) Score(doc model.Document) Result {
	score := 100
	hints := []string{}
	for _, rule := range r.Rules {
		if rule.Applies == nil || !rule.Applies(doc) {
			continue
		}
		score -= rule.Penalty
		hints = append(hints, rule.Hint)
	}
	return Result{Score: clamp(score), Hints: hints, Rubric: r.Name}
}

// ScoreStructural scores doc with the default rubric.
func ScoreStructural(doc model.Document) Result {
	return DefaultRubric().Score(doc)
}

// ParsePenalties reads "rule=points,rule=points".
func ParsePenalties(s string) (map[string]int, error) {
	out := map[string]int{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, val, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("penalty %q: expected rule=points", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("penalty %q: points must be a non-negative integer", part)
		}
		out[strings.TrimSpace(name)] = n
	}
	return out, nil
}

func clamp(score int) int {
	return max(0, min(100, score))
}
