package scoring

import (
	"errors"
	"math"
	"strings"

	"resume-builder/internal/model"
)

// ErrNoKeywords is returned when coverage is requested for an empty
// keyword set.
var ErrNoKeywords = errors.New("scoring: keyword set is empty")

// Sections reported in Coverage.PerSection.
const (
	SectionSkills     = "skills"
	SectionExperience = "experience"
	SectionProjects   = "projects"
	SectionSummary    = "summary"
	SectionEducation  = "education"
)

var coverageSections = []string{SectionSkills, SectionExperience, SectionProjects, SectionSummary, SectionEducation}

type SectionCoverage struct {
	CoveragePercent int      `json:"coverage_percent"`
	Matched         []string `json:"matched"`
	Missing         []string `json:"missing"`
}

// Coverage reports how many keywords the document text contains.
type Coverage struct {
	CoveragePercent int                        `json:"coverage_percent"`
	Matched         []string                   `json:"matched"`
	Missing         []string                   `json:"missing"`
	Frequency       map[string]int             `json:"frequency"`
	PerSection      map[string]SectionCoverage `json:"per_section"`
}

// ComputeCoverage matches keywords against doc case-insensitively as
// substrings. The overall corpus is summary, skills, experience and
// projects; education only counts in its own section. Blank keywords are
// ignored and repeated ones (ignoring case) count once. Matched and missing
// keep the input order.
func ComputeCoverage(doc model.Document, keywords []string) (Coverage, error) {
	kws := normalizeKeywords(keywords)
	if len(kws) == 0 {
		return Coverage{}, ErrNoKeywords
	}

	corpus := strings.ToLower(OverallText(doc))
	res := Coverage{Frequency: make(map[string]int, len(kws))}
	res.CoveragePercent, res.Matched, res.Missing = match(corpus, kws)
	for _, kw := range kws {
		res.Frequency[kw] = strings.Count(corpus, strings.ToLower(kw))
	}

	res.PerSection = make(map[string]SectionCoverage, len(coverageSections))
	for _, sec := range coverageSections {
		pct, matched, missing := match(strings.ToLower(SectionText(doc, sec)), kws)
		res.PerSection[sec] = SectionCoverage{CoveragePercent: pct, Matched: matched, Missing: missing}
	}
	return res, nil
}

func match(corpus string, kws []string) (int, []string, []string) {
	matched, missing := []string{}, []string{}
	for _, kw := range kws {
		if corpus != "" && strings.Contains(corpus, strings.ToLower(kw)) {
			matched = append(matched, kw)
		} else {
			missing = append(missing, kw)
		}
	}
	return percent(len(matched), len(kws)), matched, missing
}

func percent(covered, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(covered) / float64(total) * 100))
}

func normalizeKeywords(keywords []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		key := strings.ToLower(kw)
		if kw == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out
}

// OverallText is the searchable text used for overall coverage.
func OverallText(doc model.Document) string {
	return joinText(
		SectionText(doc, SectionSummary),
		SectionText(doc, SectionSkills),
		SectionText(doc, SectionExperience),
		SectionText(doc, SectionProjects),
	)
}

// SectionText returns the text of a single section, or "" for unknown
// sections.
func SectionText(doc model.Document, section string) string {
	var parts []string
	switch section {
	case SectionSummary:
		parts = append(parts, doc.Summary)
	case SectionSkills:
		parts = append(parts, doc.Skills...)
	case SectionExperience:
		for _, e := range doc.Experience {
			if e == nil {
				continue
			}
			parts = append(parts, e.Company, e.Title, e.City)
			parts = append(parts, e.Bullets...)
		}
	case SectionProjects:
		for _, p := range doc.Projects {
			if p == nil {
				continue
			}
			parts = append(parts, p.Name, p.Description)
			parts = append(parts, p.Tech...)
		}
	case SectionEducation:
		for _, e := range doc.Education {
			if e == nil {
				continue
			}
			parts = append(parts, e.Institution, e.Degree, e.Details)
		}
	}
	return joinText(parts...)
}

func joinText(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
