package scoring

import (
	"sort"
	"strings"
	"unicode"

	"resume-builder/internal/cleaner"
)

const minKeywordRunes = 2

// stopWords are common English and job-posting words that never make useful
// keywords.
var stopWords = map[string]bool{
	"a": true, "an": true, "as": true, "at": true, "be": true, "by": true,
	"do": true, "if": true, "in": true, "is": true, "it": true, "of": true,
	"on": true, "or": true, "so": true, "to": true, "up": true, "we": true,
	"us": true, "our": true, "and": true, "the": true, "for": true, "with": true,
	"you": true, "are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "your": true, "their": true, "they": true, "work": true, "team": true,
	"role": true, "job": true, "join": true, "about": true, "which": true, "what": true,
	"who": true, "how": true, "can": true, "not": true, "but": true, "all": true,
	"also": true, "more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "new": true, "use": true,
	"using": true, "used": true, "well": true, "high": true, "good": true, "able": true,
	"get": true, "set": true, "such": true, "must": true, "should": true, "would": true,
	"may": true, "etc": true, "per": true, "other": true, "any": true, "including": true,
	"years": true, "year": true, "experience": true, "strong": true, "plus": true,
	"looking": true, "candidate": true, "ideal": true, "responsibilities": true,
	"requirements": true, "preferred": true, "skills": true, "knowledge": true,
	"ability": true, "across": true, "within": true, "help": true, "make": true,
	"like": true, "over": true,
}

// KeywordCount is a keyword and the number of times it occurs.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// Tokenize splits text into lowercase candidate keywords in reading order.
// Letters, digits and the characters + # . form words so that "c++", "c#"
// and "node.js" survive; trailing dots are dropped. HTML input is reduced to
// its text first.
func Tokenize(text string) []string {
	text = cleaner.Text(text)

	var out []string
	var word strings.Builder
	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if keep(w) {
			out = append(out, w)
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return out
}

func keep(w string) bool {
	if len([]rune(w)) < minKeywordRunes || stopWords[w] {
		return false
	}
	return strings.IndexFunc(w, unicode.IsLetter) >= 0
}

// ExtractKeywords returns the distinct keywords of text in order of first
// appearance. The output depends only on text.
func ExtractKeywords(text string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, tok := range Tokenize(text) {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// TopKeywords returns up to n keywords ordered by frequency, ties broken by
// first appearance. n <= 0 returns all of them.
func TopKeywords(text string, n int) []KeywordCount {
	counts := map[string]int{}
	first := map[string]int{}
	for i, tok := range Tokenize(text) {
		if _, ok := first[tok]; !ok {
			first[tok] = i
		}
		counts[tok]++
	}

	out := make([]KeywordCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, KeywordCount{Keyword: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return first[out[i].Keyword] < first[out[j].Keyword]
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
