package engine

import (
	"strings"
)

// highConfidenceScore is the minimum suggester score for a candidate to be
// considered in the primary spellcheck pool.
const highConfidenceScore = 0.75

// Candidate is one suggested replacement for a misspelled term.
type Candidate struct {
	Text  string
	Score float64
	Freq  int
}

// TermSuggestion holds the candidates the engine proposed for one input term.
type TermSuggestion struct {
	Term       string
	Candidates []Candidate
}

// Suggestions is the engine's answer to a spelling check: whole-phrase
// collations plus per-term replacement candidates.
type Suggestions struct {
	Collations []string
	Terms      []TermSuggestion
}

// Alternatives derives alternative phrasings of the original input from the
// suggestions. With includeLowConfidence false only collations and
// high-scoring single-term substitutions are produced; with true every
// candidate substitution is produced. The original phrase itself is never
// returned, order is deterministic, and duplicates are dropped.
func (s *Suggestions) Alternatives(original string, includeLowConfidence bool) []string {
	if s == nil {
		return nil
	}

	seen := map[string]struct{}{strings.ToLower(original): {}}
	var out []string

	add := func(text string) {
		key := strings.ToLower(text)
		if _, dup := seen[key]; dup || text == "" {
			return
		}
		seen[key] = struct{}{}
		out = append(out, text)
	}

	for _, c := range s.Collations {
		add(c)
	}

	for _, ts := range s.Terms {
		for _, cand := range ts.Candidates {
			if !includeLowConfidence && cand.Score < highConfidenceScore {
				continue
			}
			add(substituteTerm(original, ts.Term, cand.Text))
		}
	}

	return out
}

// substituteTerm replaces one whole term of the phrase, case-insensitively.
func substituteTerm(phrase, term, replacement string) string {
	words := strings.Fields(phrase)
	replaced := false
	for i, w := range words {
		if strings.EqualFold(w, term) {
			words[i] = replacement
			replaced = true
		}
	}
	if !replaced {
		return ""
	}
	return strings.Join(words, " ")
}
