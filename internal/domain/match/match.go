package match

import (
	"math"
	"strings"
)

const (
	// NameSuggestionThreshold is the floor for surfacing a ranked suggestion
	// instead of an auto-applied match.
	NameSuggestionThreshold = 30
	// TitleSimilarThreshold flags an imported title for manual review.
	TitleSimilarThreshold = 50
)

// Matcher scores names and titles. Nicknames maps a short form to its
// canonical first name ("gio" -> "giovanni") and is injected so callers and
// tests control the table.
type Matcher struct {
	Nicknames map[string]string
}

func New(nicknames map[string]string) *Matcher {
	normalized := make(map[string]string, len(nicknames))
	for alias, canonical := range nicknames {
		normalized[normalize(alias)] = normalize(canonical)
	}
	return &Matcher{Nicknames: normalized}
}

// NameScore rates how well a candidate name identifies a member name, 0-100.
// Exact match 100, first-token match 80, substring containment 70, otherwise
// token-set overlap scaled to at most 60.
func (m *Matcher) NameScore(candidate, member string) int {
	cand := normalize(candidate)
	memb := normalize(member)
	if cand == "" || memb == "" {
		return 0
	}
	if cand == memb {
		return 100
	}

	candTokens := strings.Fields(cand)
	membTokens := strings.Fields(memb)
	if m.firstTokenMatches(candTokens, membTokens) {
		return 80
	}
	if strings.Contains(memb, cand) || strings.Contains(cand, memb) {
		return 70
	}

	overlap := 0
	for _, token := range candTokens {
		for _, other := range membTokens {
			if token == other {
				overlap++
				break
			}
		}
	}
	maxTokens := len(candTokens)
	if len(membTokens) > maxTokens {
		maxTokens = len(membTokens)
	}
	if maxTokens == 0 {
		return 0
	}
	return int(math.Round(float64(overlap) / float64(maxTokens) * 60))
}

// BestMember returns the index and score of the best-scoring member name, or
// (-1, 0) when names is empty.
func (m *Matcher) BestMember(candidate string, names []string) (int, int) {
	best, bestScore := -1, 0
	for i, name := range names {
		if score := m.NameScore(candidate, name); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore
}

// TitleScore rates similarity between two entity titles, 0-100. Exact match
// 100; otherwise a word-overlap ratio over tokens longer than two characters,
// floored at 70 when one title contains the other.
func (m *Matcher) TitleScore(candidate, existing string) int {
	cand := normalize(candidate)
	exist := normalize(existing)
	if cand == "" || exist == "" {
		return 0
	}
	if cand == exist {
		return 100
	}

	candWords := significantWords(cand)
	existWords := significantWords(exist)
	maxWords := len(candWords)
	if len(existWords) > maxWords {
		maxWords = len(existWords)
	}

	wordSimilarity := 0.0
	if maxWords > 0 {
		matching := 0
		for _, word := range candWords {
			for _, other := range existWords {
				if strings.Contains(other, word) || strings.Contains(word, other) {
					matching++
					break
				}
			}
		}
		wordSimilarity = float64(matching) / float64(maxWords) * 100
	}

	if strings.Contains(cand, exist) || strings.Contains(exist, cand) {
		return int(math.Max(math.Round(wordSimilarity), 70))
	}
	return int(math.Round(wordSimilarity))
}

// SameTitle reports whether two titles are identical after normalization.
// A perfect TitleScore alone does not imply this: every significant word can
// cross-match while the titles still differ.
func (m *Matcher) SameTitle(a, b string) bool {
	return normalize(a) == normalize(b)
}

func (m *Matcher) firstTokenMatches(candTokens, membTokens []string) bool {
	if len(candTokens) == 0 || len(membTokens) == 0 {
		return false
	}
	candFirst := candTokens[0]
	if canonical, ok := m.Nicknames[candFirst]; ok {
		candFirst = canonical
	}
	return candFirst == membTokens[0]
}

func significantWords(s string) []string {
	var out []string
	for _, word := range strings.Fields(s) {
		if len(word) > 2 {
			out = append(out, word)
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
