package resolve

import (
	"regexp"
	"strings"

	"github.com/yliu-xjtu/biomanager/internal/entity"
)

var punctRE = regexp.MustCompile(`[^\w\s]`)

// normalizeTitle lowercases and strips punctuation for word-set comparison.
func normalizeTitle(title string) string {
	return punctRE.ReplaceAllString(strings.ToLower(title), "")
}

// TitleSimilarity is the Jaccard similarity of the two titles' normalized
// word sets, scaled to 0-100.
func TitleSimilarity(t1, t2 string) float64 {
	if t1 == "" || t2 == "" {
		return 0
	}
	w1 := wordSet(normalizeTitle(t1))
	w2 := wordSet(normalizeTitle(t2))
	if len(w1) == 0 || len(w2) == 0 {
		return 0
	}

	intersection := 0
	for w := range w1 {
		if _, ok := w2[w]; ok {
			intersection++
		}
	}
	union := len(w1) + len(w2) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union) * 100
}

// Confidence combines field similarities into one 0-100 score:
// 0.4 x title Jaccard, +20/+10 for exact/adjacent year, +20/+10 for matching
// first-author prefix/surname, +20 for a venue word hit. Deliberately a cheap
// multi-signal heuristic: deterministic, explainable, and backed by a human
// review state for the misses.
func Confidence(paper entity.PaperFields, cand entity.Candidate) float64 {
	score := TitleSimilarity(paper.Title, cand.Title) * 0.4

	if paper.Year > 0 && cand.Year > 0 {
		switch diff := paper.Year - cand.Year; {
		case diff == 0:
			score += 20
		case diff >= -1 && diff <= 1:
			score += 10
		}
	}

	pAuthor := firstAuthorLower(paper.Authors)
	cAuthor := firstAuthorLower(cand.Authors)
	if pAuthor != "" && cAuthor != "" {
		if prefix10(pAuthor) == prefix10(cAuthor) {
			score += 20
		} else if lastToken(pAuthor) != "" && lastToken(pAuthor) == lastToken(cAuthor) {
			score += 10
		}
	}

	pVenue := strings.ToLower(paper.Venue)
	cVenue := strings.ToLower(cand.Venue)
	if pVenue != "" && cVenue != "" {
		words := strings.Fields(pVenue)
		if len(words) > 3 {
			words = words[:3]
		}
		for _, w := range words {
			if strings.Contains(cVenue, w) {
				score += 20
				break
			}
		}
	}

	if score > 100 {
		score = 100
	}
	return score
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

func firstAuthorLower(authors string) string {
	return strings.TrimSpace(strings.ToLower(strings.SplitN(authors, ";", 2)[0]))
}

func prefix10(s string) string {
	r := []rune(s)
	if len(r) > 10 {
		r = r[:10]
	}
	return string(r)
}

func lastToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
