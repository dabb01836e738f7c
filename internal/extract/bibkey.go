package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// BibKeyMode selects how much of the title goes into a generated citation key.
type BibKeyMode string

const (
	BibKeyShort  BibKeyMode = "short"  // author2024
	BibKeyMedium BibKeyMode = "medium" // author2024keyword
	BibKeyLong   BibKeyMode = "long"   // author2024 + first 3 title keywords
)

var bibkeyStopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "of": {}, "for": {}, "and": {}, "or": {},
	"in": {}, "on": {}, "to": {}, "with": {}, "by": {}, "from": {}, "as": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"at": {}, "into": {}, "through": {}, "during": {}, "before": {}, "after": {},
	"above": {}, "below": {}, "between": {}, "under": {}, "over": {},
}

var (
	bibkeyWordRE  = regexp.MustCompile(`\b[a-zA-Z]+\b`)
	bibkeyCleanRE = regexp.MustCompile(`[^a-zA-Z\x{4e00}-\x{9fff}]`)
)

// BibKey builds a citation key from the first author's surname, year, and
// title keywords according to mode.
func BibKey(title, authors string, year int, mode BibKeyMode) string {
	first := "unknown"
	if authors != "" {
		full := strings.TrimSpace(strings.SplitN(authors, ";", 2)[0])
		if chineseRE.MatchString(full) {
			// CJK name: the surname is the leading character.
			for _, r := range full {
				first = string(r)
				break
			}
		} else if parts := strings.Fields(full); len(parts) > 0 {
			first = strings.ToLower(parts[len(parts)-1])
		}
	}
	first = strings.ToLower(bibkeyCleanRE.ReplaceAllString(first, ""))
	if first == "" {
		first = "unknown"
	}

	y := "0000"
	if year > 0 {
		y = fmt.Sprintf("%d", year)
	}

	if mode == BibKeyShort {
		return first + y
	}

	var keywords []string
	for _, w := range bibkeyWordRE.FindAllString(strings.ToLower(title), -1) {
		if _, stop := bibkeyStopwords[w]; stop || len(w) <= 2 {
			continue
		}
		keywords = append(keywords, w)
	}

	if mode == BibKeyMedium {
		kw := ""
		if len(keywords) > 0 {
			kw = keywords[0]
		}
		return first + y + kw
	}

	n := len(keywords)
	if n > 3 {
		n = 3
	}
	return first + y + strings.Join(keywords[:n], "")
}
