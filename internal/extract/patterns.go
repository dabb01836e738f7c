// Package extract pulls candidate bibliographic fields out of raw document
// text. Every extractor is a pure function over text: it returns the zero
// value when nothing matches, never a partial or placeholder result.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	doiRE     = regexp.MustCompile(`\b(10\.\d{4,}/[-a-zA-Z0-9._%+]+)\b`)
	yearRE    = regexp.MustCompile(`\b(19[5-9]\d|20[0-2]\d)\b`)
	chineseRE = regexp.MustCompile(`[\x{4e00}-\x{9fff}]`)

	titleCleanLatinRE = regexp.MustCompile(`[^\w\s\-–—]`)
	titleCleanCJKRE   = regexp.MustCompile(`[^\w\s\x{4e00}-\x{9fff}\-–—]`)
)

var venueKeywords = []string{
	"conference", "proceedings", "journal", "symposium", "workshop",
	"lecture notes", "acm", "ieee", "springer", "elsevier", "arxiv",
}

// Title extraction bounds, in runes after punctuation stripping.
const (
	latinTitleMin = 15
	latinTitleMax = 400
	cjkTitleMin   = 10
	cjkTitleMax   = 200
)

// IsChinese reports whether the text contains CJK characters.
func IsChinese(text string) bool {
	return chineseRE.MatchString(text)
}

// DOI returns the first well-formed DOI in the text, lower-cased, or "".
func DOI(text string) string {
	matches := doiRE.FindAllStringSubmatch(text, 10)
	for _, m := range matches {
		doi := m[1]
		if strings.Contains(doi, "/") && len(doi) > 10 {
			return strings.ToLower(doi)
		}
	}
	return ""
}

// Year picks the publication year by majority vote over all 4-digit years in
// [1950,2029]: a year seen at least twice wins; otherwise the single most
// frequent year is accepted only inside the plausible window 1990–2025.
func Year(text string) int {
	matches := yearRE.FindAllString(text, -1)
	if len(matches) == 0 {
		return 0
	}

	counts := make(map[string]int)
	order := make([]string, 0, len(matches))
	for _, y := range matches {
		if counts[y] == 0 {
			order = append(order, y)
		}
		counts[y]++
	}

	best := order[0]
	for _, y := range order {
		if counts[y] > counts[best] {
			best = y
		}
	}
	n := atoi4(best)
	if counts[best] >= 2 {
		return n
	}
	if n >= 1990 && n <= 2025 {
		return n
	}
	return 0
}

// Title scans the top of the first page for a plausible title line. A line
// directly preceded by a non-blank line is treated as a continuation and
// skipped. URL-looking lines are rejected.
func Title(text string) string {
	rawLines := strings.Split(text, "\n")
	cjk := IsChinese(text)

	window := 8
	min, max := latinTitleMin, latinTitleMax
	cleanRE := titleCleanLatinRE
	if cjk {
		window = 10
		min, max = cjkTitleMin, cjkTitleMax
		cleanRE = titleCleanCJKRE
	}

	seen := 0
	for i, raw := range rawLines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		seen++
		if seen > window {
			break
		}
		clean := cleanRE.ReplaceAllString(line, "")
		n := utf8.RuneCountInString(clean)
		if n <= min || n >= max {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "http") {
			continue
		}
		if i > 0 && strings.TrimSpace(rawLines[i-1]) != "" {
			continue
		}
		return line
	}

	if cjk {
		return ""
	}

	// Permissive second pass for Latin text: accept a mid-length line even if
	// it follows another non-blank line.
	seen = 0
	for _, raw := range rawLines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		seen++
		if seen > 10 {
			break
		}
		clean := titleCleanLatinRE.ReplaceAllString(line, "")
		n := utf8.RuneCountInString(clean)
		if n > 20 && n < 300 {
			return line
		}
	}
	return ""
}

// Authors scans the top lines for an author-list-looking line.
func Authors(text string) string {
	lines := nonEmptyLines(text)
	n := len(lines)
	if n > 15 {
		n = 15
	}

	if IsChinese(text) {
		for _, line := range lines[:n] {
			lower := strings.ToLower(line)
			if containsAny(lower, "@", "mailto", "http", "www") {
				continue
			}
			runes := utf8.RuneCountInString(line)
			if runes >= 4 && runes <= 100 && chineseRE.MatchString(line) {
				return line
			}
		}
		return ""
	}

	for _, line := range lines[:n] {
		lower := strings.ToLower(line)
		if containsAny(lower, "university", "institute", "@", "mailto") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 || len(parts) > 8 {
			continue
		}
		withLetters := 0
		for _, p := range parts {
			if strings.IndexFunc(p, isASCIILetter) >= 0 {
				withLetters++
			}
		}
		if withLetters >= 2 {
			return line
		}
	}
	return ""
}

// Venue scans the first 50 lines for a known publisher/venue keyword.
func Venue(text string) string {
	lines := nonEmptyLines(text)
	n := len(lines)
	if n > 50 {
		n = 50
	}
	for _, line := range lines[:n] {
		lower := strings.ToLower(line)
		runes := utf8.RuneCountInString(line)
		if runes <= 5 || runes >= 150 {
			continue
		}
		for _, kw := range venueKeywords {
			if strings.Contains(lower, kw) {
				return line
			}
		}
	}
	return ""
}

// NeedsOCR reports whether the extracted text layer is too short to be
// usable. The cutoff counts characters, not bytes, so CJK text is measured
// the same as Latin text.
func NeedsOCR(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) < 200
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func atoi4(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
