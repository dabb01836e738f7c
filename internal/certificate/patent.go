package certificate

import (
	"regexp"
	"strings"

	"github.com/yliu-xjtu/biomanager/internal/entity"
)

// Patent number cascades, most field-delimiter-specific first. PDF text
// layers often space out the field name ("专 利 号：ZL 2022 1 1713574.4").
var patentNumberCascade = []*regexp.Regexp{
	regexp.MustCompile(`专\s*利\s*号[：:\s]*((?:ZL|zl)[\s\d.X]+)`),
	regexp.MustCompile(`(ZL\s*\d{4}\s*\d\s*\d{6,8}\s*[.。]?\s*[X\d])`),
	regexp.MustCompile(`专利号[:\s]*((?:ZL|zl)\d{9,15}[.X\d]?)`),
	regexp.MustCompile(`专利号[：:\s]*((?:ZL|zl)\d{4,6}\d{5,8}[.X\d]?)`),
}

// Segmented form for OCR output that broke the number into groups.
var patentNumberSegmentsRE = regexp.MustCompile(`(?:ZL|zl)\s*(\d{4})\s*(\d)\s*(\d{6,8})\s*[.。]?\s*([X\d])`)

var grantNumberCascade = []*regexp.Regexp{
	regexp.MustCompile(`授\s*权\s*公\s*告\s*号[：:\s]*((?:CN|cn)[\s\d]+[A-Za-z]?)`),
	regexp.MustCompile(`授权公告号[:\s]*([A-Z]{2}\d+[A-Z]?)`),
}

var (
	inventionTitleRE     = regexp.MustCompile(`(?:发\s*明\s*名\s*称|专\s*利\s*名\s*称)[：:\s]*([^\n]+)`)
	applicationDateRE    = regexp.MustCompile(`(?:专\s*利\s*)?申\s*请\s*日[：:\s]*(\d{4}[年\-/.]\s*\d{1,2}[月\-/.]\s*\d{1,2}\s*日?)`)
	grantDateRE          = regexp.MustCompile(`授\s*权\s*公?\s*告?\s*日[：:\s]*(\d{4}[年\-/.]\s*\d{1,2}[月\-/.]\s*\d{1,2}\s*日?)`)
	patenteeCascade      = []*regexp.Regexp{
		regexp.MustCompile(`专\s*利\s*权\s*人[：:\s]*([^\n]+)`),
		regexp.MustCompile(`申请日时申请人[：:\s]*([^\n]+)`),
	}
	// The excluded classes double as field terminators: the capture stops at
	// the first character of the next field name (专利/地址/授权/国家知识...).
	inventorsCascade = []*regexp.Regexp{
		regexp.MustCompile(`发\s*明\s*人[：:\s]*([^专地授国]+)`),
		regexp.MustCompile(`申请日时发明人[：:\s]*([^国专地]+)`),
		// Mojibake-tolerant: a colon followed by a semicolon-separated list.
		regexp.MustCompile(`[^\n]*\n[^\n]*\n[^\n]*[：:]\s*([^;；\n]+(?:[;；][^;；\n]+)+)\nר`),
	}
	nameListRE     = regexp.MustCompile(`[：:]\s*([^;；\n]{1,15}(?:[;；][^;；\n]{1,15})+)`)
	nameListSepRE  = regexp.MustCompile(`[;；]`)
	inventorSepsRE = regexp.MustCompile(`[,，、]+`)
	newlineRE      = regexp.MustCompile(`[\n\r]+`)
	whitespaceRE   = regexp.MustCompile(`\s+`)
)

// Field-name cut points for single-line captures that may run into the next
// field on the same physical line.
var patenteeCutMarks = []string{"地址", "地 址"}
var titleCutMarks = []string{"专利号", "发明人", "地址", "申请日"}

// ExtractPatent runs the patent field cascades over raw text.
func ExtractPatent(text string) entity.PatentFields {
	var f entity.PatentFields

	for _, re := range patentNumberCascade {
		if m := re.FindStringSubmatch(text); m != nil {
			f.PatentNumber = NormalizePatentNumber(m[1])
			break
		}
	}
	if f.PatentNumber == "" {
		if m := patentNumberSegmentsRE.FindStringSubmatch(text); m != nil {
			f.PatentNumber = "ZL" + m[1] + m[2] + m[3] + "." + strings.ToUpper(m[4])
		}
	}

	for _, re := range grantNumberCascade {
		if m := re.FindStringSubmatch(text); m != nil {
			f.GrantNumber = whitespaceRE.ReplaceAllString(strings.ToUpper(m[1]), "")
			break
		}
	}

	if m := inventionTitleRE.FindStringSubmatch(text); m != nil {
		title := cutAtAny(strings.TrimSpace(m[1]), titleCutMarks)
		title = whitespaceRE.ReplaceAllString(title, "")
		f.Title = truncateRunes(title, 200)
	}

	f.Inventors = extractInventors(text)

	for _, re := range patenteeCascade {
		if m := re.FindStringSubmatch(text); m != nil {
			p := cutAtAny(strings.TrimSpace(m[1]), patenteeCutMarks)
			p = whitespaceRE.ReplaceAllString(p, "")
			if p != "" {
				f.Patentee = truncateRunes(p, 200)
				break
			}
		}
	}

	if m := applicationDateRE.FindStringSubmatch(text); m != nil {
		f.ApplicationDate = whitespaceRE.ReplaceAllString(m[1], "")
	}
	if m := grantDateRE.FindStringSubmatch(text); m != nil {
		f.GrantDate = whitespaceRE.ReplaceAllString(m[1], "")
	}

	switch {
	case strings.Contains(text, "实用新型"):
		f.PatentType = "实用新型"
	case strings.Contains(text, "外观设计"):
		f.PatentType = "外观设计"
	default:
		f.PatentType = "发明"
	}

	return f
}

func extractInventors(text string) string {
	for _, re := range inventorsCascade {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if inv := cleanInventors(m[1]); inv != "" {
			return inv
		}
	}

	// Structural fallback: any colon-introduced list of at least two short
	// semicolon-separated entries looks like an inventor list.
	for _, m := range nameListRE.FindAllStringSubmatch(text, -1) {
		inv := cleanInventors(m[1])
		if inv == "" {
			continue
		}
		parts := nameListSepRE.Split(inv, -1)
		if len(parts) < 2 {
			continue
		}
		plausible := true
		for _, p := range parts {
			if p == "" {
				continue
			}
			if n := len([]rune(p)); n < 1 || n > 15 {
				plausible = false
				break
			}
		}
		if plausible {
			return inv
		}
	}
	return ""
}

func cleanInventors(raw string) string {
	inv := newlineRE.ReplaceAllString(strings.TrimSpace(raw), "")
	inv = whitespaceRE.ReplaceAllString(inv, "")
	inv = inventorSepsRE.ReplaceAllString(inv, ";")
	inv = strings.Trim(inv, ";；")
	if len([]rune(inv)) <= 1 {
		return ""
	}
	return truncateRunes(inv, 500)
}

func cutAtAny(s string, marks []string) string {
	for _, m := range marks {
		if i := strings.Index(s, m); i > 0 {
			s = s[:i]
		}
	}
	return s
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// IsPatentComplete reports whether the critical fields are all present. An
// incomplete record is still persisted; this only flags review need.
func IsPatentComplete(f entity.PatentFields) bool {
	return f.PatentNumber != "" && f.Title != "" && f.Inventors != "" && f.Patentee != ""
}
