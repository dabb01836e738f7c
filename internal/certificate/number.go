package certificate

import (
	"fmt"
	"regexp"
	"strings"
)

// Canonical patent number shape after normalization:
// ZL + 4-digit year + 1 non-zero type digit + 6-7 digit serial + "." + check char.
var patentNumberShapeRE = regexp.MustCompile(`^ZL\d{4}[1-9]\d{6,7}[.][X\d]$`)

var numberJunkRE = regexp.MustCompile(`[\s。]+`)

// NormalizePatentNumber strips whitespace and CJK periods, upper-cases, and
// restores the decimal point before the check character when OCR dropped it.
func NormalizePatentNumber(raw string) string {
	pn := strings.ToUpper(numberJunkRE.ReplaceAllString(raw, ""))
	if !strings.Contains(pn, ".") && len(pn) >= 14 {
		pn = pn[:len(pn)-1] + "." + pn[len(pn)-1:]
	}
	return pn
}

// ValidatePatentNumber checks the canonical 16-character shape. It is pure:
// no normalization beyond space removal, no side effects.
func ValidatePatentNumber(patentNumber string) (bool, string) {
	if strings.TrimSpace(patentNumber) == "" {
		return false, "专利号不能为空"
	}

	pn := strings.ToUpper(strings.TrimSpace(patentNumber))
	if !strings.HasPrefix(pn, "ZL") {
		return false, "专利号必须以'ZL'开头"
	}

	pn = strings.ReplaceAll(pn, " ", "")
	if len(pn) != 16 {
		return false, fmt.Sprintf("专利号必须为16位，当前: %d位", len(pn))
	}

	if !patentNumberShapeRE.MatchString(pn) {
		return false, "专利号格式不正确，请检查: ZL202211551727.X"
	}
	return true, ""
}
