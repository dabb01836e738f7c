package certificate

import (
	"regexp"
	"strings"

	"github.com/yliu-xjtu/biomanager/internal/entity"
)

var softwareNameCascade = []*regexp.Regexp{
	regexp.MustCompile(`软\s*件\s*名\s*称[：:\s]*([^\n]+?)(?:简称|[Vv]\d|著|\n|$)`),
	regexp.MustCompile(`软件名称[：:\s]*([^\n;；]+)`),
}

var registrationCascade = []*regexp.Regexp{
	regexp.MustCompile(`登\s*记\s*号[：:\s]*(\d{4}SR\d+)`),
	regexp.MustCompile(`(\d{4}SR\d+)`),
}

var holderCascade = []*regexp.Regexp{
	regexp.MustCompile(`著\s*作\s*权\s*人[：:\s]*([^\n]+?)(?:开发|首次|\n|$)`),
	regexp.MustCompile(`著作权人[：:\s]*([^\n;；]+)`),
}

var devDateCascade = []*regexp.Regexp{
	regexp.MustCompile(`开\s*发\s*完\s*成\s*日\s*期[：:\s]*(\d{4}[年\-/.]\s*\d{1,2}[月\-/.]\s*\d{1,2}\s*日?)`),
	regexp.MustCompile(`开发完成日期[：:\s]*(\d{4}[年\-/.]\d{1,2}[月\-/.]\d{1,2}日?)`),
}

var softwareVersionRE = regexp.MustCompile(`[Vv][\d.]+(?:\.\d+)?(?:版)?`)

// ExtractSoftware runs the software-copyright field cascades over raw text.
func ExtractSoftware(text string) entity.SoftwareFields {
	var f entity.SoftwareFields

	for _, re := range softwareNameCascade {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		name := whitespaceRE.ReplaceAllString(strings.TrimSpace(m[1]), "")
		if v := softwareVersionRE.FindString(text); v != "" {
			f.Version = v
			name = strings.TrimSpace(softwareVersionRE.ReplaceAllString(name, ""))
		}
		if name != "" {
			f.SoftwareName = name
			break
		}
	}

	for _, re := range registrationCascade {
		if m := re.FindStringSubmatch(text); m != nil {
			f.RegistrationNumber = m[1]
			break
		}
	}

	for _, re := range holderCascade {
		if m := re.FindStringSubmatch(text); m != nil {
			holder := whitespaceRE.ReplaceAllString(strings.TrimSpace(m[1]), "")
			if holder != "" {
				f.CopyrightHolder = holder
				break
			}
		}
	}

	for _, re := range devDateCascade {
		if m := re.FindStringSubmatch(text); m != nil {
			f.DevelopmentDate = whitespaceRE.ReplaceAllString(m[1], "")
			break
		}
	}

	return f
}

// IsSoftwareComplete reports whether the critical fields are all present.
func IsSoftwareComplete(f entity.SoftwareFields) bool {
	return f.SoftwareName != "" && f.RegistrationNumber != "" &&
		f.CopyrightHolder != "" && f.DevelopmentDate != ""
}
