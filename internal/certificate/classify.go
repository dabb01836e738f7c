// Package certificate classifies patent-grant and software-copyright
// certificate documents and extracts their fields from noisy text. The
// pattern cascades tolerate OCR output that splits CJK field names across
// whitespace and newlines ("发 明 人" for "发明人").
package certificate

import (
	"strings"

	"github.com/yliu-xjtu/biomanager/constants"
)

// Marker sets for classification. A document needs at least three hits from
// one set to be classified.
var patentMarkers = []string{
	"专利号", "授权公告号", "发明名称", "发明人", "专利权人", "申请日", "授权公告日", "ZL",
}

var softwareMarkers = []string{
	"软件名称", "登记号", "著作权人", "开发完成日期", "SR", "软著",
}

const classifyMinMarkers = 3

// Classify decides whether raw text is a patent certificate, a software
// certificate, or neither. Patent wins ties, matching extraction order.
func Classify(text string) constants.CertificateKind {
	if countMarkers(text, patentMarkers) >= classifyMinMarkers {
		return constants.KindPatent
	}
	if countMarkers(text, softwareMarkers) >= classifyMinMarkers {
		return constants.KindSoftware
	}
	return constants.KindNone
}

func countMarkers(text string, markers []string) int {
	n := 0
	for _, m := range markers {
		if strings.Contains(text, m) {
			n++
		}
	}
	return n
}
