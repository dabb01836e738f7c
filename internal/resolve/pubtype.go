package resolve

import "strings"

var conferenceKeywords = []string{
	"proceedings", "conference", "ccs", "ndss", "sp", "oakland",
	"usenix security", " ieee symposium", "acm conference",
	"icml", "neurips", "cvpr", "iccv", "eccv", "iclr",
	"acl", "emnlp", "naacl", "ijcai", "aaai", "sigir",
	"kdd", "www", "icde", "vldb", "sigmod", "icdm",
	"icassp", "interspeech", "icra", "iros",
	"workshop", "symposium", "colloquium",
}

var journalKeywords = []string{
	"journal", "transactions", "letters", "ieee", "acm",
	"elsevier", "springer", "wiley", "taylor", "francis",
	"scie", "sci", "nature", "science", "cell",
	"physica", "applied physics", "review",
}

// DetectPublicationType guesses journal/conference/other from the venue name.
// Conference keywords win: many proceedings titles also contain "IEEE"/"ACM".
func DetectPublicationType(venue string) string {
	if venue == "" {
		return "other"
	}
	lower := strings.ToLower(strings.TrimSpace(venue))
	for _, kw := range conferenceKeywords {
		if strings.Contains(lower, kw) {
			return "conference"
		}
	}
	for _, kw := range journalKeywords {
		if strings.Contains(lower, kw) {
			return "journal"
		}
	}
	return "other"
}

// DetectEntryType maps a venue to a citation entry type.
func DetectEntryType(venue string) string {
	lower := strings.ToLower(venue)
	for _, kw := range []string{"proceedings", "conference", "ccs", "ndss", "symposium"} {
		if strings.Contains(lower, kw) {
			return "inproceedings"
		}
	}
	return "article"
}
