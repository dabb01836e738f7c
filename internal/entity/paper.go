package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/yliu-xjtu/biomanager/constants"
)

// PaperFields is the best-effort field set pulled out of one document.
// A field is either present (non-empty, validated shape) or absent; callers
// must treat "" and absent as the same thing.
type PaperFields struct {
	Title     string
	Authors   string // ordered, semicolon-joined display form
	Year      int    // 0 = unknown
	Venue     string
	DOI       string
	URL       string
	Volume    string
	Issue     string
	Pages     string
	RawText   string
	PageCount int
	CharCount int
}

// Paper is a persisted bibliographic record.
type Paper struct {
	ID              uuid.UUID                  `json:"id"`
	Title           string                     `json:"title"`
	Authors         string                     `json:"authors"`
	Year            int                        `json:"year,omitempty"`
	Venue           string                     `json:"venue,omitempty"`
	DOI             string                     `json:"doi,omitempty"`
	URL             string                     `json:"url,omitempty"`
	Volume          string                     `json:"volume,omitempty"`
	Issue           string                     `json:"issue,omitempty"`
	Pages           string                     `json:"pages,omitempty"`
	EntryType       string                     `json:"entry_type"`       // article | inproceedings
	PublicationType string                     `json:"publication_type"` // journal | conference | other
	BibKey          string                     `json:"bib_key,omitempty"`
	Confidence      float64                    `json:"confidence"`
	Source          constants.ResolutionSource `json:"source"`
	CreatedAt       time.Time                  `json:"created_at"`
}

// Candidate is a catalog search result. Transient: exists only during resolution.
type Candidate struct {
	DOI     string
	Title   string
	Authors string
	Year    int
	Venue   string
	Volume  string
	Issue   string
	Pages   string
	URL     string
	Score   float64 // service-side relevance, informational only
}

// Resolution is the outcome of resolving one PaperFields against the catalogs.
type Resolution struct {
	DOI        string
	Confidence float64 // 0..100
	Source     constants.ResolutionSource
	Merged     Candidate // best candidate's fields; zero value when Source is none
}
