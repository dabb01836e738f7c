package constants

// ParseStatus is the canonical per-file processing status for rows in source_files.
type ParseStatus string

// Stable values (store these exact strings in DB).
const (
	StatusPending     ParseStatus = "pending"      // first sight, not yet processed
	StatusNeedsOCR    ParseStatus = "needs_ocr"    // text layer unusable or no resolution signal
	StatusNeedsReview ParseStatus = "needs_review" // candidate found but below acceptance threshold
	StatusSuccess     ParseStatus = "success"      // resolved with acceptable confidence
	StatusFailed      ParseStatus = "failed"       // terminal extraction failure for this pass
)

// ResolutionSource classifies how a DOI/record was obtained.
type ResolutionSource string

const (
	SourceDOILookup ResolutionSource = "doi_lookup" // DOI known up front, fetched directly
	SourceAuto      ResolutionSource = "auto"       // fuzzy match above threshold
	SourceReview    ResolutionSource = "review"     // candidate exists, below threshold
	SourceNone      ResolutionSource = "none"       // no usable candidate
	SourcePDF       ResolutionSource = "pdf"        // fields came from the file only, no catalog call
)

// ExtractionMethod records where certificate fields came from.
type ExtractionMethod string

const (
	MethodPDFText  ExtractionMethod = "pdf_text"
	MethodOCR      ExtractionMethod = "ocr"
	MethodPDFOCR   ExtractionMethod = "pdf+ocr"
	MethodTextFile ExtractionMethod = "text_file"
)

// CertificateKind discriminates certificate records.
type CertificateKind string

const (
	KindPatent   CertificateKind = "patent"
	KindSoftware CertificateKind = "software"
	KindNone     CertificateKind = ""
)
