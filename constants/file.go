package constants

import (
	"path/filepath"
	"strings"
)

// File formats for the format field on source_files.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
	TXT   = "TXT"
)

// AllowedExtensions holds the default file extensions picked up by a scan pass.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"bmp":  {},
	"tiff": {},
	"txt":  {},
}

// certificateMarkers route files to the certificate flow by filename alone.
var certificateMarkers = []string{"专利", "软著", "证书", "certificate", "patent"}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to a file format, or "" if unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "png", "jpg", "jpeg", "bmp", "tiff":
		return IMAGE
	case "txt":
		return TXT
	default:
		return ""
	}
}

// IsImageExt reports whether the path has an image extension (images always need OCR).
func IsImageExt(path string) bool {
	return MapExtToFormat(filepath.Ext(path)) == IMAGE
}

// IsCertificatePath reports whether the filename marks the file as a
// patent/software certificate rather than a paper.
func IsCertificatePath(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, m := range certificateMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return IsImageExt(path)
}
