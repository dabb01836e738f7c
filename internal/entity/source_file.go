package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/yliu-xjtu/biomanager/constants"
)

// SourceFile represents a scanned source file for data transfer between layers.
type SourceFile struct {
	ID          uuid.UUID             `json:"id"`
	Path        string                `json:"path"` // relative to the scan root
	Filename    string                `json:"filename"`
	ContentHash string                `json:"content_hash"` // sha256 hex
	FileSize    int64                 `json:"file_size"`
	ModTime     time.Time             `json:"mod_time"`
	ParseStatus constants.ParseStatus `json:"parse_status"`
	ParseError  string                `json:"parse_error,omitempty"`
	PaperID     *uuid.UUID            `json:"paper_id,omitempty"`
	ScannedAt   time.Time             `json:"scanned_at"`
}
