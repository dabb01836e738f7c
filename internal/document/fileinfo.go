package document

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// FileInfo carries the identity of a source file for change detection.
type FileInfo struct {
	Path     string
	Filename string
	Size     int64
	ModTime  time.Time
	SHA256   string
}

// Stat hashes the file content and collects size/mtime.
func Stat(path string) (FileInfo, error) {
	info := FileInfo{Path: path, Filename: filepath.Base(path)}

	st, err := os.Stat(path)
	if err != nil {
		return info, fmt.Errorf("stat %s: %w", path, err)
	}
	info.Size = st.Size()
	info.ModTime = st.ModTime()

	f, err := os.Open(path)
	if err != nil {
		return info, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return info, fmt.Errorf("hash %s: %w", path, err)
	}
	info.SHA256 = hex.EncodeToString(h.Sum(nil))
	return info, nil
}
