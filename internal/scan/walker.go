package scan

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yliu-xjtu/biomanager/constants"
)

// Walk collects the scannable files under root, skipping excluded folders.
// Returned paths are relative to root with forward slashes, sorted for a
// deterministic scan order. Excluded entries are root-relative folder paths;
// everything under an excluded folder is pruned without descending.
func Walk(root string, excluded []string, logger *slog.Logger) ([]string, error) {
	normalized := make([]string, 0, len(excluded))
	for _, e := range excluded {
		e = strings.Trim(filepath.ToSlash(e), "/")
		if e != "" {
			normalized = append(normalized, e)
		}
	}
	if len(normalized) > 0 {
		logger.Info("scan.excluded_folders", "folders", normalized)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d == nil {
				return err // unreadable root
			}
			logger.Warn("scan.walk_error", "path", path, "error", err)
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && isExcluded(rel, normalized) {
				logger.Debug("scan.skip_excluded", "dir", rel)
				return fs.SkipDir
			}
			return nil
		}

		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := constants.AllowedExtensions[ext]; ok {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	logger.Info("scan.walk_done", "root", root, "files", len(files))
	return files, nil
}

func isExcluded(rel string, excluded []string) bool {
	for _, e := range excluded {
		if rel == e || strings.HasPrefix(rel, e+"/") {
			return true
		}
	}
	return false
}
