package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/yliu-xjtu/biomanager/constants"
)

// pageImage returns PNG (or original image) bytes for one page of the file.
// Images are their own single page; PDFs are rasterized with pdftoppm.
func (g *Gateway) pageImage(ctx context.Context, path string, page int) ([]byte, error) {
	if constants.MapExtToFormat(filepath.Ext(path)) == constants.IMAGE {
		if page != 0 {
			return nil, fmt.Errorf("page %d out of range for image file", page)
		}
		return os.ReadFile(path)
	}
	return g.renderPDFPage(ctx, path, page)
}

// renderPDFPage rasterizes a single 0-based page to PNG via pdftoppm.
func (g *Gateway) renderPDFPage(ctx context.Context, path string, page int) ([]byte, error) {
	cfg := g.cfg()

	tmpDir, err := os.MkdirTemp("", "bm-ocr-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			g.log.Warn("ocr.render.cleanup_failed", "dir", tmpDir, "error", err)
		}
	}()

	pageNum := fmt.Sprintf("%d", page+1) // pdftoppm pages are 1-based
	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -f N -l N -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := g.runner.Run(ctx, cfg.Pdftoppm,
		"-f", pageNum, "-l", pageNum, "-r", fmt.Sprintf("%d", cfg.DPI), "-png", path, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("page %d out of range (pdftoppm produced no image)", page)
	}
	return os.ReadFile(matches[0])
}
