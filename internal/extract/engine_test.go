package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFallback struct {
	calls  int
	fields FallbackFields
	ok     bool
}

func (s *stubFallback) ParseFields(_ context.Context, _ string) (FallbackFields, bool, error) {
	s.calls++
	return s.fields, s.ok, nil
}

func TestEngineFromText(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades fill fields", func(t *testing.T) {
		text := "Adversarial Examples in Deep Neural Network Speech Recognition\n\n" +
			"Alice Zhang Bob Li\n\n" +
			"Proceedings of the ACM Conference on Security\n" +
			"doi: 10.1145/3372297.3423350\n" +
			"2023 " + strings.Repeat("body text ", 30) + " 2023"
		fields := NewEngine(nil, nil).FromText(ctx, text)

		assert.Equal(t, "Adversarial Examples in Deep Neural Network Speech Recognition", fields.Title)
		assert.Equal(t, "10.1145/3372297.3423350", fields.DOI)
		assert.Equal(t, 2023, fields.Year)
		assert.Contains(t, fields.Venue, "Proceedings")
		assert.Equal(t, text, fields.RawText)
		assert.Positive(t, fields.CharCount)
	})

	t.Run("fallback used only when cascades find nothing", func(t *testing.T) {
		fb := &stubFallback{fields: FallbackFields{Title: "Recovered Title", Authors: "Someone"}, ok: true}
		engine := NewEngine(fb, nil)

		// Long enough to not need OCR, but nothing title- or author-shaped.
		noise := strings.Repeat("zzzzz\n", 60)
		fields := engine.FromText(ctx, noise)

		require.Equal(t, 1, fb.calls)
		assert.Equal(t, "Recovered Title", fields.Title)
		assert.Equal(t, "Someone", fields.Authors)
	})

	t.Run("fallback skipped when text needs ocr", func(t *testing.T) {
		fb := &stubFallback{ok: true}
		engine := NewEngine(fb, nil)

		fields := engine.FromText(ctx, "tiny")

		assert.Zero(t, fb.calls)
		assert.Empty(t, fields.Title)
	})

	t.Run("fallback skipped for short cjk text", func(t *testing.T) {
		fb := &stubFallback{ok: true}
		engine := NewEngine(fb, nil)

		// 120 CJK characters: over 200 bytes, but under the 200-character
		// cutoff, so this belongs on the OCR track.
		fields := engine.FromText(ctx, strings.Repeat("中", 120))

		assert.Zero(t, fb.calls)
		assert.Equal(t, 120, fields.CharCount)
	})

	t.Run("fallback skipped when cascades succeed", func(t *testing.T) {
		fb := &stubFallback{ok: true}
		engine := NewEngine(fb, nil)

		text := "A Perfectly Reasonable Paper Title Line\n\nrest of the text " +
			strings.Repeat("filler ", 40)
		fields := engine.FromText(ctx, text)

		assert.Zero(t, fb.calls)
		assert.Equal(t, "A Perfectly Reasonable Paper Title Line", fields.Title)
	})
}

func TestEngineFromOCRText(t *testing.T) {
	text := "Detecting Compromised Accounts in Large Federated Systems\n" +
		"Wei Chen\n" +
		"wchen@example.edu.cn\n" +
		"2022 content 2022"
	fields := NewEngine(nil, nil).FromOCRText(context.Background(), text)

	assert.Equal(t, "Detecting Compromised Accounts in Large Federated Systems", fields.Title)
	assert.Equal(t, "Wei Chen", fields.Authors)
	assert.Equal(t, 2022, fields.Year)
}
