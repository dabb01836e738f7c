package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yliu-xjtu/biomanager/internal/entity"
)

func TestTitleSimilarity(t *testing.T) {
	t.Run("identical titles", func(t *testing.T) {
		assert.InDelta(t, 100, TitleSimilarity(
			"Deep Learning for Intrusion Detection",
			"Deep Learning for Intrusion Detection"), 0.001)
	})

	t.Run("punctuation and case ignored", func(t *testing.T) {
		assert.InDelta(t, 100, TitleSimilarity(
			"Deep Learning: for Intrusion-Detection?",
			"deep learning for intrusiondetection"), 0.001)
	})

	t.Run("disjoint titles", func(t *testing.T) {
		assert.Zero(t, TitleSimilarity("alpha beta gamma", "delta epsilon"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Zero(t, TitleSimilarity("", "anything"))
	})
}

func TestConfidence(t *testing.T) {
	paper := entity.PaperFields{
		Title:   "Deep Learning for Network Intrusion Detection",
		Authors: "Alice Johnson; Bob Smith",
		Year:    2023,
		Venue:   "IEEE Transactions on Information Forensics",
	}

	t.Run("full agreement clears the acceptance threshold", func(t *testing.T) {
		cand := entity.Candidate{
			Title:   paper.Title,
			Authors: "Alice Johnson; Carol White",
			Year:    2023,
			Venue:   "IEEE Transactions on Information Forensics and Security",
		}
		// 40 title + 20 year + 20 author + 20 venue
		assert.InDelta(t, 100, Confidence(paper, cand), 0.001)
	})

	t.Run("adjacent year scores half", func(t *testing.T) {
		exact := Confidence(paper, entity.Candidate{Title: paper.Title, Year: 2023})
		adjacent := Confidence(paper, entity.Candidate{Title: paper.Title, Year: 2024})
		far := Confidence(paper, entity.Candidate{Title: paper.Title, Year: 2019})
		assert.InDelta(t, 10, exact-adjacent, 0.001)
		assert.InDelta(t, 20, exact-far, 0.001)
	})

	t.Run("surname-only author match scores half", func(t *testing.T) {
		prefix := Confidence(paper, entity.Candidate{Title: paper.Title, Authors: "Alice Johnson"})
		surname := Confidence(paper, entity.Candidate{Title: paper.Title, Authors: "Alicia Johnson"})
		assert.InDelta(t, 10, prefix-surname, 0.001)
	})

	t.Run("no signals beyond title", func(t *testing.T) {
		cand := entity.Candidate{Title: paper.Title}
		assert.InDelta(t, 40, Confidence(paper, cand), 0.001)
	})

	t.Run("capped at 100", func(t *testing.T) {
		cand := entity.Candidate{
			Title:   paper.Title,
			Authors: paper.Authors,
			Year:    paper.Year,
			Venue:   paper.Venue,
		}
		assert.LessOrEqual(t, Confidence(paper, cand), 100.0)
	})
}

func TestAuthorFormatting(t *testing.T) {
	assert.Equal(t, "Johnson, Alice", FormatAuthorParts("Johnson", "Alice"))
	assert.Equal(t, "Johnson", FormatAuthorParts("Johnson", ""))
	assert.Equal(t, "张三", FormatAuthorParts("张", "三"))

	assert.Equal(t, "Johnson, Alice B.", FormatDisplayName("Alice B. Johnson"))
	assert.Equal(t, "李四", FormatDisplayName("李四"))
	assert.Equal(t, "Mononym", FormatDisplayName("Mononym"))

	assert.Equal(t, "Johnson", FirstAuthorSurname("Alice Johnson; Bob Smith"))
	assert.Equal(t, "", FirstAuthorSurname(""))
}

func TestDetectPublicationType(t *testing.T) {
	assert.Equal(t, "conference", DetectPublicationType("Proceedings of the ACM CCS"))
	assert.Equal(t, "journal", DetectPublicationType("Journal of Cryptology"))
	assert.Equal(t, "conference", DetectPublicationType("IEEE Symposium on Security and Privacy"))
	assert.Equal(t, "other", DetectPublicationType("some unusual outlet"))
	assert.Equal(t, "other", DetectPublicationType(""))
}

func TestDetectEntryType(t *testing.T) {
	assert.Equal(t, "inproceedings", DetectEntryType("Proceedings of NDSS"))
	assert.Equal(t, "article", DetectEntryType("Nature Communications"))
}
