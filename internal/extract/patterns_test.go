package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDOI(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "plain doi",
			text: "some text DOI: 10.1145/3372297.3423350 more text",
			want: "10.1145/3372297.3423350",
		},
		{
			name: "uppercase is lowered",
			text: "https://doi.org/10.1109/TIFS.2023.3265345",
			want: "10.1109/tifs.2023.3265345",
		},
		{
			name: "no doi",
			text: "plain text without any identifier",
			want: "",
		},
		{
			name: "too short rejected",
			text: "10.1234/ab",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DOI(tt.text))
		})
	}
}

func TestYear(t *testing.T) {
	t.Run("majority wins", func(t *testing.T) {
		text := "published 2019, revised 2023, accepted 2023, camera-ready 2023"
		assert.Equal(t, 2023, Year(text))
	})

	t.Run("single year inside plausible window", func(t *testing.T) {
		assert.Equal(t, 2021, Year("Proceedings of the conference, 2021"))
	})

	t.Run("single year outside window rejected", func(t *testing.T) {
		assert.Equal(t, 0, Year("founded in 1955"))
	})

	t.Run("repeated year outside window still accepted", func(t *testing.T) {
		assert.Equal(t, 1987, Year("1987 symposium held in 1987"))
	})

	t.Run("no year", func(t *testing.T) {
		assert.Equal(t, 0, Year("no digits here"))
	})
}

func TestTitle(t *testing.T) {
	t.Run("first standalone line", func(t *testing.T) {
		text := "Adversarial Examples in Deep Neural Network Speech Recognition\n\nAlice Zhang, Bob Li\n\nAbstract..."
		assert.Equal(t, "Adversarial Examples in Deep Neural Network Speech Recognition", Title(text))
	})

	t.Run("short header line skipped", func(t *testing.T) {
		text := "IEEE TIFS 2023\n\nRobust Watermarking of Language Model Outputs\n\nauthors here"
		assert.Equal(t, "Robust Watermarking of Language Model Outputs", Title(text))
	})

	t.Run("url lines rejected", func(t *testing.T) {
		text := "http://proceedings.example.org/volume12/paper\n\nEfficient Sparse Attention for Long Documents\n\nrest"
		assert.Equal(t, "Efficient Sparse Attention for Long Documents", Title(text))
	})

	t.Run("chinese title", func(t *testing.T) {
		text := "基于深度学习的网络入侵检测方法研究\n\n张三 李四\n\n摘要"
		assert.Equal(t, "基于深度学习的网络入侵检测方法研究", Title(text))
	})

	t.Run("short lines fall through to permissive pass", func(t *testing.T) {
		text := "Vol 12\nA Survey of Federated Learning Systems\nmore"
		// The strict pass rejects it as a continuation; the permissive latin
		// pass accepts it.
		assert.Equal(t, "A Survey of Federated Learning Systems", Title(text))
	})

	t.Run("nothing plausible", func(t *testing.T) {
		assert.Equal(t, "", Title("a\nb\nc"))
	})
}

func TestAuthors(t *testing.T) {
	t.Run("latin author line", func(t *testing.T) {
		text := "T\n\nAlice Johnson Bob Smith\nUniversity of Somewhere"
		assert.Equal(t, "Alice Johnson Bob Smith", Authors(text))
	})

	t.Run("affiliation lines skipped", func(t *testing.T) {
		text := "X\nInstitute of Computing Technology\nCarol White David Green"
		assert.Equal(t, "Carol White David Green", Authors(text))
	})

	t.Run("email lines skipped", func(t *testing.T) {
		text := "Y\nalice@example.com with others\nEve Brown Frank Moore"
		assert.Equal(t, "Eve Brown Frank Moore", Authors(text))
	})

	t.Run("chinese author line", func(t *testing.T) {
		text := "题目\n张三，李四，王五\n摘要内容"
		got := Authors(text)
		assert.Contains(t, got, "张三")
	})
}

func TestVenue(t *testing.T) {
	t.Run("keyword line found", func(t *testing.T) {
		text := "Title Here\nauthors\nProceedings of the 30th USENIX Security Symposium\nbody"
		assert.Equal(t, "Proceedings of the 30th USENIX Security Symposium", Venue(text))
	})

	t.Run("too short rejected", func(t *testing.T) {
		assert.Equal(t, "", Venue("ieee\n"))
	})

	t.Run("no keyword", func(t *testing.T) {
		assert.Equal(t, "", Venue("nothing that looks like a publication outlet"))
	})
}

func TestNeedsOCR(t *testing.T) {
	assert.True(t, NeedsOCR("short"))
	assert.True(t, NeedsOCR("   \n\t  "))
	assert.False(t, NeedsOCR(strings.Repeat("long enough text ", 20)))

	// The cutoff is 200 characters, not bytes: 120 CJK characters occupy 360
	// bytes but are still too short a text layer.
	assert.True(t, NeedsOCR(strings.Repeat("中", 120)))
	assert.False(t, NeedsOCR(strings.Repeat("中", 200)))
}

func TestIsChinese(t *testing.T) {
	require.True(t, IsChinese("专利证书"))
	require.False(t, IsChinese("patent certificate"))
}
