package resolve

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yliu-xjtu/biomanager/constants"
	"github.com/yliu-xjtu/biomanager/internal/common"
	"github.com/yliu-xjtu/biomanager/internal/entity"
)

// catalogStub serves both Crossref-shaped and OpenAlex-shaped responses from
// one server and counts requests per backend.
type catalogStub struct {
	server        *httptest.Server
	crossrefHits  atomic.Int64
	openalexHits  atomic.Int64
	lookupWork    map[string]any // /crossref/{doi} response message
	searchItems   []map[string]any
	openalexItems []map[string]any
}

func newCatalogStub(t *testing.T) *catalogStub {
	t.Helper()
	s := &catalogStub{}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/crossref"):
			s.crossrefHits.Add(1)
			if r.URL.Path == "/crossref" {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"message": map[string]any{"items": s.searchItems},
				})
				return
			}
			if s.lookupWork == nil {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"message": s.lookupWork})
		case strings.HasPrefix(r.URL.Path, "/openalex"):
			s.openalexHits.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]any{"results": s.openalexItems})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(s.server.Close)
	return s
}

func (s *catalogStub) resolver(threshold float64) *Resolver {
	cfg := common.ResolverConfig{
		CrossrefURL: s.server.URL + "/crossref",
		OpenAlexURL: s.server.URL + "/openalex",
		Mailto:      "test@example.com",
		UserAgent:   "test-agent",
		Timeout:     2 * time.Second,
		Retries:     1,
	}
	return NewResolver(NewClient(cfg, s.server.Client(), nil), threshold, nil)
}

func TestResolveDOIShortCircuit(t *testing.T) {
	stub := newCatalogStub(t)
	stub.lookupWork = map[string]any{
		"DOI":             "10.1145/3372297.3423350",
		"title":           []string{"Resolved Title"},
		"container-title": []string{"Proceedings of CCS"},
		"published-print": map[string]any{"date-parts": [][]int{{2020, 11}}},
		"author": []map[string]any{
			{"family": "Johnson", "given": "Alice"},
		},
	}

	res := stub.resolver(80).Resolve(context.Background(), entity.PaperFields{
		DOI:   "10.1145/3372297.3423350",
		Title: "whatever was extracted",
	})

	assert.Equal(t, constants.SourceDOILookup, res.Source)
	assert.InDelta(t, 100, res.Confidence, 0.001)
	assert.Equal(t, "10.1145/3372297.3423350", res.DOI)
	assert.Equal(t, "Resolved Title", res.Merged.Title)
	assert.Equal(t, "Johnson, Alice", res.Merged.Authors)
	assert.Equal(t, 2020, res.Merged.Year)
	assert.Zero(t, stub.openalexHits.Load(), "direct lookup skips search")
}

func TestResolveAutoMatch(t *testing.T) {
	stub := newCatalogStub(t)
	stub.searchItems = []map[string]any{
		{
			"DOI":             "10.9999/match",
			"title":           []string{"Deep Learning for Network Intrusion Detection"},
			"container-title": []string{"IEEE Transactions on Information Forensics"},
			"published-print": map[string]any{"date-parts": [][]int{{2023}}},
			"author":          []map[string]any{{"family": "Johnson", "given": "Alice"}},
		},
		{
			"DOI":   "10.9999/unrelated",
			"title": []string{"Completely Different Topic Entirely"},
		},
	}

	res := stub.resolver(80).Resolve(context.Background(), entity.PaperFields{
		Title:   "Deep Learning for Network Intrusion Detection",
		Authors: "Alice Johnson",
		Year:    2023,
		Venue:   "IEEE Transactions on Information Forensics",
	})

	assert.Equal(t, constants.SourceAuto, res.Source)
	assert.Equal(t, "10.9999/match", res.DOI)
	assert.GreaterOrEqual(t, res.Confidence, 80.0)
	assert.Positive(t, stub.crossrefHits.Load())
	assert.Positive(t, stub.openalexHits.Load())
}

func TestResolveBelowThresholdKeepsCandidateNotDOI(t *testing.T) {
	stub := newCatalogStub(t)
	stub.searchItems = []map[string]any{
		{
			"DOI":   "10.9999/partial",
			"title": []string{"Deep Learning for Network Intrusion Detection"},
		},
	}

	res := stub.resolver(80).Resolve(context.Background(), entity.PaperFields{
		Title: "Deep Learning for Network Intrusion Detection",
	})

	assert.Equal(t, constants.SourceReview, res.Source)
	assert.Empty(t, res.DOI, "a below-threshold DOI is never adopted")
	assert.InDelta(t, 40, res.Confidence, 0.001)
	assert.Equal(t, "10.9999/partial", res.Merged.DOI)
}

func TestResolveNoCandidates(t *testing.T) {
	stub := newCatalogStub(t)

	res := stub.resolver(80).Resolve(context.Background(), entity.PaperFields{
		Title: "An Obscure Unfindable Manuscript",
	})

	assert.Equal(t, constants.SourceNone, res.Source)
	assert.Zero(t, res.Confidence)
	assert.Empty(t, res.DOI)
}

func TestResolveEmptyTitleNoCatalogCalls(t *testing.T) {
	stub := newCatalogStub(t)

	res := stub.resolver(80).Resolve(context.Background(), entity.PaperFields{})

	assert.Equal(t, constants.SourceNone, res.Source)
	assert.Zero(t, stub.crossrefHits.Load())
	assert.Zero(t, stub.openalexHits.Load())
}

func TestResolveOpenAlexCandidates(t *testing.T) {
	stub := newCatalogStub(t)
	stub.openalexItems = []map[string]any{
		{
			"doi":              "10.5555/oa",
			"title":            "Deep Learning for Network Intrusion Detection",
			"publication_year": 2023,
			"host_venue":       map[string]any{"display_name": "IEEE Transactions on Information Forensics"},
			"authorships": []map[string]any{
				{"author": map[string]any{"display_name": "Alice Johnson"}},
			},
		},
	}

	res := stub.resolver(80).Resolve(context.Background(), entity.PaperFields{
		Title:   "Deep Learning for Network Intrusion Detection",
		Authors: "Johnson, Alice",
		Year:    2023,
		Venue:   "IEEE Transactions on Information Forensics",
	})

	require.Equal(t, constants.SourceAuto, res.Source)
	assert.Equal(t, "10.5555/oa", res.DOI)
}
