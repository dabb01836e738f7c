package resolve

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yliu-xjtu/biomanager/constants"
	"github.com/yliu-xjtu/biomanager/internal/entity"
)

// Resolver turns an extracted field set into a resolution decision against
// the external catalogs.
type Resolver struct {
	client    *Client
	threshold float64
	log       *slog.Logger
}

func NewResolver(client *Client, threshold float64, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	if threshold <= 0 {
		threshold = 80
	}
	return &Resolver{client: client, threshold: threshold, log: log}
}

// Resolve decides the DOI/confidence/source for a field set.
//
// A known DOI short-circuits to a direct lookup with confidence 100.
// Otherwise both catalogs are queried in parallel on the title, every
// candidate is scored, and the maximum decides: at or above the threshold the
// match is accepted (auto); above zero but below it the candidate is kept for
// human review; with no candidates at all the result is none. Catalog
// transport failures are not fatal: the failing service simply contributes
// no candidates.
func (r *Resolver) Resolve(ctx context.Context, fields entity.PaperFields) entity.Resolution {
	if fields.DOI != "" {
		cand, err := r.client.LookupDOI(ctx, fields.DOI)
		if err != nil {
			r.log.Warn("resolver.doi_lookup_failed", "doi", fields.DOI, "error", err)
		} else if cand != nil {
			r.log.Info("resolver.doi_lookup", "doi", fields.DOI)
			return entity.Resolution{
				DOI:        fields.DOI,
				Confidence: 100,
				Source:     constants.SourceDOILookup,
				Merged:     *cand,
			}
		}
	}

	if fields.Title == "" {
		return entity.Resolution{Source: constants.SourceNone}
	}

	candidates := r.searchBoth(ctx, fields)
	if len(candidates) == 0 {
		return entity.Resolution{Source: constants.SourceNone}
	}

	var best entity.Candidate
	bestScore := 0.0
	for _, cand := range candidates {
		if score := Confidence(fields, cand); score > bestScore {
			bestScore = score
			best = cand
		}
	}

	switch {
	case bestScore >= r.threshold:
		r.log.Info("resolver.auto_match", "doi", best.DOI, "score", bestScore)
		return entity.Resolution{
			DOI:        best.DOI,
			Confidence: bestScore,
			Source:     constants.SourceAuto,
			Merged:     best,
		}
	case bestScore > 0:
		r.log.Info("resolver.below_threshold", "doi", best.DOI, "score", bestScore)
		// Candidate kept for reviewer context; its DOI is not adopted.
		return entity.Resolution{
			Confidence: bestScore,
			Source:     constants.SourceReview,
			Merged:     best,
		}
	default:
		return entity.Resolution{Source: constants.SourceNone}
	}
}

// searchBoth fans out to Crossref and OpenAlex concurrently and merges
// whatever came back.
func (r *Resolver) searchBoth(ctx context.Context, fields entity.PaperFields) []entity.Candidate {
	var mu sync.Mutex
	var candidates []entity.Candidate

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := r.client.SearchCrossref(gctx, fields.Title, fields.Authors, fields.Year)
		if err != nil {
			r.log.Warn("resolver.crossref_failed", "error", err)
			return nil
		}
		mu.Lock()
		candidates = append(candidates, found...)
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		found, err := r.client.SearchOpenAlex(gctx, fields.Title, fields.Year)
		if err != nil {
			r.log.Warn("resolver.openalex_failed", "error", err)
			return nil
		}
		mu.Lock()
		candidates = append(candidates, found...)
		mu.Unlock()
		return nil
	})
	_ = g.Wait() // workers swallow their own errors

	return candidates
}
