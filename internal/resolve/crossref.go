package resolve

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/yliu-xjtu/biomanager/internal/common"
	"github.com/yliu-xjtu/biomanager/internal/entity"
)

const maxCandidatesPerService = 5
const maxQueryLen = 500

// crossrefWork is the subset of a Crossref work item we consume.
type crossrefWork struct {
	DOI    string   `json:"DOI"`
	Title  []string `json:"title"`
	Author []struct {
		Family string `json:"family"`
		Given  string `json:"given"`
	} `json:"author"`
	PublishedPrint *struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"published-print"`
	PublishedOnline *struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"published-online"`
	ContainerTitle []string `json:"container-title"`
	URL            string   `json:"URL"`
	Type           string   `json:"type"`
	Volume         string   `json:"volume"`
	Issue          string   `json:"issue"`
	Page           string   `json:"page"`
	Score          float64  `json:"score"`
}

type crossrefSingleResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefSearchResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

// LookupDOI fetches full metadata for a known DOI. A nil candidate with nil
// error means the catalog had nothing.
func (c *Client) LookupDOI(ctx context.Context, doi string) (*entity.Candidate, error) {
	if doi == "" {
		return nil, nil
	}
	u := c.cfg.CrossrefURL + "/" + url.PathEscape(doi)
	var resp crossrefSingleResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.Message.DOI == "" {
		return nil, nil
	}
	cand := candidateFromCrossref(resp.Message)
	return &cand, nil
}

// SearchCrossref issues a free-text bibliographic query built from
// title + first-author surname + year.
func (c *Client) SearchCrossref(ctx context.Context, title, authors string, year int) ([]entity.Candidate, error) {
	var parts []string
	if title != "" {
		parts = append(parts, title)
	}
	if surname := FirstAuthorSurname(authors); surname != "" {
		parts = append(parts, surname)
	}
	if year > 0 {
		parts = append(parts, fmt.Sprintf("%d", year))
	}
	query := strings.Join(parts, " ")
	if query == "" {
		return nil, nil
	}
	query = common.CapRunes(query, maxQueryLen)

	q := url.Values{}
	q.Set("query.bibliographic", query)
	q.Set("rows", fmt.Sprintf("%d", maxCandidatesPerService))
	q.Set("mailto", c.cfg.Mailto)

	var resp crossrefSearchResponse
	if err := c.getJSON(ctx, c.cfg.CrossrefURL+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	items := resp.Message.Items
	if len(items) > maxCandidatesPerService {
		items = items[:maxCandidatesPerService]
	}
	out := make([]entity.Candidate, 0, len(items))
	for _, item := range items {
		out = append(out, candidateFromCrossref(item))
	}
	return out, nil
}

func candidateFromCrossref(w crossrefWork) entity.Candidate {
	var authors []string
	for _, a := range w.Author {
		if formatted := FormatAuthorParts(a.Family, a.Given); formatted != "" {
			authors = append(authors, formatted)
		}
	}

	year := firstDatePart(w.PublishedPrint)
	if year == 0 {
		year = firstDatePart(w.PublishedOnline)
	}

	return entity.Candidate{
		DOI:     w.DOI,
		Title:   firstOrEmpty(w.Title),
		Authors: strings.Join(authors, "; "),
		Year:    year,
		Venue:   firstOrEmpty(w.ContainerTitle),
		Volume:  w.Volume,
		Issue:   w.Issue,
		Pages:   w.Page,
		URL:     w.URL,
		Score:   w.Score,
	}
}

func firstDatePart(d *struct {
	DateParts [][]int `json:"date-parts"`
}) int {
	if d == nil || len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0
	}
	return d.DateParts[0][0]
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
