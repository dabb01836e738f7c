package resolve

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/yliu-xjtu/biomanager/internal/entity"
)

type openAlexWork struct {
	DOI         string `json:"doi"`
	Title       string `json:"title"`
	Authorships []struct {
		Author struct {
			DisplayName string `json:"display_name"`
		} `json:"author"`
		DisplayName string `json:"display_name"`
	} `json:"authorships"`
	PublicationYear int `json:"publication_year"`
	HostVenue       *struct {
		DisplayName string `json:"display_name"`
	} `json:"host_venue"`
	RelevanceScore float64 `json:"relevance_score"`
	ID             string  `json:"id"`
}

type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

// SearchOpenAlex issues a structured title.search filter, optionally narrowed
// by publication year.
func (c *Client) SearchOpenAlex(ctx context.Context, title string, year int) ([]entity.Candidate, error) {
	if title == "" {
		return nil, nil
	}

	filter := fmt.Sprintf("title.search:%q", title)
	if year > 0 {
		filter += fmt.Sprintf(" AND publication_year:%d", year)
	}
	u := fmt.Sprintf("%s?filter=%s&per-page=%d",
		c.cfg.OpenAlexURL, url.QueryEscape(filter), maxCandidatesPerService)

	var resp openAlexResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	works := resp.Results
	if len(works) > maxCandidatesPerService {
		works = works[:maxCandidatesPerService]
	}

	out := make([]entity.Candidate, 0, len(works))
	for _, w := range works {
		var authors []string
		// The first three authors are enough for matching.
		for i, a := range w.Authorships {
			if i >= 3 {
				break
			}
			name := a.Author.DisplayName
			if name == "" {
				name = a.DisplayName
			}
			if formatted := FormatDisplayName(name); formatted != "" {
				authors = append(authors, formatted)
			}
		}

		venue := ""
		if w.HostVenue != nil {
			venue = w.HostVenue.DisplayName
		}
		candURL := w.DOI
		if candURL == "" {
			candURL = w.ID
		}

		out = append(out, entity.Candidate{
			DOI:     w.DOI,
			Title:   w.Title,
			Authors: strings.Join(authors, "; "),
			Year:    w.PublicationYear,
			Venue:   venue,
			URL:     candURL,
			Score:   w.RelevanceScore,
		})
	}
	return out, nil
}
