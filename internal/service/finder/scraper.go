package finder

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dermatocheck/dermatocheck-api/internal/constants"
	"github.com/dermatocheck/dermatocheck-api/internal/domain"
	"go.uber.org/zap"
)

// DirectoryScraper is a best-effort fallback that scrapes a public
// practitioner directory when the grounded search comes back empty. Like
// every other source here it degrades to nothing rather than failing.
type DirectoryScraper struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

func NewDirectoryScraper(baseURL string, logger *zap.Logger) *DirectoryScraper {
	return &DirectoryScraper{
		httpClient: &http.Client{Timeout: 8 * time.Second},
		baseURL:    baseURL,
		logger:     logger,
	}
}

func (d *DirectoryScraper) Lookup(ctx context.Context, query domain.SearchQuery) []domain.Dermatologist {
	if d.baseURL == "" || query.HasLocation {
		return nil
	}

	city := query.City
	if city == constants.SentinelCityOther {
		city = query.CityOther
	}

	params := url.Values{}
	params.Set("country", query.Country)
	if city != "" {
		params.Set("city", city)
	}
	params.Set("specialty", "dermatologie")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", "DermatoCheck/1.0")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Warn("Directory fetch failed", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.logger.Warn("Directory fetch rejected", zap.Int("status", resp.StatusCode))
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		d.logger.Warn("Directory parse failed", zap.Error(err))
		return nil
	}

	var results []domain.Dermatologist
	doc.Find("li.result, div.result-card, article.practitioner").Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Find("h2, h3, .name").First().Text())
		if name == "" {
			return
		}

		cand := domain.Dermatologist{
			Name:    name,
			Address: strings.TrimSpace(sel.Find(".address, address").First().Text()),
			Source:  "directory",
		}
		if tel, ok := sel.Find(`a[href^="tel:"]`).First().Attr("href"); ok {
			cand.Phone = strings.TrimPrefix(tel, "tel:")
		}
		if site, ok := sel.Find(`a.website, a[rel="website"]`).First().Attr("href"); ok {
			cand.Website = site
		}
		results = append(results, cand)
	})

	d.logger.Debug("Directory lookup finished",
		zap.String("country", query.Country),
		zap.String("city", city),
		zap.Int("results", len(results)),
	)
	return results
}
