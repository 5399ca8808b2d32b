package finder

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dermatocheck/dermatocheck-api/internal/constants"
	"github.com/dermatocheck/dermatocheck-api/internal/domain"
	"github.com/dermatocheck/dermatocheck-api/internal/extract"
	"github.com/dermatocheck/dermatocheck-api/internal/geo"
	"github.com/dermatocheck/dermatocheck-api/internal/util"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// GroundedSearcher produces the AI prose and place leads for one query.
type GroundedSearcher interface {
	GroundedSearch(ctx context.Context, query domain.SearchQuery) (string, []domain.PlaceLead, error)
}

// DetailsClient resolves authoritative place details for enrichment.
type DetailsClient interface {
	Details(ctx context.Context, placeID string) domain.PlaceDetails
}

// DirectorySource is the optional scraped fallback used when the grounded
// search returns nothing at all.
type DirectorySource interface {
	Lookup(ctx context.Context, query domain.SearchQuery) []domain.Dermatologist
}

// Service drives the dermatologist search flow: grounded search, three-source
// enrichment, distance sort, pinned-result injection.
type Service struct {
	searcher    GroundedSearcher
	details     DetailsClient
	extractor   *extract.Extractor
	directory   DirectorySource
	timeout     time.Duration
	concurrency int
	logger      *zap.Logger
}

func NewService(searcher GroundedSearcher, details DetailsClient, extractor *extract.Extractor, directory DirectorySource, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		searcher:    searcher,
		details:     details,
		extractor:   extractor,
		directory:   directory,
		timeout:     timeout,
		concurrency: 4,
		logger:      logger,
	}
}

// CanSearch is the gate for the manual form: a country is required, the
// sentinel "other" city needs free text, and no search may already be in
// flight. Geolocation queries only require coordinates.
func CanSearch(query domain.SearchQuery, loading bool) bool {
	if loading {
		return false
	}
	if query.HasLocation {
		return true
	}
	if strings.TrimSpace(query.Country) == "" {
		return false
	}
	if query.City == constants.SentinelCityOther && strings.TrimSpace(query.CityOther) == "" {
		return false
	}
	return true
}

// Search runs one query to a terminal state. Failures become a state, not an
// error: the caller always gets a renderable response.
func (s *Service) Search(ctx context.Context, query domain.SearchQuery) *domain.SearchResponse {
	if !CanSearch(query, false) {
		return &domain.SearchResponse{
			State:    domain.SearchError,
			ErrorKey: manualValidationKey(query),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, leads, err := s.searcher.GroundedSearch(ctx, query)
	if err != nil {
		s.logger.Error("Grounded search failed",
			zap.String("country", query.Country),
			zap.String("city", query.City),
			zap.Error(err),
		)
		return &domain.SearchResponse{
			State:    domain.SearchError,
			ErrorKey: "errors.search_failed",
		}
	}

	candidates := s.enrich(ctx, text, leads)

	if len(candidates) == 0 && s.directory != nil {
		candidates = s.directory.Lookup(ctx, query)
		if len(candidates) > 0 {
			s.logger.Info("Directory fallback served results", zap.Int("count", len(candidates)))
		}
	}

	if query.HasLocation {
		for i := range candidates {
			if candidates[i].HasCoords {
				candidates[i].DistanceKm = geo.RoundKm(geo.HaversineKm(query.Lat, query.Lng, candidates[i].Lat, candidates[i].Lng))
			}
		}
	}
	sortCandidates(candidates)

	candidates = ApplyPinned(query, candidates)

	if len(candidates) == 0 {
		return &domain.SearchResponse{
			State:      domain.SearchEmpty,
			Candidates: []domain.Dermatologist{},
			ErrorKey:   "finder.empty",
		}
	}

	return &domain.SearchResponse{
		State:      domain.SearchResults,
		Candidates: candidates,
	}
}

// enrich merges the three sources per candidate, highest priority first:
// place-details lookup, grounding-chunk fields, free-text extraction.
// Details lookups run in a bounded pool, one per lead.
func (s *Service) enrich(ctx context.Context, text string, leads []domain.PlaceLead) []domain.Dermatologist {
	if len(leads) == 0 {
		return nil
	}

	candidates := make([]domain.Dermatologist, len(leads))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(s.concurrency)
	for idx, lead := range leads {
		idx, lead := idx, lead
		p.Go(func() {
			cand := s.buildCandidate(ctx, text, lead)
			mu.Lock()
			candidates[idx] = cand
			mu.Unlock()
		})
	}
	p.Wait()

	// Drop leads without a usable name.
	out := candidates[:0]
	for _, c := range candidates {
		if strings.TrimSpace(c.Name) != "" {
			out = append(out, c)
		}
	}
	return out
}

func (s *Service) buildCandidate(ctx context.Context, text string, lead domain.PlaceLead) domain.Dermatologist {
	cand := domain.Dermatologist{
		Name:      lead.Title,
		URI:       lead.URI,
		Lat:       lead.Lat,
		Lng:       lead.Lng,
		HasCoords: lead.HasCoords,
		Source:    "grounding",
	}

	var details domain.PlaceDetails
	if s.details != nil && lead.PlaceID != "" {
		details = s.details.Details(ctx, lead.PlaceID)
	}

	// Priority 1: place details.
	if details.FormattedAddress != "" {
		cand.Address = details.FormattedAddress
		cand.Source = "place_details"
	}
	if details.PhoneNumber != "" {
		cand.Phone = details.PhoneNumber
	}
	if details.WebsiteURI != "" {
		cand.Website = details.WebsiteURI
	}

	// Priority 2: raw grounding-chunk fields.
	if cand.Address == "" {
		cand.Address = lead.Address
	}
	if cand.Phone == "" {
		cand.Phone = lead.Phone
	}
	if cand.Website == "" {
		cand.Website = lead.Website
	}

	// Priority 3: scrape the AI prose for anything still missing.
	if s.extractor != nil && (cand.Address == "" || cand.Phone == "" || cand.Website == "") {
		extracted := s.extractor.Extract(lead.Title, text)
		if cand.Address == "" && extracted.Address.Found {
			cand.Address = extracted.Address.Value
			cand.Source = "extracted"
		}
		if cand.Phone == "" && extracted.Phone.Found {
			cand.Phone = extracted.Phone.Value
		}
		if cand.Website == "" && extracted.Website.Found {
			cand.Website = extracted.Website.Value
		}
	}

	return cand
}

// sortCandidates orders by display distance; candidates without coordinates
// sort last, ties keep their original order.
func sortCandidates(candidates []domain.Dermatologist) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return sortDistance(candidates[i]) < sortDistance(candidates[j])
	})
}

func sortDistance(d domain.Dermatologist) float64 {
	if !d.HasCoords {
		return math.Inf(1)
	}
	return d.DistanceKm
}

// ApplyPinned injects the compiled-in pinned clinic for its city/country
// pair and drops naturally returned entries matching the name fragment.
func ApplyPinned(query domain.SearchQuery, candidates []domain.Dermatologist) []domain.Dermatologist {
	if !matchesPinnedArea(query) {
		return candidates
	}

	kept := make([]domain.Dermatologist, 0, len(candidates)+1)
	kept = append(kept, domain.Dermatologist{
		Name:    constants.PinnedResult.Name,
		Address: constants.PinnedResult.Address,
		Phone:   constants.PinnedResult.Phone,
		Pinned:  true,
		Source:  "pinned",
	})
	for _, c := range candidates {
		if strings.Contains(util.NormalizeName(c.Name), constants.PinnedResult.NameFragment) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func matchesPinnedArea(query domain.SearchQuery) bool {
	country := util.NormalizeName(query.Country)
	city := util.NormalizeName(query.City)
	if query.City == constants.SentinelCityOther {
		city = util.NormalizeName(query.CityOther)
	}
	return country == util.NormalizeName(constants.PinnedResult.Country) &&
		city == util.NormalizeName(constants.PinnedResult.City)
}

func manualValidationKey(query domain.SearchQuery) string {
	if strings.TrimSpace(query.Country) == "" {
		return "errors.country_required"
	}
	return "errors.city_required"
}
