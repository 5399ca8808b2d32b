package finder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dermatocheck/dermatocheck-api/internal/domain"
	"github.com/dermatocheck/dermatocheck-api/internal/extract"
	"go.uber.org/zap"
)

type fakeSearcher struct {
	text  string
	leads []domain.PlaceLead
	err   error
	calls int
}

func (f *fakeSearcher) GroundedSearch(_ context.Context, _ domain.SearchQuery) (string, []domain.PlaceLead, error) {
	f.calls++
	return f.text, f.leads, f.err
}

type fakeDetails struct {
	byID map[string]domain.PlaceDetails
}

func (f *fakeDetails) Details(_ context.Context, placeID string) domain.PlaceDetails {
	return f.byID[placeID]
}

func newTestService(searcher *fakeSearcher, details *fakeDetails) *Service {
	return NewService(searcher, details, extract.NewExtractor(zap.NewNop()), nil, time.Second, zap.NewNop())
}

func TestCanSearchGate(t *testing.T) {
	cases := []struct {
		name    string
		query   domain.SearchQuery
		loading bool
		want    bool
	}{
		{"no country", domain.SearchQuery{}, false, false},
		{"country only", domain.SearchQuery{Country: "France"}, false, true},
		{"country with preset city", domain.SearchQuery{Country: "France", City: "Paris"}, false, true},
		{"sentinel city without free text", domain.SearchQuery{Country: "France", City: "other"}, false, false},
		{"sentinel city with free text", domain.SearchQuery{Country: "France", City: "other", CityOther: "Lille"}, false, true},
		{"sentinel city with blank free text", domain.SearchQuery{Country: "France", City: "other", CityOther: "   "}, false, false},
		{"loading blocks", domain.SearchQuery{Country: "France"}, true, false},
		{"geolocation bypasses country", domain.SearchQuery{HasLocation: true, Lat: 48.0, Lng: 2.0}, false, true},
	}

	for _, c := range cases {
		if got := CanSearch(c.query, c.loading); got != c.want {
			t.Fatalf("%s: CanSearch = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestSearchInvalidQueryIsError(t *testing.T) {
	searcher := &fakeSearcher{}
	svc := newTestService(searcher, &fakeDetails{})

	resp := svc.Search(context.Background(), domain.SearchQuery{})
	if resp.State != domain.SearchError {
		t.Fatalf("expected error state, got %s", resp.State)
	}
	if resp.ErrorKey != "errors.country_required" {
		t.Fatalf("unexpected error key: %s", resp.ErrorKey)
	}
	if searcher.calls != 0 {
		t.Fatal("searcher must not run for an invalid query")
	}
}

func TestSearchErrorState(t *testing.T) {
	svc := newTestService(&fakeSearcher{err: errors.New("boom")}, &fakeDetails{})

	resp := svc.Search(context.Background(), domain.SearchQuery{Country: "France"})
	if resp.State != domain.SearchError || resp.ErrorKey != "errors.search_failed" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSearchEmptyState(t *testing.T) {
	svc := newTestService(&fakeSearcher{text: "rien"}, &fakeDetails{})

	resp := svc.Search(context.Background(), domain.SearchQuery{Country: "France"})
	if resp.State != domain.SearchEmpty {
		t.Fatalf("expected empty state, got %s", resp.State)
	}
	if resp.Candidates == nil || len(resp.Candidates) != 0 {
		t.Fatalf("expected empty candidate list, got %v", resp.Candidates)
	}
}

func TestSearchMergePriority(t *testing.T) {
	text := "Dr. Alpha\nAdresse: 9 Rue Extraite\nTéléphone: 01 11 22 33 44\n"
	searcher := &fakeSearcher{
		text: text,
		leads: []domain.PlaceLead{
			{Title: "Dr. Alpha", PlaceID: "p1", Address: "chunk address", Website: "chunk.example.com"},
		},
	}
	details := &fakeDetails{byID: map[string]domain.PlaceDetails{
		"p1": {FormattedAddress: "1 Place Vendôme, Paris"},
	}}
	svc := newTestService(searcher, details)

	resp := svc.Search(context.Background(), domain.SearchQuery{Country: "France"})
	if resp.State != domain.SearchResults || len(resp.Candidates) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	cand := resp.Candidates[0]
	// Place details beat the chunk address; the chunk beats extraction for
	// the website; extraction fills the phone nobody else had.
	if cand.Address != "1 Place Vendôme, Paris" {
		t.Fatalf("unexpected address: %q", cand.Address)
	}
	if cand.Website != "chunk.example.com" {
		t.Fatalf("unexpected website: %q", cand.Website)
	}
	if cand.Phone != "01 11 22 33 44" {
		t.Fatalf("unexpected phone: %q", cand.Phone)
	}
}

func TestSearchDistanceSortMissingCoordsLast(t *testing.T) {
	searcher := &fakeSearcher{
		text: "liste",
		leads: []domain.PlaceLead{
			{Title: "Sans Coordonnées"},
			{Title: "Lyon", Lat: 45.7640, Lng: 4.8357, HasCoords: true},
			{Title: "Proche", Lat: 48.86, Lng: 2.35, HasCoords: true},
		},
	}
	svc := newTestService(searcher, &fakeDetails{})

	resp := svc.Search(context.Background(), domain.SearchQuery{
		HasLocation: true,
		Lat:         48.8566,
		Lng:         2.3522,
	})
	if resp.State != domain.SearchResults || len(resp.Candidates) != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if resp.Candidates[0].Name != "Proche" || resp.Candidates[1].Name != "Lyon" || resp.Candidates[2].Name != "Sans Coordonnées" {
		t.Fatalf("unexpected order: %v", []string{resp.Candidates[0].Name, resp.Candidates[1].Name, resp.Candidates[2].Name})
	}
	if resp.Candidates[0].DistanceKm >= resp.Candidates[1].DistanceKm {
		t.Fatalf("expected ascending distances, got %f then %f", resp.Candidates[0].DistanceKm, resp.Candidates[1].DistanceKm)
	}
}

func TestPinnedInjection(t *testing.T) {
	query := domain.SearchQuery{Country: "Maroc", City: "Meknès"}
	candidates := []domain.Dermatologist{
		{Name: "Dr. Autre"},
		{Name: "Cabinet KHAFIFI Hamza"},
	}

	out := ApplyPinned(query, candidates)

	if len(out) != 2 {
		t.Fatalf("expected duplicate to be dropped, got %d entries", len(out))
	}
	if out[0].Name != "DR. Khafifi Hamza" || !out[0].Pinned {
		t.Fatalf("expected the pinned entry first, got %+v", out[0])
	}
	if out[1].Name != "Dr. Autre" {
		t.Fatalf("unexpected second entry: %+v", out[1])
	}
}

func TestPinnedInjectionDiacriticInsensitiveCity(t *testing.T) {
	out := ApplyPinned(domain.SearchQuery{Country: "maroc", City: "meknes"}, nil)
	if len(out) != 1 || !out[0].Pinned {
		t.Fatalf("expected pinned entry for accent-free spelling, got %+v", out)
	}
}

func TestPinnedInjectionOtherCityUntouched(t *testing.T) {
	candidates := []domain.Dermatologist{{Name: "Dr. Rabat"}}
	out := ApplyPinned(domain.SearchQuery{Country: "Maroc", City: "Rabat"}, candidates)
	if len(out) != 1 || out[0].Pinned {
		t.Fatalf("expected untouched list, got %+v", out)
	}
}

func TestPinnedViaSentinelCity(t *testing.T) {
	out := ApplyPinned(domain.SearchQuery{Country: "Maroc", City: "other", CityOther: "Meknès"}, nil)
	if len(out) != 1 || !out[0].Pinned {
		t.Fatalf("expected pinned entry via free-text city, got %+v", out)
	}
}
