package domain

// Dermatologist is a search candidate shown to the user. Optional fields are
// filled from up to three sources in priority order: place-details lookup,
// grounding-chunk fields, free-text extraction.
type Dermatologist struct {
	Name       string  `json:"name"`
	Address    string  `json:"address,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	Website    string  `json:"website,omitempty"`
	URI        string  `json:"uri,omitempty"`
	DistanceKm float64 `json:"distance_km,omitempty"`
	Lat        float64 `json:"lat,omitempty"`
	Lng        float64 `json:"lng,omitempty"`
	HasCoords  bool    `json:"has_coords"`
	Pinned     bool    `json:"pinned,omitempty"`
	Source     string  `json:"source,omitempty"`
}

// PlaceLead is a grounding chunk normalized once at the AI boundary. The
// upstream response probes several field casings; everything past that point
// works with this one shape.
type PlaceLead struct {
	Title     string  `json:"title"`
	URI       string  `json:"uri,omitempty"`
	PlaceID   string  `json:"place_id,omitempty"`
	Address   string  `json:"address,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	Website   string  `json:"website,omitempty"`
	Lat       float64 `json:"lat,omitempty"`
	Lng       float64 `json:"lng,omitempty"`
	HasCoords bool    `json:"has_coords,omitempty"`
}

// PlaceDetails is the subset of the Place Details endpoint this service
// consumes. A zero value means the lookup failed or returned nothing.
type PlaceDetails struct {
	FormattedAddress string `json:"formattedAddress"`
	PhoneNumber      string `json:"internationalPhoneNumber"`
	WebsiteURI       string `json:"websiteUri"`
}

func (d PlaceDetails) IsZero() bool {
	return d.FormattedAddress == "" && d.PhoneNumber == "" && d.WebsiteURI == ""
}

// SearchQuery is either geolocation-based (HasLocation) or manual
// (Country/City, with CityOther used when City is the sentinel option).
type SearchQuery struct {
	Lat         float64 `json:"lat,omitempty"`
	Lng         float64 `json:"lng,omitempty"`
	HasLocation bool    `json:"has_location"`
	Country     string  `json:"country,omitempty"`
	City        string  `json:"city,omitempty"`
	CityOther   string  `json:"city_other,omitempty"`
	Language    string  `json:"language,omitempty"`
}

// SearchState mirrors the informal state machine of the search flow.
type SearchState string

const (
	SearchIdle      SearchState = "idle"
	SearchSearching SearchState = "searching"
	SearchResults   SearchState = "results"
	SearchEmpty     SearchState = "empty"
	SearchError     SearchState = "error"
)

// SearchResponse is the terminal state of one search plus its candidates.
type SearchResponse struct {
	State      SearchState     `json:"state"`
	Candidates []Dermatologist `json:"candidates"`
	ErrorKey   string          `json:"error_key,omitempty"`
}
