package domain

import "time"

// AnalysisRecord is one row of the analyses table. Prediction holds the raw
// AI text; Notes is a legacy column kept for rows written before prediction
// was structured.
type AnalysisRecord struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	CreatedAt  time.Time  `json:"created_at"`
	Prediction Prediction `json:"prediction"`
	Notes      string     `json:"notes,omitempty"`
}

type Prediction struct {
	FullText string `json:"full_text"`
}

// Text returns the displayable analysis body, preferring the structured
// prediction over legacy notes.
func (a *AnalysisRecord) Text() string {
	if a.Prediction.FullText != "" {
		return a.Prediction.FullText
	}
	return a.Notes
}

// QuestionnaireAnswers is the patient block submitted alongside the photo.
type QuestionnaireAnswers struct {
	Age          int    `json:"age"`
	SkinType     string `json:"skin_type,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Symptoms     string `json:"symptoms,omitempty"`
	BodyLocation string `json:"body_location,omitempty"`
	PriorHistory string `json:"prior_history,omitempty"`
}

// AnalysisResult is the outcome of a successful generation call: the prose
// plus any place leads extracted from grounding metadata. Failed calls carry
// their remediation kind on the error response instead.
type AnalysisResult struct {
	Record     *AnalysisRecord `json:"record"`
	PlaceLeads []PlaceLead     `json:"place_leads,omitempty"`
	Provider   string          `json:"provider"`
	Model      string          `json:"model"`
}

// RemediationKind selects the client-side remediation panel for a known
// provider failure mode.
type RemediationKind string

const (
	RemediationNone          RemediationKind = ""
	RemediationEnableAPI     RemediationKind = "enable_api"
	RemediationQuotaExceeded RemediationKind = "quota_exceeded"
	RemediationGeneric       RemediationKind = "generic"
)
