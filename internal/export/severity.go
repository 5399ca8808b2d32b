package export

import "strings"

// Severity is the three-bucket triage level shown on exported documents.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Keyword buckets, checked in order. Substring match so "surveill" covers
// "surveiller" and "surveillance".
var highKeywords = []string{"urgent", "grave", "malin"}
var mediumKeywords = []string{"surveill", "attention", "follow"}

// ClassifySeverity buckets an analysis text by keyword presence,
// case-insensitive. No model involved; this mirrors how the document badge
// has always been chosen.
func ClassifySeverity(text string) Severity {
	lower := strings.ToLower(text)

	for _, kw := range highKeywords {
		if strings.Contains(lower, kw) {
			return SeverityHigh
		}
	}
	for _, kw := range mediumKeywords {
		if strings.Contains(lower, kw) {
			return SeverityMedium
		}
	}
	return SeverityLow
}

// LabelKey returns the i18n key for the severity badge label.
func (s Severity) LabelKey() string {
	return "severity." + string(s)
}
