package ai

import (
	"strings"

	"github.com/dermatocheck/dermatocheck-api/internal/domain"
)

// ClassifyRemediation pattern-matches a raw provider error string for known
// failure modes so the client can show a specialized remediation panel
// instead of the generic error one.
func ClassifyRemediation(raw string) domain.RemediationKind {
	if raw == "" {
		return domain.RemediationNone
	}

	switch {
	case strings.Contains(raw, "PERMISSION_DENIED"),
		strings.Contains(raw, "SERVICE_DISABLED"):
		return domain.RemediationEnableAPI
	case strings.Contains(raw, "RESOURCE_EXHAUSTED"),
		strings.Contains(raw, "429"):
		return domain.RemediationQuotaExceeded
	default:
		return domain.RemediationGeneric
	}
}

// RemediationMessageKey maps a remediation kind to its i18n key.
func RemediationMessageKey(kind domain.RemediationKind) string {
	switch kind {
	case domain.RemediationEnableAPI:
		return "remediation.enable_api"
	case domain.RemediationQuotaExceeded:
		return "remediation.quota_exceeded"
	default:
		return "remediation.generic"
	}
}
