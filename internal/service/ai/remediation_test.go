package ai

import (
	"testing"

	"github.com/dermatocheck/dermatocheck-api/internal/domain"
)

func TestClassifyRemediation(t *testing.T) {
	cases := []struct {
		raw  string
		want domain.RemediationKind
	}{
		{"", domain.RemediationNone},
		{"rpc error: code = PERMISSION_DENIED desc = ...", domain.RemediationEnableAPI},
		{"SERVICE_DISABLED: Generative Language API has not been used", domain.RemediationEnableAPI},
		{"RESOURCE_EXHAUSTED: quota exceeded", domain.RemediationQuotaExceeded},
		{"googleapi: Error 429: too many requests", domain.RemediationQuotaExceeded},
		{"connection reset by peer", domain.RemediationGeneric},
	}

	for _, c := range cases {
		if got := ClassifyRemediation(c.raw); got != c.want {
			t.Fatalf("ClassifyRemediation(%q) = %s, want %s", c.raw, got, c.want)
		}
	}
}

func TestRemediationMessageKey(t *testing.T) {
	cases := map[domain.RemediationKind]string{
		domain.RemediationEnableAPI:     "remediation.enable_api",
		domain.RemediationQuotaExceeded: "remediation.quota_exceeded",
		domain.RemediationGeneric:       "remediation.generic",
	}
	for kind, want := range cases {
		if got := RemediationMessageKey(kind); got != want {
			t.Fatalf("RemediationMessageKey(%s) = %q, want %q", kind, got, want)
		}
	}
}
