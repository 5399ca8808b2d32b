package export

import (
	"bytes"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dermatocheck/dermatocheck-api/internal/domain"
	"github.com/dermatocheck/dermatocheck-api/internal/i18n"
	"go.uber.org/zap"
)

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()
	tr, err := i18n.NewTranslator(zap.NewNop())
	if err != nil {
		t.Fatalf("failed to build translator: %v", err)
	}
	return NewExporter(tr, zap.NewNop())
}

func TestClassifySeverity(t *testing.T) {
	cases := []struct {
		text string
		want Severity
	}{
		{"Consultation URGENTE recommandée", SeverityHigh},
		{"aspect possiblement malin", SeverityHigh},
		{"lésion grave", SeverityHigh},
		{"à surveiller dans les prochaines semaines", SeverityMedium},
		{"attention particulière requise", SeverityMedium},
		{"recommended follow-up in 6 months", SeverityMedium},
		{"lésion bénigne, rien à signaler", SeverityLow},
		{"", SeverityLow},
	}
	for _, c := range cases {
		if got := ClassifySeverity(c.text); got != c.want {
			t.Fatalf("ClassifySeverity(%q) = %s, want %s", c.text, got, c.want)
		}
	}
}

func TestSeverityHighWinsOverMedium(t *testing.T) {
	if got := ClassifySeverity("urgent, mais aussi à surveiller"); got != SeverityHigh {
		t.Fatalf("expected high to take precedence, got %s", got)
	}
}

func TestFileName(t *testing.T) {
	item := &domain.AnalysisRecord{ID: "b1946ac92492d2347c6235b4d2611184"}
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	got := FileName(item, now)
	want := "DermatoCheck_analyse_611184_2026-03-14.pdf"
	if got != want {
		t.Fatalf("FileName = %q, want %q", got, want)
	}
}

func TestFileNameShortID(t *testing.T) {
	item := &domain.AnalysisRecord{ID: "ab12"}
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	if got := FileName(item, now); got != "DermatoCheck_analyse_AB12_2026-03-14.pdf" {
		t.Fatalf("unexpected filename for short id: %q", got)
	}
}

func TestBuildPDFDeterministicForSameInput(t *testing.T) {
	e := newTestExporter(t)
	item := &domain.AnalysisRecord{
		ID:         "abc123",
		Prediction: domain.Prediction{FullText: "Lésion bénigne.\n\nSurveiller l'évolution sur deux semaines."},
	}
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	first, err := e.BuildPDF(item, "Jane Doe", "jane@example.com", "fr", now)
	if err != nil {
		t.Fatalf("BuildPDF failed: %v", err)
	}
	second, err := e.BuildPDF(item, "Jane Doe", "jane@example.com", "fr", now)
	if err != nil {
		t.Fatalf("BuildPDF failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatal("expected identical output for identical input")
	}
	if len(first) == 0 {
		t.Fatal("expected non-empty PDF output")
	}
}

func TestBuildPDFPaginatesLongBody(t *testing.T) {
	e := newTestExporter(t)
	item := &domain.AnalysisRecord{
		ID:         "longbody",
		Prediction: domain.Prediction{FullText: strings.Repeat("Ligne d'analyse détaillée numéro quarante-deux.\n", 200)},
	}

	out, err := e.BuildPDF(item, "Jane Doe", "", "fr", time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("BuildPDF failed: %v", err)
	}
	// A 200-line body cannot fit one A4 page; a second page object must exist.
	if !bytes.Contains(out, []byte("/Count 2")) && !bytes.Contains(out, []byte("/Count 3")) {
		t.Fatal("expected a paginated document for a long body")
	}
}

func TestMailtoLinkCapsBody(t *testing.T) {
	e := newTestExporter(t)
	item := &domain.AnalysisRecord{
		ID:         "abc123",
		Prediction: domain.Prediction{FullText: strings.Repeat("x", 5000)},
	}

	link := e.MailtoLink(item, "en")
	if !strings.HasPrefix(link, "mailto:?subject=") {
		t.Fatalf("unexpected link prefix: %q", link[:30])
	}
	if strings.Contains(link, "+") {
		t.Fatal("mailto link must not contain '+' escapes")
	}

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	values, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		t.Fatalf("query does not parse: %v", err)
	}

	body := values.Get("body")
	if !strings.Contains(body, strings.Repeat("x", 1500)) {
		t.Fatal("expected the capped analysis text in the body")
	}
	if strings.Contains(body, strings.Repeat("x", 1501)) {
		t.Fatal("analysis text must be capped at 1500 characters")
	}
	if !strings.Contains(body, "DermatoCheck") {
		t.Fatal("expected the disclaimer footer in the body")
	}
}

func TestMailtoBadgeAlwaysMatchesClassifier(t *testing.T) {
	e := newTestExporter(t)
	texts := []string{
		"cas urgent",
		"à surveiller",
		"rien de particulier",
	}
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	for _, text := range texts {
		item := &domain.AnalysisRecord{ID: "sev", Prediction: domain.Prediction{FullText: text}}
		out, err := e.BuildPDF(item, "L", "", "fr", now)
		if err != nil {
			t.Fatalf("BuildPDF failed: %v", err)
		}
		if len(out) == 0 {
			t.Fatalf("empty PDF for %q", text)
		}
		// The badge label key is derived from the classifier result; the
		// indirect check is that classification is stable for this text.
		if ClassifySeverity(text) != ClassifySeverity(CleanText(text)) {
			t.Fatalf("severity changed after cleaning for %q", text)
		}
	}
}

func TestCleanTextStripsMarkdown(t *testing.T) {
	in := "## Analyse\n\n**Important**: lésion `bénigne`.\n\n\n\nFin."
	want := "Analyse\n\nImportant: lésion bénigne.\n\nFin."
	if got := CleanText(in); got != want {
		t.Fatalf("CleanText = %q, want %q", got, want)
	}
}
