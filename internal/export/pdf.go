package export

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dermatocheck/dermatocheck-api/internal/constants"
	"github.com/dermatocheck/dermatocheck-api/internal/domain"
	"github.com/dermatocheck/dermatocheck-api/internal/i18n"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

const (
	pageWidth      = 210.0
	marginX        = 15.0
	contentWidth   = pageWidth - 2*marginX
	bodyLineHeight = 5.5
	// Vertical offset past which the body overflows onto a new page.
	overflowY = 270.0
)

var (
	markdownHeadingRe = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	markdownEmphasis  = strings.NewReplacer("**", "", "__", "", "`", "")
	blankRunRe        = regexp.MustCompile(`\n{3,}`)
)

// Exporter renders analysis history items into downloadable documents and
// mail deep links.
type Exporter struct {
	translator *i18n.Translator
	logger     *zap.Logger
}

func NewExporter(translator *i18n.Translator, logger *zap.Logger) *Exporter {
	return &Exporter{
		translator: translator,
		logger:     logger,
	}
}

// FileName builds the download name: DermatoCheck_analyse_<last 6 of the id,
// uppercased>_<ISO date>.pdf
func FileName(item *domain.AnalysisRecord, now time.Time) string {
	id := item.ID
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return fmt.Sprintf("%s_%s_%s.pdf",
		constants.PDFFilenamePrefix,
		strings.ToUpper(id),
		now.Format("2006-01-02"),
	)
}

// BuildPDF lays out one history item: header band, patient block, severity
// badge, body text, disclaimer, numbered footer. Layout is deterministic for
// identical inputs apart from the generation date.
func (e *Exporter) BuildPDF(item *domain.AnalysisRecord, userName, userEmail, lang string, now time.Time) ([]byte, error) {
	lang = i18n.ResolveLanguage(lang)
	text := CleanText(item.Text())
	severity := ClassifySeverity(text)

	pdf := gofpdf.New("P", "mm", "A4", "")
	// Pinned creation date keeps output byte-identical for identical inputs.
	pdf.SetCreationDate(now)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(marginX, 15, marginX)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6,
			tr(fmt.Sprintf("%s %d/{nb}", e.t(lang, "export.pdf_page"), pdf.PageNo())),
			"", 0, "C", false, 0, "")
	})

	e.startPage(pdf, tr, lang)

	// Patient block
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(40, 40, 40)
	pdf.SetY(38)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s : %s", e.t(lang, "export.pdf_patient"), userName)), "", 1, "L", false, 0, "")
	if userEmail != "" {
		pdf.CellFormat(0, 6, tr(userEmail), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s %s", e.t(lang, "export.pdf_generated"), now.Format("2006-01-02"))), "", 1, "L", false, 0, "")

	// Severity badge
	pdf.Ln(2)
	badgeLabel := e.t(lang, severity.LabelKey())
	r, g, b := severityColor(severity)
	pdf.SetFillColor(r, g, b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	badgeWidth := pdf.GetStringWidth(tr(badgeLabel)) + 8
	pdf.CellFormat(badgeWidth, 8, tr(badgeLabel), "", 1, "C", true, 0, "")

	// Body, with a manual overflow check per line so the background band is
	// repainted on every new page.
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(40, 40, 40)
	for _, paragraph := range strings.Split(text, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			pdf.Ln(bodyLineHeight / 2)
			continue
		}
		for _, line := range pdf.SplitText(tr(paragraph), contentWidth) {
			if pdf.GetY()+bodyLineHeight > overflowY {
				e.startPage(pdf, tr, lang)
				pdf.SetY(38)
				pdf.SetFont("Helvetica", "", 10)
				pdf.SetTextColor(40, 40, 40)
			}
			pdf.CellFormat(contentWidth, bodyLineHeight, line, "", 1, "L", false, 0, "")
		}
	}

	// Disclaimer
	if pdf.GetY()+20 > overflowY {
		e.startPage(pdf, tr, lang)
		pdf.SetY(38)
	}
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.MultiCell(contentWidth, 4.5, tr(e.t(lang, "export.pdf_disclaimer")), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		e.logger.Error("PDF rendering failed", zap.String("analysis_id", item.ID), zap.Error(err))
		return nil, err
	}

	e.logger.Info("PDF rendered",
		zap.String("analysis_id", item.ID),
		zap.String("severity", string(severity)),
		zap.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

// startPage opens a page and paints the header band.
func (e *Exporter) startPage(pdf *gofpdf.Fpdf, tr func(string) string, lang string) {
	pdf.AddPage()
	pdf.SetFillColor(21, 101, 121)
	pdf.Rect(0, 0, pageWidth, 26, "F")
	pdf.SetY(8)
	pdf.SetFont("Helvetica", "B", 15)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(0, 10, tr(e.t(lang, "export.pdf_title")), "", 1, "C", false, 0, "")
}

func (e *Exporter) t(lang, key string) string {
	if e.translator == nil {
		return key
	}
	return e.translator.T(lang, key)
}

func severityColor(s Severity) (int, int, int) {
	switch s {
	case SeverityHigh:
		return 192, 57, 43
	case SeverityMedium:
		return 211, 130, 21
	default:
		return 39, 140, 81
	}
}

// CleanText strips markdown decoration from AI prose so exports read as
// plain text.
func CleanText(text string) string {
	text = markdownHeadingRe.ReplaceAllString(text, "")
	text = markdownEmphasis.Replace(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
