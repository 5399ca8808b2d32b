package extract

import (
	"regexp"
	"strings"

	"github.com/dermatocheck/dermatocheck-api/internal/constants"
	"github.com/dermatocheck/dermatocheck-api/internal/util"
	"go.uber.org/zap"
)

// Field is an optional extraction result. Found distinguishes "pattern never
// matched" from a genuinely empty value.
type Field struct {
	Value string
	Found bool
}

// Result carries the three fields recovered from AI prose for one candidate.
type Result struct {
	Address Field
	Phone   Field
	Website Field
}

// fieldPattern pairs a regex with the capture group holding the value.
// Patterns are evaluated in order, first match wins, so labelled patterns
// must precede structural ones.
type fieldPattern struct {
	re    *regexp.Regexp
	group int
}

var addressPatterns = []fieldPattern{
	{regexp.MustCompile(`(?i)\b(?:adresse|address|adres|direccion)\s*[:：]\s*(.+)$`), 1},
	{regexp.MustCompile(`(?i)^\s*(\d{1,4}(?:\s?(?:bis|ter))?\s*,?\s+(?:rue|avenue|av\.?|boulevard|bd\.?|place|chemin|route|allee|impasse|quai|cours|straat|laan|plein|calle|avenida|street|st\.|road|rd\.?)\b.*)$`), 1},
}

var phonePatterns = []fieldPattern{
	{regexp.MustCompile(`(?i)\b(?:telephone|tel|phone|telefono|telefoon|gsm)\s*\.?\s*[:：]\s*(\+?[\d][\d\s().\-/]{6,}\d)`), 1},
	{regexp.MustCompile(`(\+?\d[\d\s().\-]{7,}\d)`), 1},
}

var websitePatterns = []fieldPattern{
	{regexp.MustCompile(`(?i)\b(?:site\s?web|website|site|web)\s*[:：]\s*(\S+)`), 1},
	{regexp.MustCompile(`(?i)\b((?:https?://|www\.)\S+)`), 1},
}

var digitRe = regexp.MustCompile(`\d`)

// Extractor recovers address, phone and website strings from AI-generated
// prose when the structured response omits them. Best effort only: it scans
// a fixed window of lines after the first mention of the candidate name and
// applies ordered regex cascades per field. Values are returned with
// diacritics folded, matching the normalized scan.
type Extractor struct {
	logger *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract never fails; fields the cascade cannot recover come back with
// Found == false.
func (e *Extractor) Extract(name, text string) Result {
	var result Result

	needle := util.NormalizeName(util.TruncateRunes(strings.TrimSpace(name), constants.Limits.ExtractNameRunes))
	if needle == "" || strings.TrimSpace(text) == "" {
		return result
	}

	lines := strings.Split(util.StripDiacritics(text), "\n")
	nameLine := -1
	for i, line := range lines {
		if strings.Contains(util.Normalize(line), needle) {
			nameLine = i
			break
		}
	}
	if nameLine < 0 {
		e.logger.Debug("Extractor found no line for candidate", zap.String("needle", needle))
		return result
	}

	window := lines[nameLine+1:]
	if len(window) > constants.Limits.ExtractWindow {
		window = window[:constants.Limits.ExtractWindow]
	}

	result.Address = firstMatch(window, addressPatterns, cleanAddress)
	result.Phone = firstMatch(window, phonePatterns, cleanPhone)
	result.Website = firstMatch(window, websitePatterns, cleanWebsite)

	e.logger.Debug("Extractor finished",
		zap.String("needle", needle),
		zap.Bool("address", result.Address.Found),
		zap.Bool("phone", result.Phone.Found),
		zap.Bool("website", result.Website.Found),
	)

	return result
}

func firstMatch(window []string, patterns []fieldPattern, clean func(string) string) Field {
	for _, p := range patterns {
		for _, line := range window {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			value := clean(m[p.group])
			if value == "" {
				continue
			}
			return Field{Value: value, Found: true}
		}
	}
	return Field{}
}

func cleanAddress(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".,;")
}

func cleanPhone(s string) string {
	s = strings.TrimSpace(s)
	if len(digitRe.FindAllString(s, -1)) < 8 {
		return ""
	}
	return strings.Trim(s, ".,;")
}

func cleanWebsite(s string) string {
	s = strings.Trim(strings.TrimSpace(s), ".,;)")
	// A bare label with no URL-ish value is noise.
	if !strings.Contains(s, ".") {
		return ""
	}
	return s
}
