package constants

import "time"

var CacheTTL = struct {
	PlaceDetails time.Duration
	Reviews      time.Duration
}{
	PlaceDetails: 24 * time.Hour,
	Reviews:      5 * time.Minute,
}

var RetryConfig = struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
}{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	Jitter:      250 * time.Millisecond,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,
	ResetTimeout:        60 * time.Second,
	HealthCheckInterval: 30 * time.Second,
	HealthCheckTimeout:  5 * time.Second,
}

var Limits = struct {
	MailBodyRunes    int
	ReviewListSize   int
	ExtractWindow    int
	ExtractNameRunes int
	MaxImageBytes    int64
	MaxQuestionRunes int
}{
	MailBodyRunes:    1500,
	ReviewListSize:   9,
	ExtractWindow:    12,
	ExtractNameRunes: 15,
	MaxImageBytes:    8 << 20,
	MaxQuestionRunes: 2000,
}

// Pinned search result. Product special case: searches for Meknès, Maroc
// always surface this clinic first and drop duplicates matched by the
// name fragment.
var PinnedResult = struct {
	Country      string
	City         string
	Name         string
	Address      string
	Phone        string
	NameFragment string
}{
	Country:      "Maroc",
	City:         "Meknès",
	Name:         "DR. Khafifi Hamza",
	Address:      "Av. des F.A.R, Meknès 50000, Maroc",
	Phone:        "+212 5355-20202",
	NameFragment: "khafifi",
}

// SentinelCityOther is the reserved dropdown value signaling that the
// free-text city input is used instead of a preset list.
const SentinelCityOther = "other"

const (
	DefaultLanguage   = "fr"
	LanguageCookie    = "dermo_lang"
	MailDisclaimerKey = "export.mail_disclaimer"
	PDFFilenamePrefix = "DermatoCheck_analyse"
)

var SupportedLanguages = []string{"fr", "en", "nl", "es"}
