package export

import (
	"net/url"
	"strings"

	"github.com/dermatocheck/dermatocheck-api/internal/constants"
	"github.com/dermatocheck/dermatocheck-api/internal/domain"
	"github.com/dermatocheck/dermatocheck-api/internal/i18n"
	"github.com/dermatocheck/dermatocheck-api/internal/util"
)

// MailtoLink composes a mailto: deep link for one history item. The body is
// the cleaned analysis text hard-capped at 1500 characters plus a fixed
// disclaimer footer.
func (e *Exporter) MailtoLink(item *domain.AnalysisRecord, lang string) string {
	lang = i18n.ResolveLanguage(lang)

	subject := e.t(lang, "export.mail_subject")
	body := e.t(lang, "export.mail_intro") + "\n\n" +
		util.TruncateRunes(CleanText(item.Text()), constants.Limits.MailBodyRunes) +
		"\n\n" + e.t(lang, constants.MailDisclaimerKey)

	return "mailto:?subject=" + mailtoEscape(subject) + "&body=" + mailtoEscape(body)
}

// mailtoEscape percent-encodes for a mailto URL; QueryEscape alone would
// turn spaces into '+', which mail clients render literally.
func mailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
