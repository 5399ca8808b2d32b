package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dermatocheck/dermatocheck-api/internal/constants"
	"github.com/dermatocheck/dermatocheck-api/internal/util"
	"go.uber.org/zap"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator resolves dot-separated keys against per-language catalogs.
// A missing key resolves to the key literal so untranslated strings stay
// visible in the UI instead of failing the request.
type Translator struct {
	catalogs map[string]map[string]any
	logger   *zap.Logger
}

func NewTranslator(logger *zap.Logger) (*Translator, error) {
	catalogs := make(map[string]map[string]any, len(constants.SupportedLanguages))

	for _, lang := range constants.SupportedLanguages {
		data, err := localeFS.ReadFile(fmt.Sprintf("locales/%s.json", lang))
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog for %q: %w", lang, err)
		}

		var catalog map[string]any
		if err := json.Unmarshal(data, &catalog); err != nil {
			return nil, fmt.Errorf("failed to parse catalog for %q: %w", lang, err)
		}
		catalogs[lang] = catalog
	}

	return &Translator{
		catalogs: catalogs,
		logger:   logger,
	}, nil
}

// T walks the catalog of lang along the dot path of key. Unknown languages
// fall back to the default language; a missing segment or a non-string leaf
// logs a warning and returns the key itself.
func (t *Translator) T(lang, key string) string {
	catalog, ok := t.catalogs[ResolveLanguage(lang)]
	if !ok {
		catalog = t.catalogs[constants.DefaultLanguage]
	}

	var node any = catalog
	for _, segment := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			t.warnMissing(lang, key)
			return key
		}
		node, ok = m[segment]
		if !ok {
			t.warnMissing(lang, key)
			return key
		}
	}

	s, ok := node.(string)
	if !ok {
		t.warnMissing(lang, key)
		return key
	}
	return s
}

// Catalog returns the full tree for a language, for client-side hydration.
func (t *Translator) Catalog(lang string) map[string]any {
	return t.catalogs[ResolveLanguage(lang)]
}

// Languages lists the supported language codes.
func (t *Translator) Languages() []string {
	return constants.SupportedLanguages
}

// KeyPaths returns every dot path with a string leaf in the catalog of lang,
// sorted. Used to assert key-set parity across languages.
func (t *Translator) KeyPaths(lang string) []string {
	var paths []string
	collectPaths("", t.catalogs[ResolveLanguage(lang)], &paths)
	sort.Strings(paths)
	return paths
}

func collectPaths(prefix string, node map[string]any, out *[]string) {
	for key, value := range node {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if child, ok := value.(map[string]any); ok {
			collectPaths(path, child, out)
			continue
		}
		*out = append(*out, path)
	}
}

func (t *Translator) warnMissing(lang, key string) {
	if t.logger != nil {
		t.logger.Warn("Missing translation",
			zap.String("language", lang),
			zap.String("key", key),
		)
	}
}

// ResolveLanguage normalizes a raw language value (query param, header,
// stored preference) to a supported code, defaulting to French.
func ResolveLanguage(raw string) string {
	lang := util.Normalize(raw)
	if idx := strings.IndexAny(lang, "-_,;"); idx > 0 {
		lang = lang[:idx]
	}
	if util.Contains(constants.SupportedLanguages, lang) {
		return lang
	}
	return constants.DefaultLanguage
}
