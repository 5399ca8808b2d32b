package i18n

import (
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func newTestTranslator(t *testing.T) *Translator {
	t.Helper()
	tr, err := NewTranslator(zap.NewNop())
	if err != nil {
		t.Fatalf("failed to build translator: %v", err)
	}
	return tr
}

func TestTranslatorResolvesKnownKey(t *testing.T) {
	tr := newTestTranslator(t)

	got := tr.T("en", "errors.generic")
	if got != "Something went wrong. Please try again." {
		t.Fatalf("unexpected translation: %q", got)
	}
}

func TestTranslatorMissingKeyReturnsLiteral(t *testing.T) {
	tr := newTestTranslator(t)

	for _, lang := range tr.Languages() {
		if got := tr.T(lang, "a.b.c"); got != "a.b.c" {
			t.Fatalf("expected literal key for %s, got %q", lang, got)
		}
	}
}

func TestTranslatorPartialPathReturnsLiteral(t *testing.T) {
	tr := newTestTranslator(t)

	// "errors" is a subtree, not a string leaf.
	if got := tr.T("fr", "errors"); got != "errors" {
		t.Fatalf("expected literal key for subtree lookup, got %q", got)
	}
	if got := tr.T("fr", "errors.generic.nope"); got != "errors.generic.nope" {
		t.Fatalf("expected literal key for over-deep lookup, got %q", got)
	}
}

func TestTranslatorUnknownLanguageFallsBackToDefault(t *testing.T) {
	tr := newTestTranslator(t)

	if got, want := tr.T("de", "errors.generic"), tr.T("fr", "errors.generic"); got != want {
		t.Fatalf("expected default-language fallback, got %q want %q", got, want)
	}
}

func TestCatalogKeyParityAcrossLanguages(t *testing.T) {
	tr := newTestTranslator(t)

	reference := tr.KeyPaths("fr")
	if len(reference) == 0 {
		t.Fatal("default catalog has no keys")
	}

	for _, lang := range tr.Languages() {
		paths := tr.KeyPaths(lang)
		if !reflect.DeepEqual(reference, paths) {
			t.Fatalf("catalog for %s does not match default key set:\n fr: %v\n %s: %v",
				lang, reference, lang, paths)
		}
	}
}

func TestResolveLanguage(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"fr", "fr"},
		{"EN", "en"},
		{"nl-BE", "nl"},
		{"es_ES", "es"},
		{"fr-FR,fr;q=0.9", "fr"},
		{"de", "fr"},
		{"", "fr"},
	}
	for _, c := range cases {
		if got := ResolveLanguage(c.in); got != c.want {
			t.Fatalf("ResolveLanguage(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
