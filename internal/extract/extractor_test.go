package extract

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestExtractLabelledFields(t *testing.T) {
	text := "Voici quelques dermatologues :\n" +
		"Dr. X\n" +
		"Adresse: 12 Rue de la Paix\n" +
		"Téléphone: 01 23 45 67 89\n" +
		"Site web: www.drx-dermato.fr\n"

	e := NewExtractor(zap.NewNop())
	res := e.Extract("Dr. X", text)

	if !res.Address.Found || res.Address.Value != "12 Rue de la Paix" {
		t.Fatalf("unexpected address: %+v", res.Address)
	}
	if !res.Phone.Found || res.Phone.Value != "01 23 45 67 89" {
		t.Fatalf("unexpected phone: %+v", res.Phone)
	}
	if !res.Website.Found || res.Website.Value != "www.drx-dermato.fr" {
		t.Fatalf("unexpected website: %+v", res.Website)
	}
}

func TestExtractNoNameLineYieldsNothing(t *testing.T) {
	text := "Adresse: 12 Rue de la Paix\nTéléphone: 01 23 45 67 89\n"

	e := NewExtractor(zap.NewNop())
	res := e.Extract("Dr. Introuvable", text)

	if res.Address.Found || res.Phone.Found || res.Website.Found {
		t.Fatalf("expected empty result, got %+v", res)
	}
	if res.Address.Value != "" || res.Phone.Value != "" || res.Website.Value != "" {
		t.Fatalf("expected empty values, got %+v", res)
	}
}

func TestExtractMatchesDiacriticInsensitive(t *testing.T) {
	text := "Cabinet du Dr. Kébir à Meknès\nAdresse: 3 Avenue des FAR\n"

	e := NewExtractor(zap.NewNop())
	res := e.Extract("Dr. Kebir", text)

	if !res.Address.Found || res.Address.Value != "3 Avenue des FAR" {
		t.Fatalf("unexpected address: %+v", res.Address)
	}
}

func TestExtractTruncatesLongNames(t *testing.T) {
	longName := "Dr. Jean-Baptiste de la Rochefoucauld"
	// Only the first 15 characters of the normalized name have to appear.
	text := "Résultat : " + longName[:20] + "...\nAdresse: 7 Boulevard Haussmann\n"

	e := NewExtractor(zap.NewNop())
	res := e.Extract(longName, text)

	if !res.Address.Found || res.Address.Value != "7 Boulevard Haussmann" {
		t.Fatalf("unexpected address: %+v", res.Address)
	}
}

func TestExtractStructuralFallbacks(t *testing.T) {
	text := "Dr. Y\n" +
		"12 rue Victor Hugo, 75002 Paris\n" +
		"Vous pouvez appeler le +33 1 42 96 12 34 pour un rendez-vous.\n" +
		"Plus d'informations sur https://dr-y.example.com/contact.\n"

	e := NewExtractor(zap.NewNop())
	res := e.Extract("Dr. Y", text)

	if !res.Address.Found || !strings.HasPrefix(res.Address.Value, "12 rue Victor Hugo") {
		t.Fatalf("unexpected address: %+v", res.Address)
	}
	if !res.Phone.Found || res.Phone.Value != "+33 1 42 96 12 34" {
		t.Fatalf("unexpected phone: %+v", res.Phone)
	}
	if !res.Website.Found || res.Website.Value != "https://dr-y.example.com/contact" {
		t.Fatalf("unexpected website: %+v", res.Website)
	}
}

func TestExtractWindowIsBounded(t *testing.T) {
	var b strings.Builder
	b.WriteString("Dr. Z\n")
	for i := 0; i < 12; i++ {
		b.WriteString("Rien d'utile ici.\n")
	}
	b.WriteString("Adresse: 1 Rue Trop Loin\n")

	e := NewExtractor(zap.NewNop())
	res := e.Extract("Dr. Z", b.String())

	if res.Address.Found {
		t.Fatalf("expected address outside the 12-line window to be ignored, got %+v", res.Address)
	}
}

func TestExtractPhoneRequiresEnoughDigits(t *testing.T) {
	text := "Dr. W\nTel: 12 34\n"

	e := NewExtractor(zap.NewNop())
	res := e.Extract("Dr. W", text)

	if res.Phone.Found {
		t.Fatalf("expected short digit runs to be rejected, got %+v", res.Phone)
	}
}
