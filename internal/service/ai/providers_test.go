package ai

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestGroundingLatLng(t *testing.T) {
	latLng := groundingLatLng(48.8566, 2.3522)

	if latLng.Latitude == nil || latLng.Longitude == nil {
		t.Fatal("expected both coordinates to be set")
	}
	if *latLng.Latitude != 48.8566 || *latLng.Longitude != 2.3522 {
		t.Fatalf("unexpected coordinates: %f, %f", *latLng.Latitude, *latLng.Longitude)
	}
}

func TestBuildUserMessageTextOnly(t *testing.T) {
	message := buildUserMessage(GenerateInput{Prompt: "analyse"})

	if message.OfUser == nil {
		t.Fatal("expected a user message")
	}
	if got := message.OfUser.Content.OfString.Value; got != "analyse" {
		t.Fatalf("unexpected content: %q", got)
	}
	if len(message.OfUser.Content.OfArrayOfContentParts) != 0 {
		t.Fatal("text-only message must not carry content parts")
	}
}

func TestBuildUserMessageWithImage(t *testing.T) {
	image := []byte{0x89, 0x50, 0x4e, 0x47}
	message := buildUserMessage(GenerateInput{
		Prompt:    "analyse",
		Image:     image,
		ImageMIME: "image/png",
	})

	if message.OfUser == nil {
		t.Fatal("expected a user message")
	}
	parts := message.OfUser.Content.OfArrayOfContentParts
	if len(parts) != 2 {
		t.Fatalf("expected text + image parts, got %d", len(parts))
	}
	if parts[0].OfText == nil || parts[0].OfText.Text != "analyse" {
		t.Fatalf("unexpected first part: %+v", parts[0])
	}
	if parts[1].OfImageURL == nil {
		t.Fatal("expected an image part")
	}

	url := parts[1].OfImageURL.ImageURL.URL
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(url, prefix) {
		t.Fatalf("unexpected data URL: %q", url)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	if err != nil {
		t.Fatalf("payload not base64: %v", err)
	}
	if string(decoded) != string(image) {
		t.Fatal("payload does not round-trip to the original image")
	}
}

func TestBuildUserMessageDefaultsMIME(t *testing.T) {
	message := buildUserMessage(GenerateInput{Prompt: "analyse", Image: []byte{0xff}})

	parts := message.OfUser.Content.OfArrayOfContentParts
	if len(parts) != 2 || parts[1].OfImageURL == nil {
		t.Fatalf("unexpected parts: %+v", parts)
	}
	if !strings.HasPrefix(parts[1].OfImageURL.ImageURL.URL, "data:image/jpeg;base64,") {
		t.Fatalf("expected jpeg default, got %q", parts[1].OfImageURL.ImageURL.URL)
	}
}
