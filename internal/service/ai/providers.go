package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/dermatocheck/dermatocheck-api/internal/domain"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GenerateInput describes one generation call: prose prompt, optional image
// attachment, optional Maps grounding for place discovery.
type GenerateInput struct {
	Prompt           string
	Image            []byte
	ImageMIME        string
	UseMapsGrounding bool
	Lat              float64
	Lng              float64
	HasLocation      bool
	MaxOutputTokens  int32
	Temperature      float32
}

// GenerateOutput is the provider-agnostic result. Leads are only populated
// by providers that support Maps grounding.
type GenerateOutput struct {
	Text  string
	Leads []domain.PlaceLead
	Model string
}

// Provider abstracts the generative backends.
type Provider interface {
	Name() string
	Generate(ctx context.Context, input GenerateInput) (GenerateOutput, error)
	Ping(ctx context.Context) bool
}

// GeminiProvider wraps the Gemini client. It is the only provider able to
// return grounded place leads.
type GeminiProvider struct {
	client       *genai.Client
	defaultModel string
	logger       *zap.Logger
}

func NewGeminiProvider(client *genai.Client, defaultModel string, logger *zap.Logger) *GeminiProvider {
	return &GeminiProvider{
		client:       client,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

func (g *GeminiProvider) Name() string {
	return "Gemini"
}

func (g *GeminiProvider) Generate(ctx context.Context, input GenerateInput) (GenerateOutput, error) {
	if g.client == nil {
		return GenerateOutput{}, fmt.Errorf("gemini client not initialized")
	}

	parts := []*genai.Part{{Text: input.Prompt}}
	if len(input.Image) > 0 {
		mime := input.ImageMIME
		if mime == "" {
			mime = "image/jpeg"
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: mime,
				Data:     input.Image,
			},
		})
	}

	temperature := input.Temperature
	if temperature == 0 {
		temperature = 0.4
	}
	maxTokens := input.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,
	}

	if input.UseMapsGrounding {
		config.Tools = []*genai.Tool{
			{GoogleMaps: &genai.GoogleMaps{}},
		}
		if input.HasLocation {
			config.ToolConfig = &genai.ToolConfig{
				RetrievalConfig: &genai.RetrievalConfig{
					LatLng: groundingLatLng(input.Lat, input.Lng),
				},
			}
		}
	}

	g.logger.Debug("Generating with Gemini",
		zap.String("model", g.defaultModel),
		zap.Bool("has_image", len(input.Image) > 0),
		zap.Bool("maps_grounding", input.UseMapsGrounding),
	)

	resp, err := g.client.Models.GenerateContent(ctx, g.defaultModel, []*genai.Content{
		{Parts: parts},
	}, config)
	if err != nil {
		g.logger.Error("Gemini generation failed", zap.Error(err))
		return GenerateOutput{}, err
	}

	text := extractText(resp)
	if text == "" {
		return GenerateOutput{}, fmt.Errorf("empty response from Gemini")
	}

	out := GenerateOutput{
		Text:  text,
		Leads: extractPlaceLeads(resp),
		Model: g.defaultModel,
	}

	g.logger.Debug("Gemini response received",
		zap.Int("length", len(out.Text)),
		zap.Int("leads", len(out.Leads)),
	)
	return out, nil
}

func (g *GeminiProvider) Ping(ctx context.Context) bool {
	if g.client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.defaultModel, []*genai.Content{
		{Parts: []*genai.Part{{Text: "ping"}}},
	}, nil)
	if err != nil {
		g.logger.Debug("Gemini ping failed", zap.Error(err))
		return false
	}

	return extractText(resp) != ""
}

// groundingLatLng builds the retrieval bias point. The SDK takes pointer
// coordinates.
func groundingLatLng(lat, lng float64) *genai.LatLng {
	return &genai.LatLng{
		Latitude:  genai.Ptr(lat),
		Longitude: genai.Ptr(lng),
	}
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}

	return strings.Join(texts, "")
}

// extractPlaceLeads normalizes grounding chunks into the one PlaceLead shape
// the rest of the service works with. Maps chunks are preferred; web chunks
// contribute a title and link only.
func extractPlaceLeads(resp *genai.GenerateContentResponse) []domain.PlaceLead {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}

	metadata := resp.Candidates[0].GroundingMetadata
	if metadata == nil || len(metadata.GroundingChunks) == 0 {
		return nil
	}

	leads := make([]domain.PlaceLead, 0, len(metadata.GroundingChunks))
	for _, chunk := range metadata.GroundingChunks {
		if chunk == nil {
			continue
		}
		switch {
		case chunk.Maps != nil:
			lead := domain.PlaceLead{
				Title:   chunk.Maps.Title,
				URI:     chunk.Maps.URI,
				PlaceID: chunk.Maps.PlaceID,
			}
			if lead.Title != "" {
				leads = append(leads, lead)
			}
		case chunk.Web != nil:
			lead := domain.PlaceLead{
				Title: chunk.Web.Title,
				URI:   chunk.Web.URI,
			}
			if lead.Title != "" {
				leads = append(leads, lead)
			}
		}
	}

	return leads
}

// OpenAIProvider is the text-only fallback. It cannot ground on Maps, so
// fallback analyses come back without place leads.
type OpenAIProvider struct {
	client       *openai.Client
	defaultModel string
	logger       *zap.Logger
}

func NewOpenAIProvider(apiKey string, defaultModel string, logger *zap.Logger) *OpenAIProvider {
	if apiKey == "" {
		return nil
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client:       &client,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

func (o *OpenAIProvider) Name() string {
	return "OpenAI"
}

func (o *OpenAIProvider) Generate(ctx context.Context, input GenerateInput) (GenerateOutput, error) {
	if o.client == nil {
		return GenerateOutput{}, fmt.Errorf("OpenAI client not initialized")
	}

	o.logger.Info("Fallback: Generating with OpenAI",
		zap.String("model", o.defaultModel),
		zap.Bool("has_image", len(input.Image) > 0),
	)

	message := buildUserMessage(input)

	maxTokens := int64(input.MaxOutputTokens)
	if maxTokens == 0 {
		maxTokens = 2048
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(o.defaultModel),
		Messages:            []openai.ChatCompletionMessageParamUnion{message},
		MaxCompletionTokens: openai.Int(maxTokens),
	})
	if err != nil {
		o.logger.Error("OpenAI generation failed", zap.Error(err))
		return GenerateOutput{}, err
	}

	if len(resp.Choices) == 0 {
		return GenerateOutput{}, fmt.Errorf("no choices in OpenAI response")
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return GenerateOutput{}, fmt.Errorf("empty response from OpenAI")
	}

	o.logger.Info("OpenAI response received",
		zap.Int("length", len(text)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)

	return GenerateOutput{Text: text, Model: o.defaultModel}, nil
}

// buildUserMessage assembles the chat message, attaching the photo as a
// base64 data URL content part when present.
func buildUserMessage(input GenerateInput) openai.ChatCompletionMessageParamUnion {
	if len(input.Image) == 0 {
		return openai.UserMessage(input.Prompt)
	}

	mime := input.ImageMIME
	if mime == "" {
		mime = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(input.Image))
	return openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(input.Prompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
	})
}

func (o *OpenAIProvider) Ping(ctx context.Context) bool {
	if o.client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.defaultModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("ping"),
		},
		MaxCompletionTokens: openai.Int(10),
	})
	if err != nil {
		o.logger.Debug("OpenAI ping failed", zap.Error(err))
		return false
	}

	return len(resp.Choices) > 0
}
