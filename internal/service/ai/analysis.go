package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dermatocheck/dermatocheck-api/internal/constants"
	"github.com/dermatocheck/dermatocheck-api/internal/domain"
	"github.com/dermatocheck/dermatocheck-api/internal/util"
	"github.com/dermatocheck/dermatocheck-api/pkg/errors"
	"go.uber.org/zap"
)

// Recorder persists finished analyses. Implemented by the history
// repository.
type Recorder interface {
	Insert(ctx context.Context, userID, fullText string) (*domain.AnalysisRecord, error)
}

// AnalysisService orchestrates one skin-condition analysis: prompt
// assembly, generation, persistence.
type AnalysisService struct {
	manager  *ModelManager
	recorder Recorder
	logger   *zap.Logger
}

func NewAnalysisService(manager *ModelManager, recorder Recorder, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{
		manager:  manager,
		recorder: recorder,
		logger:   logger,
	}
}

var promptLanguages = map[string]string{
	"fr": "français",
	"en": "English",
	"nl": "Nederlands",
	"es": "español",
}

// Analyze runs the generation with the photo attached and stores the
// resulting text under the user's history.
func (s *AnalysisService) Analyze(ctx context.Context, userID string, image []byte, imageMIME string, answers domain.QuestionnaireAnswers, lang string) (*domain.AnalysisResult, error) {
	if len(image) == 0 {
		return nil, errors.NewValidationError("errors.image_required", "image", nil)
	}
	if int64(len(image)) > constants.Limits.MaxImageBytes {
		return nil, errors.NewValidationError("errors.validation", "image", len(image))
	}
	if answers.Age <= 0 {
		return nil, errors.NewValidationError("errors.age_required", "age", answers.Age)
	}

	out, err := s.manager.Generate(ctx, GenerateInput{
		Prompt:    s.buildAnalysisPrompt(answers, lang),
		Image:     image,
		ImageMIME: imageMIME,
	})
	if err != nil {
		return nil, err
	}

	record, err := s.recorder.Insert(ctx, userID, out.Text)
	if err != nil {
		// The analysis itself succeeded; losing the history row should not
		// lose the result.
		s.logger.Error("Failed to persist analysis", zap.String("user_id", userID), zap.Error(err))
		record = &domain.AnalysisRecord{
			UserID:     userID,
			CreatedAt:  time.Now().UTC(),
			Prediction: domain.Prediction{FullText: out.Text},
		}
	}

	s.logger.Info("Analysis completed",
		zap.String("user_id", userID),
		zap.String("provider", s.providerName(out)),
		zap.Int("leads", len(out.Leads)),
	)

	return &domain.AnalysisResult{
		Record:     record,
		PlaceLeads: out.Leads,
		Provider:   s.providerName(out),
		Model:      out.Model,
	}, nil
}

// GroundedSearch asks the model for dermatologists near the query target
// with Maps grounding enabled. It returns the prose plus the normalized
// leads; the finder merges and enriches them.
func (s *AnalysisService) GroundedSearch(ctx context.Context, query domain.SearchQuery) (string, []domain.PlaceLead, error) {
	out, err := s.manager.Generate(ctx, GenerateInput{
		Prompt:           s.buildSearchPrompt(query),
		UseMapsGrounding: true,
		Lat:              query.Lat,
		Lng:              query.Lng,
		HasLocation:      query.HasLocation,
	})
	if err != nil {
		return "", nil, err
	}
	return out.Text, out.Leads, nil
}

func (s *AnalysisService) buildAnalysisPrompt(answers domain.QuestionnaireAnswers, lang string) string {
	language, ok := promptLanguages[lang]
	if !ok {
		language = promptLanguages[constants.DefaultLanguage]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tu es un assistant dermatologique. Analyse la photo jointe et réponds en %s.\n\n", language)
	b.WriteString("Profil du patient :\n")
	fmt.Fprintf(&b, "- Âge : %d\n", answers.Age)
	writeAnswer(&b, "Type de peau", answers.SkinType)
	writeAnswer(&b, "Durée des symptômes", answers.Duration)
	writeAnswer(&b, "Symptômes", answers.Symptoms)
	writeAnswer(&b, "Localisation", answers.BodyLocation)
	writeAnswer(&b, "Antécédents", answers.PriorHistory)
	b.WriteString("\nDécris les observations visibles, les causes possibles, le niveau d'attention recommandé ")
	b.WriteString("et rappelle que seule une consultation chez un dermatologue permet un diagnostic.")
	return b.String()
}

func (s *AnalysisService) buildSearchPrompt(query domain.SearchQuery) string {
	var b strings.Builder
	b.WriteString("Liste des dermatologues en exercice")
	if query.HasLocation {
		fmt.Fprintf(&b, " à proximité de la position (%.5f, %.5f)", query.Lat, query.Lng)
	} else {
		city := query.City
		if city == constants.SentinelCityOther {
			city = query.CityOther
		}
		if city != "" {
			fmt.Fprintf(&b, " à %s", city)
		}
		if query.Country != "" {
			fmt.Fprintf(&b, ", %s", query.Country)
		}
	}
	b.WriteString(". Pour chaque cabinet, indique sur des lignes distinctes le nom, ")
	b.WriteString("l'adresse complète, le numéro de téléphone et le site web s'il existe.")
	return b.String()
}

// writeAnswer appends one non-empty questionnaire line, capped so a pasted
// wall of text cannot blow up the prompt.
func writeAnswer(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(b, "- %s : %s\n", label, util.TruncateString(value, constants.Limits.MaxQuestionRunes))
}

func (s *AnalysisService) providerName(out GenerateOutput) string {
	if strings.HasPrefix(out.Model, "gpt") {
		return "OpenAI"
	}
	return "Gemini"
}
