package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/dermatocheck/dermatocheck-api/internal/constants"
	"github.com/dermatocheck/dermatocheck-api/internal/domain"
	"github.com/dermatocheck/dermatocheck-api/internal/export"
	"github.com/dermatocheck/dermatocheck-api/internal/i18n"
	"github.com/dermatocheck/dermatocheck-api/internal/service/ai"
	apperrors "github.com/dermatocheck/dermatocheck-api/pkg/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Analyzer runs one photo analysis.
type Analyzer interface {
	Analyze(ctx context.Context, userID string, image []byte, imageMIME string, answers domain.QuestionnaireAnswers, lang string) (*domain.AnalysisResult, error)
}

// HistoryStore reads and writes per-user analyses and profile data.
type HistoryStore interface {
	ListByUser(ctx context.Context, userID string) ([]domain.AnalysisRecord, error)
	GetByUser(ctx context.Context, userID, analysisID string) (*domain.AnalysisRecord, error)
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateLanguage(ctx context.Context, userID, language string) error
}

// Searcher runs a dermatologist search to a terminal state.
type Searcher interface {
	Search(ctx context.Context, query domain.SearchQuery) *domain.SearchResponse
}

// ReviewService handles public review listing and authenticated submission.
type ReviewService interface {
	Submit(ctx context.Context, userID string, input domain.ReviewInput) (*domain.Review, error)
	ListApproved(ctx context.Context) ([]domain.Review, error)
}

// Pinger reports liveness of one backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	translator *i18n.Translator
	analyzer   Analyzer
	history    HistoryStore
	finder     Searcher
	reviews    ReviewService
	exporter   *export.Exporter
	db         Pinger
	cache      Pinger
	logger     *zap.Logger
}

func NewHandlers(
	translator *i18n.Translator,
	analyzer Analyzer,
	history HistoryStore,
	finder Searcher,
	reviews ReviewService,
	exporter *export.Exporter,
	db Pinger,
	cache Pinger,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		translator: translator,
		analyzer:   analyzer,
		history:    history,
		finder:     finder,
		reviews:    reviews,
		exporter:   exporter,
		db:         db,
		cache:      cache,
		logger:     logger,
	}
}

// CreateAnalysis accepts a multipart form with the photo and questionnaire
// answers and returns the AI assessment. Known provider failures carry a
// remediation hint so the client can explain what to fix.
func (h *Handlers) CreateAnalysis(c *gin.Context) {
	lang := requestLanguage(c)

	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, h.translator, apperrors.NewValidationError("errors.image_required", "image", nil))
		return
	}
	image, mime, err := readUpload(file)
	if err != nil {
		respondError(c, h.translator, apperrors.NewValidationError("errors.image_required", "image", nil))
		return
	}

	age, _ := strconv.Atoi(c.PostForm("age"))
	answers := domain.QuestionnaireAnswers{
		Age:          age,
		SkinType:     c.PostForm("skin_type"),
		Duration:     c.PostForm("duration"),
		Symptoms:     c.PostForm("symptoms"),
		BodyLocation: c.PostForm("body_location"),
		PriorHistory: c.PostForm("prior_history"),
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), currentUserID(c), image, mime, answers, lang)
	if err != nil {
		h.respondAnalysisError(c, lang, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// respondAnalysisError augments AI provider failures with the remediation
// classification before the generic error mapping.
func (h *Handlers) respondAnalysisError(c *gin.Context, lang string, err error) {
	var provErr *apperrors.AIProviderError
	if errors.As(err, &provErr) {
		kind := ai.ClassifyRemediation(provErr.RawMessage)
		status := provErr.StatusCode
		if status == 0 {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{
			"error": gin.H{
				"code":                provErr.Code,
				"message":             h.translator.T(lang, provErr.MessageKey),
				"remediation":         kind,
				"remediation_message": h.translator.T(lang, ai.RemediationMessageKey(kind)),
			},
		})
		return
	}
	respondError(c, h.translator, err)
}

func (h *Handlers) ListAnalyses(c *gin.Context) {
	records, err := h.history.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.translator, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": records})
}

// AnalysisPDF streams the report as a downloadable PDF.
func (h *Handlers) AnalysisPDF(c *gin.Context) {
	lang := requestLanguage(c)
	userID := currentUserID(c)

	record, err := h.history.GetByUser(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, h.translator, err)
		return
	}

	profile, err := h.history.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.translator, err)
		return
	}

	now := time.Now().UTC()
	pdf, err := h.exporter.BuildPDF(record, profile.FullName, profile.Email, lang, now)
	if err != nil {
		respondError(c, h.translator, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(record, now)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// AnalysisMailto returns the prefilled mailto link for sharing a report.
func (h *Handlers) AnalysisMailto(c *gin.Context) {
	record, err := h.history.GetByUser(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.translator, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mailto": h.exporter.MailtoLink(record, requestLanguage(c)),
	})
}

// SearchDermatologists always answers 200 with a terminal search state;
// failures are states, not HTTP errors.
func (h *Handlers) SearchDermatologists(c *gin.Context) {
	var query domain.SearchQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		respondError(c, h.translator, apperrors.NewValidationError("errors.validation", "body", nil))
		return
	}
	query.Language = requestLanguage(c)

	c.JSON(http.StatusOK, h.finder.Search(c.Request.Context(), query))
}

func (h *Handlers) ListReviews(c *gin.Context) {
	reviews, err := h.reviews.ListApproved(c.Request.Context())
	if err != nil {
		respondError(c, h.translator, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (h *Handlers) SubmitReview(c *gin.Context) {
	var input domain.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, h.translator, apperrors.NewValidationError("errors.validation", "body", nil))
		return
	}
	if input.Language == "" {
		input.Language = requestLanguage(c)
	}

	review, err := h.reviews.Submit(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		respondError(c, h.translator, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"review":  review,
		"message": h.translator.T(requestLanguage(c), "review.success"),
	})
}

// Catalog exposes one language's full translation catalog.
func (h *Handlers) Catalog(c *gin.Context) {
	lang := i18n.ResolveLanguage(c.Param("lang"))
	c.JSON(http.StatusOK, gin.H{
		"language": lang,
		"catalog":  h.translator.Catalog(lang),
	})
}

func (h *Handlers) GetProfile(c *gin.Context) {
	profile, err := h.history.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.translator, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type profileUpdate struct {
	Language string `json:"language"`
}

// UpdateProfile persists the language preference. Unsupported languages
// fall back to the default rather than erroring.
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var update profileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondError(c, h.translator, apperrors.NewValidationError("errors.validation", "body", nil))
		return
	}

	lang := i18n.ResolveLanguage(update.Language)
	if err := h.history.UpdateLanguage(c.Request.Context(), currentUserID(c), lang); err != nil {
		respondError(c, h.translator, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": lang})
}

func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}

	if err := h.db.Ping(ctx); err != nil {
		checks["database"] = "down"
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = "up"
	}
	if err := h.cache.Ping(ctx); err != nil {
		checks["cache"] = "down"
		status = http.StatusServiceUnavailable
	} else {
		checks["cache"] = "up"
	}

	c.JSON(status, gin.H{"status": httpStatusWord(status), "checks": checks})
}

func httpStatusWord(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}

func readUpload(file *multipart.FileHeader) ([]byte, string, error) {
	f, err := file.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, constants.Limits.MaxImageBytes+1))
	if err != nil {
		return nil, "", err
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
