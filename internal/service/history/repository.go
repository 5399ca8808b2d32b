package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/dermatocheck/dermatocheck-api/internal/domain"
	apperrors "github.com/dermatocheck/dermatocheck-api/pkg/errors"
	"go.uber.org/zap"
)

// Repository persists analyses and profiles. The analyses table stores the
// AI output as a jsonb prediction column alongside a legacy notes column.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepository(db *sql.DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Insert stores one analysis and returns the row with its generated id and
// timestamp.
func (r *Repository) Insert(ctx context.Context, userID, fullText string) (*domain.AnalysisRecord, error) {
	prediction, err := json.Marshal(domain.Prediction{FullText: fullText})
	if err != nil {
		return nil, apperrors.NewDatabaseError("errors.generic", "marshal_prediction", err)
	}

	record := &domain.AnalysisRecord{
		UserID:     userID,
		Prediction: domain.Prediction{FullText: fullText},
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO analyses (user_id, prediction)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, userID, string(prediction)).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return nil, apperrors.NewDatabaseError("errors.generic", "insert_analysis", err)
	}

	return record, nil
}

// ListByUser returns the caller's analyses, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.AnalysisRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, created_at, prediction, COALESCE(notes, '')
		FROM analyses
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("errors.generic", "list_analyses", err)
	}
	defer rows.Close()

	records := make([]domain.AnalysisRecord, 0)
	for rows.Next() {
		record, err := scanAnalysis(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseError("errors.generic", "scan_analysis", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("errors.generic", "list_analyses", err)
	}

	return records, nil
}

// GetByUser returns one analysis, scoped to its owner. A row belonging to
// another user is reported as not found, not as forbidden.
func (r *Repository) GetByUser(ctx context.Context, userID, analysisID string) (*domain.AnalysisRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, created_at, prediction, COALESCE(notes, '')
		FROM analyses
		WHERE id = $1 AND user_id = $2
	`, analysisID, userID)

	record, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("errors.not_found", "analysis")
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("errors.generic", "get_analysis", err)
	}

	return &record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (domain.AnalysisRecord, error) {
	var record domain.AnalysisRecord
	var prediction []byte

	if err := row.Scan(&record.ID, &record.UserID, &record.CreatedAt, &prediction, &record.Notes); err != nil {
		return domain.AnalysisRecord{}, err
	}

	if len(prediction) > 0 {
		if err := json.Unmarshal(prediction, &record.Prediction); err != nil {
			// Legacy rows may hold non-JSON text in prediction.
			record.Notes = string(prediction)
		}
	}

	return record, nil
}

// GetProfile loads the caller's profile. A missing row yields a default
// profile so first-time users do not error out.
func (r *Repository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile := &domain.Profile{ID: userID}

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(role, 'user'), COALESCE(language, ''), COALESCE(email, ''), COALESCE(full_name, '')
		FROM profiles
		WHERE id = $1
	`, userID).Scan(&profile.Role, &profile.Language, &profile.Email, &profile.FullName)
	if errors.Is(err, sql.ErrNoRows) {
		profile.Role = "user"
		return profile, nil
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("errors.generic", "get_profile", err)
	}

	return profile, nil
}

// UpdateLanguage upserts the persisted language preference.
func (r *Repository) UpdateLanguage(ctx context.Context, userID, language string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, language)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET language = EXCLUDED.language
	`, userID, language)
	if err != nil {
		return apperrors.NewDatabaseError("errors.generic", "update_language", err)
	}
	return nil
}
