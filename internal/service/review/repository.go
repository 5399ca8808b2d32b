package review

import (
	"context"
	"database/sql"

	"github.com/dermatocheck/dermatocheck-api/internal/domain"
	apperrors "github.com/dermatocheck/dermatocheck-api/pkg/errors"
)

// PostgresRepository stores reviews in the reviews table.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, userID string, input domain.ReviewInput) (*domain.Review, error) {
	review := &domain.Review{
		UserID:     userID,
		AuthorName: input.AuthorName,
		Rating:     input.Rating,
		Comment:    input.Comment,
		Language:   input.Language,
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO reviews (user_id, author_name, rating, comment, language)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, userID, input.AuthorName, input.Rating, input.Comment, input.Language).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return nil, apperrors.NewDatabaseError("errors.review_submit", "insert_review", err)
	}

	return review, nil
}

func (r *PostgresRepository) ListApproved(ctx context.Context, limit int) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, author_name, rating, COALESCE(comment, ''), COALESCE(language, ''), created_at
		FROM reviews
		WHERE approved = TRUE
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("errors.generic", "list_reviews", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0, limit)
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(&review.ID, &review.AuthorName, &review.Rating, &review.Comment, &review.Language, &review.CreatedAt); err != nil {
			return nil, apperrors.NewDatabaseError("errors.generic", "scan_review", err)
		}
		review.Approved = true
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("errors.generic", "list_reviews", err)
	}

	return reviews, nil
}
