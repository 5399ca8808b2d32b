package domain

import "time"

// Review is one row of the reviews table. Visibility is gated by the
// Approved flag, set out of band by moderation.
type Review struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	Language   string    `json:"language"`
	Approved   bool      `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewInput is the submission payload before validation.
type ReviewInput struct {
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
	Language   string `json:"language"`
}
