package question

import (
	"context"
	"time"
)

type Question struct {
	ID        int64     `json:"id" db:"id"`
	Text      string    `json:"question_text" db:"question_text"`
	PubDate   time.Time `json:"pub_date" db:"pub_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Choice struct {
	ID         int64  `json:"id" db:"id"`
	QuestionID int64  `json:"question_id" db:"question_id"`
	Text       string `json:"choice_text" db:"choice_text"`
	Votes      int64  `json:"votes" db:"votes"`
}

// WasPublishedRecently reports whether the question went live within the
// trailing day ending at now.
func (q Question) WasPublishedRecently(now time.Time) bool {
	return WasPublishedRecently(q.PubDate, now)
}

// IsVisible reports whether the question is published at now.
func (q Question) IsVisible(now time.Time) bool {
	return !q.PubDate.After(now)
}

type UpdateInput struct {
	Text    *string
	PubDate *time.Time
}

// SearchQuery is what the storage layer needs for the admin listing.
// Zero Since/Until mean unbounded.
type SearchQuery struct {
	Text   string
	Since  time.Time
	Until  time.Time
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, q *Question, choices []Choice) (int64, error)
	GetByID(ctx context.Context, id int64) (*Question, []Choice, error)
	ListPublished(ctx context.Context, now time.Time, limit int) ([]Question, error)
	Search(ctx context.Context, sq SearchQuery) ([]Question, int64, error)
	Update(ctx context.Context, id int64, input UpdateInput) error
	Delete(ctx context.Context, id int64) error
	AddChoice(ctx context.Context, c *Choice) error
	IncrementVote(ctx context.Context, questionID, choiceID int64) error
}
