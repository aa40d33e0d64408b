package question

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"pollsite/internal/clock"
)

const (
	// LatestLimit is how many questions the public index shows.
	LatestLimit = 5
	// AdminPageSize is the admin listing page size.
	AdminPageSize = 5
	// MaxAdminPage keeps the listing offset inside int.
	MaxAdminPage = math.MaxInt/AdminPageSize + 1
	// MaxTextLength matches the VARCHAR(200) text columns.
	MaxTextLength = 200
)

var (
	ErrTextRequired     = errors.New("question text required")
	ErrChoiceRequired   = errors.New("choice text required")
	ErrNoChoiceSelected = errors.New("you didn't select a choice")
	ErrTextTooLong      = errors.New("text too long")
	ErrInvalidPage      = errors.New("invalid page")
)

type Service struct {
	repo  Repository
	clock clock.Clock
}

func NewService(repo Repository, c clock.Clock) *Service {
	if c == nil {
		c = clock.Real{}
	}
	return &Service{repo: repo, clock: c}
}

// Latest returns the most recently published questions for the index page.
func (s *Service) Latest(ctx context.Context) ([]Question, error) {
	now := s.clock.Now()
	qs, err := s.repo.ListPublished(ctx, now, LatestLimit)
	if err != nil {
		return nil, err
	}
	visible := ListVisible(qs, now)
	if len(visible) > LatestLimit {
		visible = visible[:LatestLimit]
	}
	return visible, nil
}

func (s *Service) Detail(ctx context.Context, id int64) (*Question, []Choice, error) {
	return s.visible(ctx, id)
}

type Results struct {
	Question   Question `json:"question"`
	Choices    []Choice `json:"choices"`
	TotalVotes int64    `json:"total_votes"`
}

func (s *Service) Results(ctx context.Context, id int64) (*Results, error) {
	q, choices, err := s.visible(ctx, id)
	if err != nil {
		return nil, err
	}
	res := &Results{Question: *q, Choices: choices}
	for _, c := range choices {
		res.TotalVotes += c.Votes
	}
	return res, nil
}

// Vote records one vote for choiceID. The question must be visible and the
// choice must belong to it.
func (s *Service) Vote(ctx context.Context, questionID, choiceID int64) error {
	_, choices, err := s.visible(ctx, questionID)
	if err != nil {
		return err
	}
	if choiceID == 0 || !hasChoice(choices, choiceID) {
		return ErrNoChoiceSelected
	}
	if err := s.repo.IncrementVote(ctx, questionID, choiceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoChoiceSelected
		}
		return err
	}
	return nil
}

func (s *Service) visible(ctx context.Context, id int64) (*Question, []Choice, error) {
	q, choices, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	found, err := GetVisible([]Question{*q}, id, s.clock.Now())
	if err != nil {
		return nil, nil, err
	}
	return &found, choices, nil
}

func hasChoice(choices []Choice, id int64) bool {
	for _, c := range choices {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Create stores a new question. A zero PubDate publishes it immediately and
// blank choice texts are ignored.
func (s *Service) Create(ctx context.Context, q *Question, choiceTexts []string) (int64, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return 0, ErrTextRequired
	}
	if tooLong(q.Text) {
		return 0, ErrTextTooLong
	}
	if q.PubDate.IsZero() {
		q.PubDate = s.clock.Now()
	}

	choices := make([]Choice, 0, len(choiceTexts))
	for _, text := range choiceTexts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if tooLong(text) {
			return 0, ErrTextTooLong
		}
		choices = append(choices, Choice{Text: text})
	}
	return s.repo.Create(ctx, q, choices)
}

func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) error {
	if input.Text != nil {
		text := strings.TrimSpace(*input.Text)
		if text == "" {
			return ErrTextRequired
		}
		if tooLong(text) {
			return ErrTextTooLong
		}
		input.Text = &text
	}
	return notFound(s.repo.Update(ctx, id, input))
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return notFound(s.repo.Delete(ctx, id))
}

func (s *Service) AddChoice(ctx context.Context, questionID int64, text string) (*Choice, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrChoiceRequired
	}
	if tooLong(text) {
		return nil, ErrTextTooLong
	}
	c := &Choice{QuestionID: questionID, Text: text}
	if err := notFound(s.repo.AddChoice(ctx, c)); err != nil {
		return nil, err
	}
	return c, nil
}

type AdminFilter struct {
	Search  string
	PubDate string
	Page    int
}

type AdminRow struct {
	Question
	WasPublishedRecently bool `json:"was_published_recently"`
}

type AdminPage struct {
	Items   []AdminRow `json:"items"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
	Total   int64      `json:"total"`
}

// AdminList lists every question, published or not, for administrators.
func (s *Service) AdminList(ctx context.Context, f AdminFilter) (*AdminPage, error) {
	now := s.clock.Now()
	since, until, err := PubDateRange(f.PubDate, now)
	if err != nil {
		return nil, err
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	if page > MaxAdminPage {
		return nil, ErrInvalidPage
	}

	qs, total, err := s.repo.Search(ctx, SearchQuery{
		Text:   strings.TrimSpace(f.Search),
		Since:  since,
		Until:  until,
		Limit:  AdminPageSize,
		Offset: (page - 1) * AdminPageSize,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]AdminRow, 0, len(qs))
	for _, q := range qs {
		rows = append(rows, AdminRow{Question: q, WasPublishedRecently: q.WasPublishedRecently(now)})
	}
	return &AdminPage{Items: rows, Page: page, PerPage: AdminPageSize, Total: total}, nil
}

func tooLong(text string) bool {
	return utf8.RuneCountInString(text) > MaxTextLength
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
