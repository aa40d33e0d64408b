package question

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"pollsite/internal/clock"
)

type memoryQuestionRepo struct {
	mu           sync.Mutex
	questions    []*Question
	choices      map[int64][]Choice
	nextID       int64
	nextChoiceID int64
}

func newMemoryQuestionRepo() *memoryQuestionRepo {
	return &memoryQuestionRepo{
		choices:      make(map[int64][]Choice),
		nextID:       1,
		nextChoiceID: 1,
	}
}

func (r *memoryQuestionRepo) Create(ctx context.Context, q *Question, choices []Choice) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q.ID = r.nextID
	r.nextID++
	q.CreatedAt = time.Now()
	copyQ := *q
	r.questions = append(r.questions, &copyQ)

	for i := range choices {
		choices[i].ID = r.nextChoiceID
		r.nextChoiceID++
		choices[i].QuestionID = q.ID
		r.choices[q.ID] = append(r.choices[q.ID], choices[i])
	}
	return q.ID, nil
}

func (r *memoryQuestionRepo) find(id int64) (int, bool) {
	for i, q := range r.questions {
		if q.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (r *memoryQuestionRepo) GetByID(ctx context.Context, id int64) (*Question, []Choice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.find(id)
	if !ok {
		return nil, nil, sql.ErrNoRows
	}
	copyQ := *r.questions[i]
	copied := make([]Choice, len(r.choices[id]))
	copy(copied, r.choices[id])
	return &copyQ, copied, nil
}

func (r *memoryQuestionRepo) ListPublished(ctx context.Context, now time.Time, limit int) ([]Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := []Question{}
	for _, q := range r.questions {
		if !q.PubDate.After(now) {
			res = append(res, *q)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].PubDate.After(res[j].PubDate) })
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (r *memoryQuestionRepo) Search(ctx context.Context, sq SearchQuery) ([]Question, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []Question{}
	for _, q := range r.questions {
		if sq.Text != "" && !strings.Contains(strings.ToLower(q.Text), strings.ToLower(sq.Text)) {
			continue
		}
		if !sq.Since.IsZero() && q.PubDate.Before(sq.Since) {
			continue
		}
		if !sq.Until.IsZero() && !q.PubDate.Before(sq.Until) {
			continue
		}
		matched = append(matched, *q)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].PubDate.After(matched[j].PubDate) })

	total := int64(len(matched))
	if sq.Offset >= len(matched) {
		return []Question{}, total, nil
	}
	matched = matched[sq.Offset:]
	if sq.Limit > 0 && len(matched) > sq.Limit {
		matched = matched[:sq.Limit]
	}
	return matched, total, nil
}

func (r *memoryQuestionRepo) Update(ctx context.Context, id int64, input UpdateInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.find(id)
	if !ok {
		return sql.ErrNoRows
	}
	if input.Text != nil {
		r.questions[i].Text = *input.Text
	}
	if input.PubDate != nil {
		r.questions[i].PubDate = *input.PubDate
	}
	return nil
}

func (r *memoryQuestionRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.find(id)
	if !ok {
		return sql.ErrNoRows
	}
	r.questions = append(r.questions[:i], r.questions[i+1:]...)
	delete(r.choices, id)
	return nil
}

func (r *memoryQuestionRepo) AddChoice(ctx context.Context, c *Choice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.find(c.QuestionID); !ok {
		return sql.ErrNoRows
	}
	c.ID = r.nextChoiceID
	r.nextChoiceID++
	r.choices[c.QuestionID] = append(r.choices[c.QuestionID], *c)
	return nil
}

func (r *memoryQuestionRepo) IncrementVote(ctx context.Context, questionID, choiceID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.choices[questionID] {
		if c.ID == choiceID {
			r.choices[questionID][i].Votes++
			return nil
		}
	}
	return sql.ErrNoRows
}

func newTestService(now time.Time) (*Service, *memoryQuestionRepo) {
	repo := newMemoryQuestionRepo()
	return NewService(repo, clock.Fixed(now)), repo
}

func createQuestion(t *testing.T, svc *Service, text string, offset time.Duration, now time.Time, choices ...string) int64 {
	t.Helper()
	id, err := svc.Create(context.Background(), &Question{Text: text, PubDate: now.Add(offset)}, choices)
	if err != nil {
		t.Fatalf("create question %q: %v", text, err)
	}
	return id
}

func TestLatestNoQuestions(t *testing.T) {
	svc, _ := newTestService(refNow)

	qs, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(qs) != 0 {
		t.Fatalf("expected no questions, got %d", len(qs))
	}
}

func TestLatestHidesFutureAndLimits(t *testing.T) {
	svc, _ := newTestService(refNow)

	createQuestion(t, svc, "Future question", days(20), refNow)
	for i := 1; i <= 7; i++ {
		createQuestion(t, svc, "Past question", -days(i), refNow)
	}

	qs, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(qs) != LatestLimit {
		t.Fatalf("expected %d questions, got %d", LatestLimit, len(qs))
	}
	for i, q := range qs {
		if q.PubDate.After(refNow) {
			t.Fatalf("future question listed: %+v", q)
		}
		if want := refNow.Add(-days(i + 1)); !q.PubDate.Equal(want) {
			t.Fatalf("position %d: expected pub date %v, got %v", i, want, q.PubDate)
		}
	}
}

func TestDetailAndResultsVisibility(t *testing.T) {
	svc, _ := newTestService(refNow)
	ctx := context.Background()

	past := createQuestion(t, svc, "Past question", -days(5), refNow, "yes", "no")
	future := createQuestion(t, svc, "Future question", days(2), refNow, "yes", "no")

	q, choices, err := svc.Detail(ctx, past)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if q.Text != "Past question" || len(choices) != 2 {
		t.Fatalf("unexpected detail %+v %+v", q, choices)
	}

	if _, _, err := svc.Detail(ctx, future); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for future detail, got %v", err)
	}
	if _, err := svc.Results(ctx, future); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for future results, got %v", err)
	}
	if _, _, err := svc.Detail(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}
}

func TestVote(t *testing.T) {
	svc, repo := newTestService(refNow)
	ctx := context.Background()

	id := createQuestion(t, svc, "What's up?", -time.Hour, refNow, "Not much", "The sky")
	other := createQuestion(t, svc, "Other", -time.Hour, refNow, "A", "B")
	future := createQuestion(t, svc, "Later", time.Hour, refNow, "A")

	choices := repo.choices[id]
	if err := svc.Vote(ctx, id, choices[1].ID); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if err := svc.Vote(ctx, id, choices[1].ID); err != nil {
		t.Fatalf("second vote: %v", err)
	}

	if err := svc.Vote(ctx, id, 0); !errors.Is(err, ErrNoChoiceSelected) {
		t.Fatalf("expected no choice error, got %v", err)
	}
	if err := svc.Vote(ctx, id, repo.choices[other][0].ID); !errors.Is(err, ErrNoChoiceSelected) {
		t.Fatalf("expected no choice error for foreign choice, got %v", err)
	}
	if err := svc.Vote(ctx, future, repo.choices[future][0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found voting on future question, got %v", err)
	}

	res, err := svc.Results(ctx, id)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if res.TotalVotes != 2 {
		t.Fatalf("expected 2 total votes, got %d", res.TotalVotes)
	}
	if res.Choices[0].Votes != 0 || res.Choices[1].Votes != 2 {
		t.Fatalf("unexpected tallies %+v", res.Choices)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, repo := newTestService(refNow)
	ctx := context.Background()

	if _, err := svc.Create(ctx, &Question{Text: "   "}, nil); !errors.Is(err, ErrTextRequired) {
		t.Fatalf("expected text required, got %v", err)
	}

	q := &Question{Text: "Published now"}
	id, err := svc.Create(ctx, q, []string{"one", "", "  ", "two"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !q.PubDate.Equal(refNow) {
		t.Fatalf("expected default pub date %v, got %v", refNow, q.PubDate)
	}
	if got := len(repo.choices[id]); got != 2 {
		t.Fatalf("expected blank choices to be skipped, got %d choices", got)
	}
}

func TestTextLengthLimit(t *testing.T) {
	svc, repo := newTestService(refNow)
	ctx := context.Background()

	atLimit := strings.Repeat("é", MaxTextLength)
	tooLong := atLimit + "?"

	id, err := svc.Create(ctx, &Question{Text: atLimit}, []string{atLimit})
	if err != nil {
		t.Fatalf("text of exactly %d characters should be accepted: %v", MaxTextLength, err)
	}
	if _, err := svc.Create(ctx, &Question{Text: tooLong}, nil); !errors.Is(err, ErrTextTooLong) {
		t.Fatalf("expected text too long, got %v", err)
	}
	if _, err := svc.Create(ctx, &Question{Text: "Short"}, []string{"ok", tooLong}); !errors.Is(err, ErrTextTooLong) {
		t.Fatalf("expected choice text too long, got %v", err)
	}
	if len(repo.questions) != 1 {
		t.Fatalf("rejected questions must not be stored, have %d", len(repo.questions))
	}

	if err := svc.Update(ctx, id, UpdateInput{Text: &tooLong}); !errors.Is(err, ErrTextTooLong) {
		t.Fatalf("expected update to reject long text, got %v", err)
	}
	if _, err := svc.AddChoice(ctx, id, tooLong); !errors.Is(err, ErrTextTooLong) {
		t.Fatalf("expected add choice to reject long text, got %v", err)
	}
	if got := len(repo.choices[id]); got != 1 {
		t.Fatalf("expected only the initial choice, got %d", got)
	}
}

func TestUpdateDeleteAddChoice(t *testing.T) {
	svc, repo := newTestService(refNow)
	ctx := context.Background()

	id := createQuestion(t, svc, "Original", -time.Hour, refNow)

	blank := " "
	if err := svc.Update(ctx, id, UpdateInput{Text: &blank}); !errors.Is(err, ErrTextRequired) {
		t.Fatalf("expected text required, got %v", err)
	}
	later := refNow.Add(days(1))
	if err := svc.Update(ctx, id, UpdateInput{PubDate: &later}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, _, err := svc.Detail(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rescheduled question should be hidden, got %v", err)
	}
	if err := svc.Update(ctx, 404, UpdateInput{PubDate: &later}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := svc.AddChoice(ctx, id, ""); !errors.Is(err, ErrChoiceRequired) {
		t.Fatalf("expected choice required, got %v", err)
	}
	c, err := svc.AddChoice(ctx, id, "Maybe")
	if err != nil {
		t.Fatalf("add choice: %v", err)
	}
	if c.ID == 0 || len(repo.choices[id]) != 1 {
		t.Fatalf("choice not stored: %+v", c)
	}
	if _, err := svc.AddChoice(ctx, 404, "Nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := repo.choices[id]; ok {
		t.Fatalf("choices should be removed with the question")
	}
	if err := svc.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestAdminList(t *testing.T) {
	svc, _ := newTestService(refNow)
	ctx := context.Background()

	createQuestion(t, svc, "Favourite colour?", -time.Hour, refNow)
	createQuestion(t, svc, "Favourite food?", -days(3), refNow)
	createQuestion(t, svc, "Upcoming colour vote", 10*time.Hour, refNow)
	for i := 0; i < 6; i++ {
		createQuestion(t, svc, "Filler", -days(40+i), refNow)
	}

	page, err := svc.AdminList(ctx, AdminFilter{Search: "COLOUR"})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("expected 2 colour questions, got %+v", page)
	}
	if page.Items[0].Text != "Upcoming colour vote" || page.Items[0].WasPublishedRecently {
		t.Fatalf("future question should be first and not recent: %+v", page.Items[0])
	}
	if !page.Items[1].WasPublishedRecently {
		t.Fatalf("question published an hour ago should be recent")
	}

	page, err = svc.AdminList(ctx, AdminFilter{PubDate: DatePast7Days})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("expected 3 questions in the past 7 days window, got %d", page.Total)
	}

	page, err = svc.AdminList(ctx, AdminFilter{Page: 2})
	if err != nil {
		t.Fatalf("admin list page 2: %v", err)
	}
	if page.Total != 9 || len(page.Items) != 4 || page.Page != 2 {
		t.Fatalf("unexpected second page %+v", page)
	}

	if _, err := svc.AdminList(ctx, AdminFilter{PubDate: "bogus"}); !errors.Is(err, ErrInvalidDateFilter) {
		t.Fatalf("expected invalid filter error, got %v", err)
	}
}

type offsetRecordingRepo struct {
	*memoryQuestionRepo
	offsets []int
}

func (r *offsetRecordingRepo) Search(ctx context.Context, sq SearchQuery) ([]Question, int64, error) {
	r.offsets = append(r.offsets, sq.Offset)
	return r.memoryQuestionRepo.Search(ctx, sq)
}

func TestAdminListPageBounds(t *testing.T) {
	repo := &offsetRecordingRepo{memoryQuestionRepo: newMemoryQuestionRepo()}
	svc := NewService(repo, clock.Fixed(refNow))
	ctx := context.Background()

	if _, err := svc.AdminList(ctx, AdminFilter{Page: math.MaxInt/AdminPageSize + 2}); !errors.Is(err, ErrInvalidPage) {
		t.Fatalf("expected invalid page, got %v", err)
	}
	if _, err := svc.AdminList(ctx, AdminFilter{Page: math.MaxInt}); !errors.Is(err, ErrInvalidPage) {
		t.Fatalf("expected invalid page, got %v", err)
	}
	if len(repo.offsets) != 0 {
		t.Fatalf("rejected pages must not reach storage, got offsets %v", repo.offsets)
	}

	page, err := svc.AdminList(ctx, AdminFilter{Page: MaxAdminPage})
	if err != nil {
		t.Fatalf("last addressable page: %v", err)
	}
	if len(page.Items) != 0 {
		t.Fatalf("expected an empty page, got %+v", page)
	}
	if got := repo.offsets[0]; got < 0 {
		t.Fatalf("offset overflowed: %d", got)
	}
}
