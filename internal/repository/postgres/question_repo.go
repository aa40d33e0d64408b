package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"pollsite/internal/domain/question"
)

type QuestionRepo struct {
	db *sqlx.DB
}

func NewQuestionRepo(db *sqlx.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

const questionColumns = `id, question_text, pub_date, created_at`

func (r *QuestionRepo) Create(ctx context.Context, q *question.Question, choices []question.Choice) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, `
        INSERT INTO questions (question_text, pub_date)
        VALUES ($1, $2)
        RETURNING id, created_at
    `, q.Text, q.PubDate).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert question: %w", err)
	}

	for i := range choices {
		choices[i].QuestionID = q.ID
		err := tx.QueryRowxContext(ctx, `
            INSERT INTO choices (question_id, choice_text)
            VALUES ($1, $2)
            RETURNING id, votes
        `, q.ID, choices[i].Text).Scan(&choices[i].ID, &choices[i].Votes)
		if err != nil {
			return 0, fmt.Errorf("insert choice: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return q.ID, nil
}

func (r *QuestionRepo) GetByID(ctx context.Context, id int64) (*question.Question, []question.Choice, error) {
	q := &question.Question{}
	if err := r.db.GetContext(ctx, q, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id); err != nil {
		return nil, nil, err
	}

	choices := []question.Choice{}
	err := r.db.SelectContext(ctx, &choices, `
        SELECT id, question_id, choice_text, votes
        FROM choices WHERE question_id = $1
        ORDER BY id
    `, id)
	if err != nil {
		return nil, nil, fmt.Errorf("select choices: %w", err)
	}
	return q, choices, nil
}

func (r *QuestionRepo) ListPublished(ctx context.Context, now time.Time, limit int) ([]question.Question, error) {
	res := []question.Question{}
	err := r.db.SelectContext(ctx, &res, `
        SELECT `+questionColumns+`
        FROM questions
        WHERE pub_date <= $1
        ORDER BY pub_date DESC, id
        LIMIT $2
    `, now, limit)
	return res, err
}

func (r *QuestionRepo) Search(ctx context.Context, sq question.SearchQuery) ([]question.Question, int64, error) {
	var (
		where []string
		args  []any
	)
	if sq.Text != "" {
		where = append(where, `question_text ILIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(sq.Text)+"%")
	}
	if !sq.Since.IsZero() {
		where = append(where, `pub_date >= ?`)
		args = append(args, sq.Since)
	}
	if !sq.Until.IsZero() {
		where = append(where, `pub_date < ?`)
		args = append(args, sq.Until)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM questions`+cond), args...); err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}

	query := r.db.Rebind(`SELECT ` + questionColumns + ` FROM questions` + cond + ` ORDER BY pub_date DESC, id LIMIT ? OFFSET ?`)
	res := []question.Question{}
	if err := r.db.SelectContext(ctx, &res, query, append(args, sq.Limit, sq.Offset)...); err != nil {
		return nil, 0, fmt.Errorf("search questions: %w", err)
	}
	return res, total, nil
}

func (r *QuestionRepo) Update(ctx context.Context, id int64, input question.UpdateInput) error {
	var (
		sets []string
		args []any
	)
	if input.Text != nil {
		sets = append(sets, "question_text = ?")
		args = append(args, *input.Text)
	}
	if input.PubDate != nil {
		sets = append(sets, "pub_date = ?")
		args = append(args, *input.PubDate)
	}
	if len(sets) == 0 {
		var exists bool
		err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM questions WHERE id = $1)`, id)
		if err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}
		return nil
	}

	query := r.db.Rebind(`UPDATE questions SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	return expectRow(r.db.ExecContext(ctx, query, append(args, id)...))
}

func (r *QuestionRepo) Delete(ctx context.Context, id int64) error {
	return expectRow(r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id))
}

func (r *QuestionRepo) AddChoice(ctx context.Context, c *question.Choice) error {
	err := r.db.QueryRowxContext(ctx, `
        INSERT INTO choices (question_id, choice_text)
        VALUES ($1, $2)
        RETURNING id, votes
    `, c.QuestionID, c.Text).Scan(&c.ID, &c.Votes)
	if isForeignKeyViolation(err) {
		return sql.ErrNoRows
	}
	return err
}

// IncrementVote adds one vote in a single statement, so concurrent voters
// never overwrite each other's increments.
func (r *QuestionRepo) IncrementVote(ctx context.Context, questionID, choiceID int64) error {
	return expectRow(r.db.ExecContext(ctx, `
        UPDATE choices SET votes = votes + 1
        WHERE id = $1 AND question_id = $2
    `, choiceID, questionID))
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
