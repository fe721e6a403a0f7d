package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quizvault/quizvault/internal/quiz"
)

// SQLStore keeps quiz records in a quizzes table, question list as a JSON
// column. Works against sqlite (the local vault default) and postgres.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

const quizColumns = `id,notebook,section,part,title,is_code_quiz,source_hash,created_at,updated_at,questions_json`

func (s *SQLStore) Put(ctx context.Context, z quiz.Quiz) error {
	qj, err := json.Marshal(z.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes (`+quizColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			notebook=EXCLUDED.notebook, section=EXCLUDED.section, part=EXCLUDED.part,
			title=EXCLUDED.title, is_code_quiz=EXCLUDED.is_code_quiz,
			source_hash=EXCLUDED.source_hash, updated_at=EXCLUDED.updated_at,
			questions_json=EXCLUDED.questions_json`,
		z.ID, z.Notebook, z.Section, z.Part, z.Title, z.IsCodeQuiz,
		z.SourceHash, z.CreatedAt, z.UpdatedAt, string(qj))
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (quiz.Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id=$1`, id)
	z, err := scanQuiz(row)
	if errors.Is(err, sql.ErrNoRows) {
		return quiz.Quiz{}, ErrNotFound
	}
	return z, err
}

func (s *SQLStore) GetAll(ctx context.Context) ([]quiz.Quiz, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+quizColumns+` FROM quizzes ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuizzes(rows)
}

func (s *SQLStore) GetAllByField(ctx context.Context, field, value string) ([]quiz.Quiz, error) {
	col, ok := filterableFields[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBadField, field)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE `+col+`=$1 ORDER BY created_at, id`, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuizzes(rows)
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (quiz.Quiz, error) {
	var z quiz.Quiz
	var qjson string
	if err := row.Scan(&z.ID, &z.Notebook, &z.Section, &z.Part, &z.Title,
		&z.IsCodeQuiz, &z.SourceHash, &z.CreatedAt, &z.UpdatedAt, &qjson); err != nil {
		return quiz.Quiz{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &z.Questions); err != nil {
		return quiz.Quiz{}, err
	}
	return z, nil
}

func collectQuizzes(rows *sql.Rows) ([]quiz.Quiz, error) {
	var out []quiz.Quiz
	for rows.Next() {
		z, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, rows.Err()
}
