package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"exam-quiz-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	settingsID      = "quiz_settings"
	uniqueViolation = "23505"
)

// Store keeps each collection as JSONB documents, with the fields needed for
// lookups, uniqueness and ranking promoted to columns. Writes that touch a
// user's attempt state lock the user row, which makes them compare-and-set.
type Store struct {
	pool  *pgxpool.Pool
	newID func() string
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, newID: uuid.NewString}
}

func (s *Store) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, data FROM questions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) GetQuestions(ctx context.Context, ids []string) (map[string]domain.Question, error) {
	out := make(map[string]domain.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx, `SELECT id, data FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out[q.ID] = q
	}
	return out, rows.Err()
}

func (s *Store) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	q, err := scanQuestion(s.pool.QueryRow(ctx, `SELECT id, data FROM questions WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, err
}

func (s *Store) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	if q.ID == "" {
		q.ID = s.newID()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	data, err := json.Marshal(q)
	if err != nil {
		return domain.Question{}, fmt.Errorf("encode question: %w", err)
	}
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO questions (id, data, created_at) VALUES ($1, $2, $3)`,
		q.ID, string(data), q.CreatedAt,
	); err != nil {
		return domain.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

func (s *Store) UpdateQuestion(ctx context.Context, q domain.Question) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode question: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `UPDATE questions SET data=$2 WHERE id=$1`, q.ID, string(data))
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (s *Store) GetSettings(ctx context.Context) (domain.Settings, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM settings WHERE id=$1`, settingsID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	var settings domain.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return domain.Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	return settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings domain.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO settings (id, data) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`,
		settingsID, string(data),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.ID == "" {
		u.ID = s.newID()
	}
	if u.RegisteredAt.IsZero() {
		u.RegisteredAt = time.Now()
	}
	data, err := json.Marshal(u)
	if err != nil {
		return domain.User{}, fmt.Errorf("encode user: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO users (id, register_no, email, has_attempted, registered_at, data) VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.RegisterNo, u.Email, u.HasAttempted, u.RegisteredAt, string(data),
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.User{}, domain.ErrUserExists
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.findUser(ctx, `SELECT data FROM users WHERE id=$1`, id)
}

func (s *Store) FindUserByRegisterNo(ctx context.Context, registerNo string) (domain.User, error) {
	return s.findUser(ctx, `SELECT data FROM users WHERE register_no=$1`, registerNo)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.findUser(ctx, `SELECT data FROM users WHERE email=$1`, email)
}

func (s *Store) findUser(ctx context.Context, query, arg string) (domain.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, err
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM users ORDER BY registered_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	out := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) SaveAssignment(ctx context.Context, userID string, a domain.Assignment) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		u, err := lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if u.HasAttempted {
			return domain.ErrAlreadyAttempted
		}
		a.Apply(&u)
		return writeUser(ctx, tx, u)
	})
}

func (s *Store) CompleteAttempt(ctx context.Context, userID string, result domain.AttemptResult, entry domain.LeaderboardEntry) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		u, err := lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if u.HasAttempted {
			return domain.ErrAlreadyAttempted
		}
		if !result.GradedAgainst(u) {
			return domain.ErrAssignmentChanged
		}
		result.Apply(&u)
		if err := writeUser(ctx, tx, u); err != nil {
			return err
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("encode leaderboard entry: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO leaderboard_entries (user_id, score, data) VALUES ($1, $2, $3)`,
			entry.UserID, entry.Score, string(data),
		); err != nil {
			return fmt.Errorf("insert leaderboard entry: %w", err)
		}
		return nil
	})
}

func (s *Store) ResetAttempt(ctx context.Context, userID string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		u, err := lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		domain.ResetAttempt(&u)
		if err := writeUser(ctx, tx, u); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM leaderboard_entries WHERE user_id=$1`, userID); err != nil {
			return fmt.Errorf("delete leaderboard entries: %w", err)
		}
		return nil
	})
}

func (s *Store) WipeAll(ctx context.Context) (int, error) {
	var n int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM leaderboard_entries`); err != nil {
			return fmt.Errorf("wipe leaderboard: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users`)
		if err != nil {
			return fmt.Errorf("wipe users: %w", err)
		}
		n = tag.RowsAffected()
		return nil
	})
	return int(n), err
}

func (s *Store) TopEntries(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT seq, data FROM leaderboard_entries ORDER BY score DESC, seq ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("top entries: %w", err)
	}
	defer rows.Close()
	out := make([]domain.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var (
			seq int64
			raw []byte
		)
		if err := rows.Scan(&seq, &raw); err != nil {
			return nil, err
		}
		var e domain.LeaderboardEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("unmarshal leaderboard entry: %w", err)
		}
		e.Seq = seq
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func lockUser(ctx context.Context, tx pgx.Tx, id string) (domain.User, error) {
	u, err := scanUser(tx.QueryRow(ctx, `SELECT data FROM users WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, err
}

func writeUser(ctx context.Context, tx pgx.Tx, u domain.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE users SET has_attempted=$2, data=$3 WHERE id=$1`,
		u.ID, u.HasAttempted, string(data),
	); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var (
		id  string
		raw []byte
	)
	if err := row.Scan(&id, &raw); err != nil {
		return domain.Question{}, err
	}
	var q domain.Question
	if err := json.Unmarshal(raw, &q); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal question: %w", err)
	}
	q.ID = id
	return q, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		return domain.User{}, err
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return domain.User{}, fmt.Errorf("unmarshal user: %w", err)
	}
	return u, nil
}
