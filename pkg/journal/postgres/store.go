package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/gtdvccc/raylp/pkg/journal"
)

// Store is a PostgreSQL implementation of journal.Store backed by the
// submissions table.
type Store struct {
	pool *Pool
}

// NewStore creates a new PostgreSQL journal.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

const submissionColumns = `signature, protocol, kind, pool, blockhash, last_valid_block_height,
	status, error, created_at, updated_at`

func (s *Store) Record(ctx context.Context, sub *journal.Submission) error {
	if err := journal.Validate(sub); err != nil {
		return err
	}
	status := sub.Status
	if status == "" {
		status = journal.StatusPending
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO submissions (
			signature, protocol, kind, pool, blockhash, last_valid_block_height, status, error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		sub.Signature,
		sub.Protocol,
		sub.Kind,
		sub.Pool,
		sub.Blockhash,
		int64(sub.LastValidBlockHeight),
		string(status),
		sub.Error,
	)
	if isDuplicateKeyError(err) {
		return journal.ErrDuplicateKey
	}
	return err
}

func (s *Store) UpdateStatus(ctx context.Context, signature string, status journal.Status, detail string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE submissions
		SET status = $2, error = $3, updated_at = NOW()
		WHERE signature = $1
	`, signature, string(status), detail)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return journal.ErrNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, signature string) (*journal.Submission, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE signature = $1`, signature)
	sub, err := scanSubmission(row)
	if isNotFoundError(err) {
		return nil, journal.ErrNotFound
	}
	return sub, err
}

func (s *Store) FindPending(ctx context.Context, protocol, kind, pool string) (*journal.Submission, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+submissionColumns+`
		FROM submissions
		WHERE status = 'pending' AND protocol = $1 AND kind = $2 AND pool = $3
		ORDER BY created_at DESC
		LIMIT 1
	`, protocol, kind, pool)
	sub, err := scanSubmission(row)
	if isNotFoundError(err) {
		return nil, journal.ErrNotFound
	}
	return sub, err
}

func (s *Store) ListPending(ctx context.Context) ([]*journal.Submission, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+submissionColumns+`
		FROM submissions
		WHERE status = 'pending'
		ORDER BY created_at ASC, signature ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*journal.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func scanSubmission(row pgx.Row) (*journal.Submission, error) {
	var (
		sub    journal.Submission
		height int64
		status string
	)
	err := row.Scan(
		&sub.Signature,
		&sub.Protocol,
		&sub.Kind,
		&sub.Pool,
		&sub.Blockhash,
		&height,
		&status,
		&sub.Error,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	sub.LastValidBlockHeight = uint64(height)
	sub.Status = journal.Status(status)
	return &sub, nil
}

var _ journal.Store = (*Store)(nil)
