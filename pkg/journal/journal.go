package journal

import (
	"context"
	"errors"
	"time"
)

// Store errors.
var (
	// ErrNotFound is returned when a requested submission does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a signature is recorded twice.
	ErrDuplicateKey = errors.New("duplicate key: submission already recorded")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)

// Status is the lifecycle state of a submitted transaction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired"
)

// Terminal reports whether no further status change is possible.
func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed || s == StatusExpired
}

// Submission is one signed transaction, recorded before it is sent.
type Submission struct {
	Signature            string
	Protocol             string
	Kind                 string
	Pool                 string
	Blockhash            string
	LastValidBlockHeight uint64
	Status               Status
	Error                string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Validate checks the fields every store requires.
func Validate(s *Submission) error {
	if s == nil || s.Signature == "" || s.Pool == "" || s.Kind == "" {
		return ErrInvalidInput
	}
	return nil
}

// Store persists submissions.
type Store interface {
	// Record inserts a new submission. Returns ErrDuplicateKey if the signature exists.
	Record(ctx context.Context, s *Submission) error

	// UpdateStatus moves a submission to status, storing detail as the error text.
	// Returns ErrNotFound if the signature is unknown.
	UpdateStatus(ctx context.Context, signature string, status Status, detail string) error

	// Get returns a submission by signature. Returns ErrNotFound if not exists.
	Get(ctx context.Context, signature string) (*Submission, error)

	// FindPending returns the most recent pending submission for the
	// (protocol, kind, pool) triple. Returns ErrNotFound if there is none.
	FindPending(ctx context.Context, protocol, kind, pool string) (*Submission, error)

	// ListPending returns every pending submission, oldest first.
	ListPending(ctx context.Context) ([]*Submission, error)
}
