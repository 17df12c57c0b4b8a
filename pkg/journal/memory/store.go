package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gtdvccc/raylp/pkg/journal"
)

// Store is an in-memory implementation of journal.Store.
type Store struct {
	mu   sync.RWMutex
	data map[string]*journal.Submission // keyed by signature
	now  func() time.Time
}

// NewStore creates a new in-memory journal.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*journal.Submission),
		now:  time.Now,
	}
}

// Record adds a new submission. Returns ErrDuplicateKey if exists.
func (s *Store) Record(_ context.Context, sub *journal.Submission) error {
	if err := journal.Validate(sub); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sub.Signature]; exists {
		return journal.ErrDuplicateKey
	}

	copy := *sub
	if copy.Status == "" {
		copy.Status = journal.StatusPending
	}
	now := s.now()
	copy.CreatedAt = now
	copy.UpdatedAt = now
	s.data[sub.Signature] = &copy
	return nil
}

func (s *Store) UpdateStatus(_ context.Context, signature string, status journal.Status, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.data[signature]
	if !ok {
		return journal.ErrNotFound
	}
	sub.Status = status
	sub.Error = detail
	sub.UpdatedAt = s.now()
	return nil
}

func (s *Store) Get(_ context.Context, signature string) (*journal.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.data[signature]
	if !ok {
		return nil, journal.ErrNotFound
	}
	copy := *sub
	return &copy, nil
}

func (s *Store) FindPending(ctx context.Context, protocol, kind, pool string) (*journal.Submission, error) {
	pending, err := s.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	for i := len(pending) - 1; i >= 0; i-- {
		sub := pending[i]
		if sub.Protocol == protocol && sub.Kind == kind && sub.Pool == pool {
			return sub, nil
		}
	}
	return nil, journal.ErrNotFound
}

func (s *Store) ListPending(_ context.Context) ([]*journal.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*journal.Submission
	for _, sub := range s.data {
		if sub.Status == journal.StatusPending {
			copy := *sub
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Signature < out[j].Signature
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

var _ journal.Store = (*Store)(nil)
