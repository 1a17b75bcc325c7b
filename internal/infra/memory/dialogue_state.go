package memory

import (
	"context"
	"sync"
	"time"

	"vacancy-export-bot/internal/domain"
	"vacancy-export-bot/internal/domain/ports/repository"
)

var _ repository.DialogueStateRepository = (*DialogueStateRepo)(nil)

type session struct {
	state     repository.DialogueState
	expiresAt time.Time
}

// DialogueStateRepo keeps dialogue sessions in process memory.
// Sessions are lost on restart. Like the Redis store, a session expires ttl
// after its last write; expired entries are dropped when read.
type DialogueStateRepo struct {
	mu     sync.RWMutex
	states map[int64]session
	ttl    time.Duration
	now    func() time.Time
}

// NewDialogueStateRepo returns a store whose sessions live for ttl.
// A non-positive ttl keeps sessions until they are cleared.
func NewDialogueStateRepo(ttl time.Duration) *DialogueStateRepo {
	return &DialogueStateRepo{
		states: make(map[int64]session),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (r *DialogueStateRepo) SetState(ctx context.Context, tgID int64, state *repository.DialogueState) error {
	if state == nil {
		return domain.ErrInvalidArgument
	}
	s := session{state: *state}
	if r.ttl > 0 {
		s.expiresAt = r.now().Add(r.ttl)
	}
	r.mu.Lock()
	r.states[tgID] = s
	r.mu.Unlock()
	return nil
}

func (r *DialogueStateRepo) GetState(ctx context.Context, tgID int64) (*repository.DialogueState, error) {
	r.mu.RLock()
	s, ok := r.states[tgID]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	if r.expired(s) {
		r.mu.Lock()
		// a concurrent SetState may have refreshed the entry
		if cur, ok := r.states[tgID]; ok && r.expired(cur) {
			delete(r.states, tgID)
		}
		r.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	st := s.state
	return &st, nil
}

func (r *DialogueStateRepo) ClearState(ctx context.Context, tgID int64) error {
	r.mu.Lock()
	delete(r.states, tgID)
	r.mu.Unlock()
	return nil
}

// Len is the number of stored sessions, expired ones included until read.
func (r *DialogueStateRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.states)
}

func (r *DialogueStateRepo) expired(s session) bool {
	return !s.expiresAt.IsZero() && !r.now().Before(s.expiresAt)
}
