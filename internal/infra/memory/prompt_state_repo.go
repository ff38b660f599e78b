package memory

import (
	"context"
	"sync"
	"time"

	"telegram-pinmsg-bot/internal/domain/model"
	"telegram-pinmsg-bot/internal/domain/ports/repository"
)

var _ repository.PromptStateRepository = (*PromptStateRepo)(nil)

type promptKey struct {
	chatID int64
	userID int64
}

// PromptStateRepo keeps outstanding prompts in memory. Expired entries are invisible
// to Take and are dropped by PurgeExpired.
type PromptStateRepo struct {
	mu     sync.Mutex
	states map[promptKey]*model.PromptState
	now    func() time.Time
}

func NewPromptStateRepo() *PromptStateRepo {
	return &PromptStateRepo{states: make(map[promptKey]*model.PromptState), now: time.Now}
}

func (r *PromptStateRepo) Save(ctx context.Context, state *model.PromptState) error {
	cp := *state
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[promptKey{state.ChatID, state.UserID}] = &cp
	return nil
}

func (r *PromptStateRepo) Take(ctx context.Context, chatID, userID int64) (*model.PromptState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := promptKey{chatID, userID}
	st, ok := r.states[k]
	if !ok {
		return nil, nil
	}
	delete(r.states, k)
	if st.Expired(r.now()) {
		return nil, nil
	}
	return st, nil
}

func (r *PromptStateRepo) Delete(ctx context.Context, chatID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, promptKey{chatID, userID})
	return nil
}

// PurgeExpired removes expired prompts and returns them.
func (r *PromptStateRepo) PurgeExpired(ctx context.Context) ([]*model.PromptState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	var out []*model.PromptState
	for k, st := range r.states {
		if st.Expired(now) {
			out = append(out, st)
			delete(r.states, k)
		}
	}
	return out, nil
}

// Len returns the number of stored prompts, expired ones included.
func (r *PromptStateRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}
