package state

import (
	"context"
	"sync"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/roster"
)

// MemoryRepository keeps the team state in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	state *roster.TeamState
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Load(ctx context.Context) (roster.TeamState, error) {
	if err := ctx.Err(); err != nil {
		return roster.TeamState{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state == nil {
		return roster.FirstRoundState(), nil
	}
	return r.state.Clone(), nil
}

func (r *MemoryRepository) Save(ctx context.Context, s roster.TeamState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := s.Clone()
	r.mu.Lock()
	r.state = &c
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.state = nil
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
