package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"squad-ingest/internal/domain/squad"
)

type SquadRepository struct {
	mu    sync.RWMutex
	items map[string]squad.Squad

	UpsertHook func(item squad.Squad) error
}

func NewSquadRepository() *SquadRepository {
	return &SquadRepository{items: make(map[string]squad.Squad)}
}

func (r *SquadRepository) Upsert(_ context.Context, item squad.Squad) (squad.Squad, error) {
	if strings.TrimSpace(item.ID) == "" {
		item.ID = squad.BuildID(item.Provider, item.TeamKey)
	}
	if err := item.Validate(); err != nil {
		return squad.Squad{}, fmt.Errorf("validate squad: %w", err)
	}
	if r.UpsertHook != nil {
		if err := r.UpsertHook(item); err != nil {
			return squad.Squad{}, err
		}
	}

	item.PlayerIDs = append([]string(nil), item.PlayerIDs...)
	item.FetchedAt = time.Now().UTC()

	r.mu.Lock()
	r.items[item.ID] = item
	r.mu.Unlock()
	return item, nil
}

func (r *SquadRepository) GetByTeamKey(_ context.Context, provider, teamKey string) (squad.Squad, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[squad.BuildID(provider, teamKey)]
	return item, ok, nil
}

func (r *SquadRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
