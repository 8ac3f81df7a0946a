package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"squad-ingest/internal/domain/player"
)

type PlayerRepository struct {
	mu    sync.RWMutex
	items map[string]player.Player

	UpsertHook func(item player.Player) error
}

func NewPlayerRepository() *PlayerRepository {
	return &PlayerRepository{items: make(map[string]player.Player)}
}

func (r *PlayerRepository) Upsert(_ context.Context, item player.Player) (player.Player, error) {
	if strings.TrimSpace(item.ID) == "" {
		item.ID = player.BuildID(item.Provider, item.ProviderID)
	}
	if err := item.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("validate player: %w", err)
	}
	if r.UpsertHook != nil {
		if err := r.UpsertHook(item); err != nil {
			return player.Player{}, err
		}
	}

	item.UpdatedAt = time.Now().UTC()

	r.mu.Lock()
	r.items[item.ID] = item
	r.mu.Unlock()
	return item, nil
}

func (r *PlayerRepository) GetByProviderID(_ context.Context, provider, providerID string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[player.BuildID(provider, providerID)]
	return item, ok, nil
}

func (r *PlayerRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
