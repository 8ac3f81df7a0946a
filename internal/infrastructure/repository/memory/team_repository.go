// Package memory holds in-process repository implementations that
// mirror the Postgres contract. They back the orchestrator tests and
// small local runs without a database.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"squad-ingest/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	items map[string]team.Team

	// UpsertHook, when set, runs before every write; returning an
	// error simulates a store failure.
	UpsertHook func(item team.Team) error
}

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{items: make(map[string]team.Team)}
}

func (r *TeamRepository) Upsert(_ context.Context, item team.Team) (team.Team, error) {
	if strings.TrimSpace(item.ID) == "" {
		item.ID = team.BuildID(item.Provider, item.ProviderID)
	}
	if err := item.Validate(); err != nil {
		return team.Team{}, fmt.Errorf("validate team: %w", err)
	}
	if r.UpsertHook != nil {
		if err := r.UpsertHook(item); err != nil {
			return team.Team{}, err
		}
	}

	item.UpdatedAt = time.Now().UTC()

	r.mu.Lock()
	r.items[item.ID] = item
	r.mu.Unlock()
	return item, nil
}

func (r *TeamRepository) GetByProviderID(_ context.Context, provider, providerID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[team.BuildID(provider, providerID)]
	return item, ok, nil
}

func (r *TeamRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
