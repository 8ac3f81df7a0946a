package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"squad-ingest/internal/domain/country"
)

type CountryRepository struct {
	mu    sync.RWMutex
	items map[string]country.Country

	UpsertHook func(item country.Country) error
}

func NewCountryRepository() *CountryRepository {
	return &CountryRepository{items: make(map[string]country.Country)}
}

func (r *CountryRepository) Upsert(_ context.Context, item country.Country) (country.Country, error) {
	if strings.TrimSpace(item.ID) == "" {
		item.ID = country.BuildID(item.Provider, item.ProviderID)
	}
	if err := item.Validate(); err != nil {
		return country.Country{}, fmt.Errorf("validate country: %w", err)
	}
	if r.UpsertHook != nil {
		if err := r.UpsertHook(item); err != nil {
			return country.Country{}, err
		}
	}

	item.UpdatedAt = time.Now().UTC()

	r.mu.Lock()
	r.items[item.ID] = item
	r.mu.Unlock()
	return item, nil
}

func (r *CountryRepository) GetByProviderID(_ context.Context, provider, providerID string) (country.Country, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[country.BuildID(provider, providerID)]
	return item, ok, nil
}

func (r *CountryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
