package team

import (
	"context"
	"fmt"
	"strings"
	"time"

	"squad-ingest/internal/domain/country"
)

// Team is a provider-scoped team document. ID is the canonical
// identifier "team:<provider>:<provider local id>".
type Team struct {
	ID         string
	Provider   string
	ProviderID string
	Name       string
	Type       string
	Country    country.Ref
	ImageURL   string
	UpdatedAt  time.Time
}

func BuildID(provider, providerID string) string {
	return fmt.Sprintf("team:%s:%s", provider, providerID)
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.Provider) == "" {
		return fmt.Errorf("provider is required")
	}
	if strings.TrimSpace(t.ProviderID) == "" {
		return fmt.Errorf("provider id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}
	return nil
}

type Repository interface {
	Upsert(ctx context.Context, item Team) (Team, error)
	GetByProviderID(ctx context.Context, provider, providerID string) (Team, bool, error)
}
