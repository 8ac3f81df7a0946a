package country

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Ref is a denormalized country reference embedded in team and player
// documents. Any field may be absent independently of the others.
type Ref struct {
	ID   *int64
	Name *string
	Code *string
}

func (r Ref) IsZero() bool {
	return r.ID == nil && r.Name == nil && r.Code == nil
}

// Country is a cached provider country document.
type Country struct {
	ID         string
	Provider   string
	ProviderID string
	Name       *string
	Code       *string
	UpdatedAt  time.Time
}

func BuildID(provider, providerID string) string {
	return fmt.Sprintf("country:%s:%s", provider, providerID)
}

func (c Country) Validate() error {
	if strings.TrimSpace(c.Provider) == "" {
		return fmt.Errorf("provider is required")
	}
	if strings.TrimSpace(c.ProviderID) == "" {
		return fmt.Errorf("provider id is required")
	}
	return nil
}

type Repository interface {
	Upsert(ctx context.Context, item Country) (Country, error)
	GetByProviderID(ctx context.Context, provider, providerID string) (Country, bool, error)
}
