package player

import (
	"context"
	"fmt"
	"strings"
	"time"

	"squad-ingest/internal/domain/country"
)

const (
	PositionGoalkeeper = "GK"
	PositionDefender   = "DEF"
	PositionMidfielder = "MID"
	PositionForward    = "FWD"
	PositionUnknown    = "UNK"
)

// UnknownName marks players whose name could not be resolved from any
// provider field.
const UnknownName = "Unknown"

// ClubRef is a denormalized reference to the player's current club.
// Nil fields mean the provider had no usable value.
type ClubRef struct {
	ID   *int64
	Name *string
}

func (r ClubRef) IsZero() bool {
	return r.ID == nil && r.Name == nil
}

// Player is a provider-scoped player document. ID is the canonical
// identifier "player:<provider>:<provider local id>".
type Player struct {
	ID          string
	Provider    string
	ProviderID  string
	Name        string
	Position    string
	Nationality country.Ref
	CurrentClub ClubRef
	ClubCountry country.Ref
	ImageURL    string
	UpdatedAt   time.Time
}

func BuildID(provider, providerID string) string {
	return fmt.Sprintf("player:%s:%s", provider, providerID)
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.Provider) == "" {
		return fmt.Errorf("provider is required")
	}
	if strings.TrimSpace(p.ProviderID) == "" {
		return fmt.Errorf("provider id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	return nil
}

type Repository interface {
	Upsert(ctx context.Context, item Player) (Player, error)
	GetByProviderID(ctx context.Context, provider, providerID string) (Player, bool, error)
}
