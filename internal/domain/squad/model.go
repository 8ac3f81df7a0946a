package squad

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Squad is the roster document for one team. PlayerIDs holds canonical
// player identifiers in provider order, already capped by the caller.
// ID is "squad:<provider>:<team key>".
type Squad struct {
	ID        string
	Provider  string
	TeamKey   string
	TeamName  string
	PlayerIDs []string
	FetchedAt time.Time
}

func BuildID(provider, teamKey string) string {
	return fmt.Sprintf("squad:%s:%s", provider, teamKey)
}

func (s Squad) Validate() error {
	if strings.TrimSpace(s.Provider) == "" {
		return fmt.Errorf("provider is required")
	}
	if strings.TrimSpace(s.TeamKey) == "" {
		return fmt.Errorf("team key is required")
	}
	return nil
}

type Repository interface {
	Upsert(ctx context.Context, item Squad) (Squad, error)
	GetByTeamKey(ctx context.Context, provider, teamKey string) (Squad, bool, error)
}
