package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"squad-ingest/internal/domain/squad"
)

type SquadRepository struct {
	db *sqlx.DB
}

func NewSquadRepository(db *sqlx.DB) *SquadRepository {
	return &SquadRepository{db: db}
}

type squadRow struct {
	ID        string         `db:"id"`
	Provider  string         `db:"provider"`
	TeamKey   string         `db:"team_key"`
	TeamName  string         `db:"team_name"`
	PlayerIDs pq.StringArray `db:"player_ids"`
	FetchedAt time.Time      `db:"fetched_at"`
}

func squadRowFromDomain(item squad.Squad) squadRow {
	ids := item.PlayerIDs
	if ids == nil {
		ids = []string{}
	}
	return squadRow{
		ID:        item.ID,
		Provider:  item.Provider,
		TeamKey:   item.TeamKey,
		TeamName:  item.TeamName,
		PlayerIDs: pq.StringArray(ids),
	}
}

func (r squadRow) toDomain() squad.Squad {
	return squad.Squad{
		ID:        r.ID,
		Provider:  r.Provider,
		TeamKey:   r.TeamKey,
		TeamName:  r.TeamName,
		PlayerIDs: append([]string(nil), r.PlayerIDs...),
		FetchedAt: r.FetchedAt,
	}
}

const squadColumns = `id, provider, team_key, team_name, player_ids, fetched_at`

const upsertSquadQuery = `
INSERT INTO squads (id, provider, team_key, team_name, player_ids, fetched_at)
VALUES (:id, :provider, :team_key, :team_name, :player_ids, NOW())
ON CONFLICT (id) DO UPDATE SET
    provider = EXCLUDED.provider,
    team_key = EXCLUDED.team_key,
    team_name = EXCLUDED.team_name,
    player_ids = EXCLUDED.player_ids,
    fetched_at = NOW()
RETURNING ` + squadColumns

// Upsert replaces the whole roster list; re-ingestion of the same
// team never accumulates players.
func (r *SquadRepository) Upsert(ctx context.Context, item squad.Squad) (squad.Squad, error) {
	if strings.TrimSpace(item.ID) == "" {
		item.ID = squad.BuildID(item.Provider, item.TeamKey)
	}
	if err := item.Validate(); err != nil {
		return squad.Squad{}, fmt.Errorf("validate squad: %w", err)
	}

	query, args, err := sqlx.Named(upsertSquadQuery, squadRowFromDomain(item))
	if err != nil {
		return squad.Squad{}, fmt.Errorf("build squad upsert query: %w", err)
	}
	query = r.db.Rebind(query)

	var row squadRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return squad.Squad{}, fmt.Errorf("upsert squad id=%s: %w", item.ID, err)
	}
	return row.toDomain(), nil
}

func (r *SquadRepository) GetByTeamKey(ctx context.Context, provider, teamKey string) (squad.Squad, bool, error) {
	query := r.db.Rebind(`SELECT ` + squadColumns + ` FROM squads WHERE provider = ? AND team_key = ?`)

	var row squadRow
	if err := r.db.GetContext(ctx, &row, query, provider, teamKey); err != nil {
		if isNotFound(err) {
			return squad.Squad{}, false, nil
		}
		return squad.Squad{}, false, fmt.Errorf("get squad provider=%s team_key=%s: %w", provider, teamKey, err)
	}
	return row.toDomain(), true, nil
}
