package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"squad-ingest/internal/domain/country"
	"squad-ingest/internal/domain/player"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

type playerRow struct {
	ID              string    `db:"id"`
	Provider        string    `db:"provider"`
	ProviderID      string    `db:"provider_id"`
	Name            string    `db:"name"`
	Position        string    `db:"position"`
	NationalityID   *int64    `db:"nationality_id"`
	NationalityName *string   `db:"nationality_name"`
	NationalityCode *string   `db:"nationality_code"`
	CurrentClubID   *int64    `db:"current_club_id"`
	CurrentClubName *string   `db:"current_club_name"`
	ClubCountryID   *int64    `db:"club_country_id"`
	ClubCountryName *string   `db:"club_country_name"`
	ClubCountryCode *string   `db:"club_country_code"`
	ImageURL        string    `db:"image_url"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func playerRowFromDomain(item player.Player) playerRow {
	return playerRow{
		ID:              item.ID,
		Provider:        item.Provider,
		ProviderID:      item.ProviderID,
		Name:            item.Name,
		Position:        item.Position,
		NationalityID:   item.Nationality.ID,
		NationalityName: item.Nationality.Name,
		NationalityCode: item.Nationality.Code,
		CurrentClubID:   item.CurrentClub.ID,
		CurrentClubName: item.CurrentClub.Name,
		ClubCountryID:   item.ClubCountry.ID,
		ClubCountryName: item.ClubCountry.Name,
		ClubCountryCode: item.ClubCountry.Code,
		ImageURL:        item.ImageURL,
	}
}

func (r playerRow) toDomain() player.Player {
	return player.Player{
		ID:         r.ID,
		Provider:   r.Provider,
		ProviderID: r.ProviderID,
		Name:       r.Name,
		Position:   r.Position,
		Nationality: country.Ref{
			ID:   r.NationalityID,
			Name: r.NationalityName,
			Code: r.NationalityCode,
		},
		CurrentClub: player.ClubRef{
			ID:   r.CurrentClubID,
			Name: r.CurrentClubName,
		},
		ClubCountry: country.Ref{
			ID:   r.ClubCountryID,
			Name: r.ClubCountryName,
			Code: r.ClubCountryCode,
		},
		ImageURL:  r.ImageURL,
		UpdatedAt: r.UpdatedAt,
	}
}

const playerColumns = `id, provider, provider_id, name, position, nationality_id, nationality_name, nationality_code, current_club_id, current_club_name, club_country_id, club_country_name, club_country_code, image_url, updated_at`

const upsertPlayerQuery = `
INSERT INTO players (id, provider, provider_id, name, position, nationality_id, nationality_name, nationality_code, current_club_id, current_club_name, club_country_id, club_country_name, club_country_code, image_url, updated_at)
VALUES (:id, :provider, :provider_id, :name, :position, :nationality_id, :nationality_name, :nationality_code, :current_club_id, :current_club_name, :club_country_id, :club_country_name, :club_country_code, :image_url, NOW())
ON CONFLICT (id) DO UPDATE SET
    provider = EXCLUDED.provider,
    provider_id = EXCLUDED.provider_id,
    name = EXCLUDED.name,
    position = EXCLUDED.position,
    nationality_id = EXCLUDED.nationality_id,
    nationality_name = EXCLUDED.nationality_name,
    nationality_code = EXCLUDED.nationality_code,
    current_club_id = EXCLUDED.current_club_id,
    current_club_name = EXCLUDED.current_club_name,
    club_country_id = EXCLUDED.club_country_id,
    club_country_name = EXCLUDED.club_country_name,
    club_country_code = EXCLUDED.club_country_code,
    image_url = EXCLUDED.image_url,
    updated_at = NOW()
RETURNING ` + playerColumns

func (r *PlayerRepository) Upsert(ctx context.Context, item player.Player) (player.Player, error) {
	if strings.TrimSpace(item.ID) == "" {
		item.ID = player.BuildID(item.Provider, item.ProviderID)
	}
	if err := item.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("validate player: %w", err)
	}

	query, args, err := sqlx.Named(upsertPlayerQuery, playerRowFromDomain(item))
	if err != nil {
		return player.Player{}, fmt.Errorf("build player upsert query: %w", err)
	}
	query = r.db.Rebind(query)

	var row playerRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return player.Player{}, fmt.Errorf("upsert player id=%s: %w", item.ID, err)
	}
	return row.toDomain(), nil
}

func (r *PlayerRepository) GetByProviderID(ctx context.Context, provider, providerID string) (player.Player, bool, error) {
	query := r.db.Rebind(`SELECT ` + playerColumns + ` FROM players WHERE provider = ? AND provider_id = ?`)

	var row playerRow
	if err := r.db.GetContext(ctx, &row, query, provider, providerID); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player provider=%s provider_id=%s: %w", provider, providerID, err)
	}
	return row.toDomain(), true, nil
}
