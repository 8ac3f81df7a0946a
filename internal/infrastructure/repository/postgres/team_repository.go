package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"squad-ingest/internal/domain/country"
	"squad-ingest/internal/domain/team"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

type teamRow struct {
	ID             string    `db:"id"`
	Provider       string    `db:"provider"`
	ProviderID     string    `db:"provider_id"`
	Name           string    `db:"name"`
	Type           string    `db:"type"`
	CountryRefID   *int64    `db:"country_ref_id"`
	CountryRefName *string   `db:"country_ref_name"`
	CountryRefCode *string   `db:"country_ref_code"`
	ImageURL       string    `db:"image_url"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func teamRowFromDomain(item team.Team) teamRow {
	return teamRow{
		ID:             item.ID,
		Provider:       item.Provider,
		ProviderID:     item.ProviderID,
		Name:           item.Name,
		Type:           item.Type,
		CountryRefID:   item.Country.ID,
		CountryRefName: item.Country.Name,
		CountryRefCode: item.Country.Code,
		ImageURL:       item.ImageURL,
	}
}

func (r teamRow) toDomain() team.Team {
	return team.Team{
		ID:         r.ID,
		Provider:   r.Provider,
		ProviderID: r.ProviderID,
		Name:       r.Name,
		Type:       r.Type,
		Country: country.Ref{
			ID:   r.CountryRefID,
			Name: r.CountryRefName,
			Code: r.CountryRefCode,
		},
		ImageURL:  r.ImageURL,
		UpdatedAt: r.UpdatedAt,
	}
}

const teamColumns = `id, provider, provider_id, name, type, country_ref_id, country_ref_name, country_ref_code, image_url, updated_at`

const upsertTeamQuery = `
INSERT INTO teams (id, provider, provider_id, name, type, country_ref_id, country_ref_name, country_ref_code, image_url, updated_at)
VALUES (:id, :provider, :provider_id, :name, :type, :country_ref_id, :country_ref_name, :country_ref_code, :image_url, NOW())
ON CONFLICT (id) DO UPDATE SET
    provider = EXCLUDED.provider,
    provider_id = EXCLUDED.provider_id,
    name = EXCLUDED.name,
    type = EXCLUDED.type,
    country_ref_id = EXCLUDED.country_ref_id,
    country_ref_name = EXCLUDED.country_ref_name,
    country_ref_code = EXCLUDED.country_ref_code,
    image_url = EXCLUDED.image_url,
    updated_at = NOW()
RETURNING ` + teamColumns

// Upsert fully replaces the stored document; partial updates never
// happen by design of the ingestion model.
func (r *TeamRepository) Upsert(ctx context.Context, item team.Team) (team.Team, error) {
	if strings.TrimSpace(item.ID) == "" {
		item.ID = team.BuildID(item.Provider, item.ProviderID)
	}
	if err := item.Validate(); err != nil {
		return team.Team{}, fmt.Errorf("validate team: %w", err)
	}

	query, args, err := sqlx.Named(upsertTeamQuery, teamRowFromDomain(item))
	if err != nil {
		return team.Team{}, fmt.Errorf("build team upsert query: %w", err)
	}
	query = r.db.Rebind(query)

	var row teamRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return team.Team{}, fmt.Errorf("upsert team id=%s: %w", item.ID, err)
	}
	return row.toDomain(), nil
}

func (r *TeamRepository) GetByProviderID(ctx context.Context, provider, providerID string) (team.Team, bool, error) {
	query := r.db.Rebind(`SELECT ` + teamColumns + ` FROM teams WHERE provider = ? AND provider_id = ?`)

	var row teamRow
	if err := r.db.GetContext(ctx, &row, query, provider, providerID); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team provider=%s provider_id=%s: %w", provider, providerID, err)
	}
	return row.toDomain(), true, nil
}
