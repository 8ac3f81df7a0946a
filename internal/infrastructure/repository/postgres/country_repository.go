package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"squad-ingest/internal/domain/country"
)

type CountryRepository struct {
	db *sqlx.DB
}

func NewCountryRepository(db *sqlx.DB) *CountryRepository {
	return &CountryRepository{db: db}
}

type countryRow struct {
	ID         string    `db:"id"`
	Provider   string    `db:"provider"`
	ProviderID string    `db:"provider_id"`
	Name       *string   `db:"name"`
	Code       *string   `db:"code"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func countryRowFromDomain(item country.Country) countryRow {
	return countryRow{
		ID:         item.ID,
		Provider:   item.Provider,
		ProviderID: item.ProviderID,
		Name:       item.Name,
		Code:       item.Code,
	}
}

func (r countryRow) toDomain() country.Country {
	return country.Country{
		ID:         r.ID,
		Provider:   r.Provider,
		ProviderID: r.ProviderID,
		Name:       r.Name,
		Code:       r.Code,
		UpdatedAt:  r.UpdatedAt,
	}
}

const countryColumns = `id, provider, provider_id, name, code, updated_at`

const upsertCountryQuery = `
INSERT INTO countries (id, provider, provider_id, name, code, updated_at)
VALUES (:id, :provider, :provider_id, :name, :code, NOW())
ON CONFLICT (id) DO UPDATE SET
    provider = EXCLUDED.provider,
    provider_id = EXCLUDED.provider_id,
    name = EXCLUDED.name,
    code = EXCLUDED.code,
    updated_at = NOW()
RETURNING ` + countryColumns

func (r *CountryRepository) Upsert(ctx context.Context, item country.Country) (country.Country, error) {
	if strings.TrimSpace(item.ID) == "" {
		item.ID = country.BuildID(item.Provider, item.ProviderID)
	}
	if err := item.Validate(); err != nil {
		return country.Country{}, fmt.Errorf("validate country: %w", err)
	}

	query, args, err := sqlx.Named(upsertCountryQuery, countryRowFromDomain(item))
	if err != nil {
		return country.Country{}, fmt.Errorf("build country upsert query: %w", err)
	}
	query = r.db.Rebind(query)

	var row countryRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return country.Country{}, fmt.Errorf("upsert country id=%s: %w", item.ID, err)
	}
	return row.toDomain(), nil
}

func (r *CountryRepository) GetByProviderID(ctx context.Context, provider, providerID string) (country.Country, bool, error) {
	query := r.db.Rebind(`SELECT ` + countryColumns + ` FROM countries WHERE provider = ? AND provider_id = ?`)

	var row countryRow
	if err := r.db.GetContext(ctx, &row, query, provider, providerID); err != nil {
		if isNotFound(err) {
			return country.Country{}, false, nil
		}
		return country.Country{}, false, fmt.Errorf("get country provider=%s provider_id=%s: %w", provider, providerID, err)
	}
	return row.toDomain(), true, nil
}
