package usecase

import "context"

// ExternalCountry carries the country fields the provider exposed.
// Fields are extracted independently; any of them may be nil.
type ExternalCountry struct {
	ID   *int64
	Name *string
	Code *string
}

func (c ExternalCountry) IsZero() bool {
	return c.ID == nil && c.Name == nil && c.Code == nil
}

// ExternalClub is the club a player currently belongs to, picked from
// the provider's membership history. CountryID is the provider-local
// id of the club's country, zero when unknown.
type ExternalClub struct {
	ID        *int64
	Name      *string
	CountryID int64
}

type ExternalTeam struct {
	ExternalID int64
	Name       string
	Short      string
	Type       string
	CountryID  int64
	Country    ExternalCountry
	ImageURL   string
}

type ExternalPlayer struct {
	ExternalID    int64
	Name          string
	Position      string
	NationalityID int64
	Nationality   ExternalCountry
	CurrentClub   ExternalClub
	ImageURL      string
}

// ExternalSquad is the provider roster for one team, player ids in
// provider order.
type ExternalSquad struct {
	TeamExternalID int64
	PlayerIDs      []int64
}

// RosterProvider is the read side of the sport data provider. Calls
// reports the number of HTTP requests issued so far, memoized lookups
// excluded.
type RosterProvider interface {
	FetchTeamSquad(ctx context.Context, teamID int64) (ExternalSquad, error)
	FetchTeam(ctx context.Context, teamID int64) (ExternalTeam, error)
	FetchPlayer(ctx context.Context, playerID int64) (ExternalPlayer, error)
	FetchCountry(ctx context.Context, countryID int64) (ExternalCountry, error)
	SearchTeam(ctx context.Context, name string) ([]ExternalTeam, error)
	Calls() int64
}
