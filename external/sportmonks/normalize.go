package sportmonks

import (
	"sort"
	"strings"
	"time"

	"squad-ingest/internal/usecase"
)

const unknownNameMarker = "Unknown"

const nationalTeamType = "national"

// resolveDisplayName picks a player name by priority: explicit display
// name, then common name, then given+family names joined. Internal
// whitespace collapses to single spaces. Never returns an empty
// string; the unknown marker stands in when no field is usable.
func resolveDisplayName(displayName, commonName, firstName, lastName string) string {
	for _, candidate := range []string{
		displayName,
		commonName,
		firstName + " " + lastName,
	} {
		if collapsed := collapseWhitespace(candidate); collapsed != "" {
			return collapsed
		}
	}
	return unknownNameMarker
}

func collapseWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// mapCountryRef extracts `{id, name, code}` from any country-like
// payload. Each field resolves independently so partial data still
// yields a partial reference.
func mapCountryRef(source countryPayload) usecase.ExternalCountry {
	out := usecase.ExternalCountry{}
	if source.ID > 0 {
		id := source.ID
		out.ID = &id
	}
	if name := firstNonEmpty(source.OfficialName, source.Name); name != "" {
		out.Name = &name
	}
	if code := firstNonEmpty(source.ISO3, source.ISO2, source.FifaName); code != "" {
		out.Code = &code
	}
	return out
}

type rankedMembership struct {
	club   usecase.ExternalClub
	active bool
	start  time.Time
}

// resolveCurrentClub picks the membership most likely active now:
// club-type memberships only, active ones (no end date or a future
// end) ahead of ended ones, then start date descending. The sort is
// stable, so identical active start dates keep provider order.
func resolveCurrentClub(memberships []membershipPayload, now time.Time) (usecase.ExternalClub, bool) {
	ranked := make([]rankedMembership, 0, len(memberships))
	for _, item := range memberships {
		if !membershipIsClub(item) {
			continue
		}
		club := mapMembershipClub(item)
		if club.ID == nil && club.Name == nil {
			continue
		}

		row := rankedMembership{club: club, active: true}
		if end := parseProviderDate(item.End); end != nil && !end.After(now) {
			row.active = false
		}
		if start := parseProviderDate(item.Start); start != nil {
			row.start = *start
		}
		ranked = append(ranked, row)
	}

	if len(ranked) == 0 {
		return usecase.ExternalClub{}, false
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].active != ranked[j].active {
			return ranked[i].active
		}
		if ranked[i].start.Equal(ranked[j].start) {
			return false
		}
		return ranked[i].start.After(ranked[j].start)
	})

	return ranked[0].club, true
}

// Only explicitly national-team memberships are excluded; entries with
// no type information count as club affiliations.
func membershipIsClub(item membershipPayload) bool {
	if !item.Team.Set {
		return true
	}
	return !strings.EqualFold(strings.TrimSpace(item.Team.Data.Type), nationalTeamType)
}

func mapMembershipClub(item membershipPayload) usecase.ExternalClub {
	out := usecase.ExternalClub{}

	teamID := item.TeamID
	if teamID <= 0 && item.Team.Set {
		teamID = item.Team.Data.ID
	}
	if teamID > 0 {
		id := teamID
		out.ID = &id
	}

	if item.Team.Set {
		if name := strings.TrimSpace(item.Team.Data.Name); name != "" {
			out.Name = &name
		}
		out.CountryID = item.Team.Data.CountryID
	}
	return out
}

func mapPlayerPayload(source playerPayload, now time.Time) usecase.ExternalPlayer {
	out := usecase.ExternalPlayer{
		ExternalID: source.ID,
		Name: resolveDisplayName(
			source.DisplayName,
			source.CommonName,
			source.FirstName,
			source.LastName,
		),
		Position: firstNonEmpty(
			positionCodeFromID(source.PositionID),
			positionCodeFromID(source.DetailedPositionID),
			normalizePositionName(positionNameOf(source)),
		),
		NationalityID: source.NationalityID,
		ImageURL:      strings.TrimSpace(source.ImagePath),
	}
	if source.Nationality.Set {
		out.Nationality = mapCountryRef(source.Nationality.Data)
	}
	if club, ok := resolveCurrentClub(source.Teams, now); ok {
		out.CurrentClub = club
	}
	return out
}

func mapTeamPayload(source teamPayload) usecase.ExternalTeam {
	out := usecase.ExternalTeam{
		ExternalID: source.ID,
		Name:       strings.TrimSpace(source.Name),
		Short:      strings.TrimSpace(source.ShortCode),
		Type:       strings.TrimSpace(source.Type),
		CountryID:  source.CountryID,
		ImageURL:   strings.TrimSpace(source.ImagePath),
	}
	if source.Country.Set {
		out.Country = mapCountryRef(source.Country.Data)
	}
	return out
}

func positionNameOf(source playerPayload) string {
	if !source.Position.Set {
		return ""
	}
	return source.Position.Data.Name
}

func positionCodeFromID(value int64) string {
	switch value {
	case 24:
		return "GK"
	case 25:
		return "DEF"
	case 26:
		return "MID"
	case 27:
		return "FWD"
	default:
		return ""
	}
}

func normalizePositionName(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "goalkeeper", "keeper", "goalie", "gk":
		return "GK"
	case "defender", "def", "centre-back", "center-back", "full-back", "wing-back":
		return "DEF"
	case "midfielder", "midfielders", "mid", "winger", "attacking midfielder", "defensive midfielder":
		return "MID"
	case "forward", "attacker", "striker", "fwd":
		return "FWD"
	default:
		return ""
	}
}

func parseProviderDate(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	layouts := []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			v := parsed.UTC()
			return &v
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, item := range values {
		if strings.TrimSpace(item) != "" {
			return strings.TrimSpace(item)
		}
	}
	return ""
}
