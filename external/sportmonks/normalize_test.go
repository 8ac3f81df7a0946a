package sportmonks

import (
	"testing"
	"time"
)

func TestResolveDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		display string
		common  string
		first   string
		last    string
		want    string
	}{
		{name: "display name wins", display: "L. Messi", common: "Lionel Messi", first: "Lionel", last: "Messi", want: "L. Messi"},
		{name: "common name next", display: "", common: "Lionel Messi", first: "Lionel", last: "Messi", want: "Lionel Messi"},
		{name: "composite fallback", display: "", common: "", first: "Lionel", last: "Messi", want: "Lionel Messi"},
		{name: "whitespace collapses", display: "  L.   Messi ", common: "", first: "", last: "", want: "L. Messi"},
		{name: "blank display skipped", display: "   ", common: "Leo", first: "", last: "", want: "Leo"},
		{name: "first name only", display: "", common: "", first: "Ronaldinho", last: "", want: "Ronaldinho"},
		{name: "nothing usable", display: "", common: "", first: " ", last: "", want: "Unknown"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := resolveDisplayName(tc.display, tc.common, tc.first, tc.last)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMapCountryRef(t *testing.T) {
	t.Parallel()

	t.Run("official name and iso3 preferred", func(t *testing.T) {
		t.Parallel()
		got := mapCountryRef(countryPayload{
			ID:           320,
			Name:         "Spain",
			OfficialName: "Kingdom of Spain",
			ISO2:         "ES",
			ISO3:         "ESP",
			FifaName:     "ESP",
		})
		if got.ID == nil || *got.ID != 320 {
			t.Fatalf("unexpected id: %+v", got)
		}
		if got.Name == nil || *got.Name != "Kingdom of Spain" {
			t.Fatalf("unexpected name: %+v", got)
		}
		if got.Code == nil || *got.Code != "ESP" {
			t.Fatalf("unexpected code: %+v", got)
		}
	})

	t.Run("fields resolve independently", func(t *testing.T) {
		t.Parallel()
		got := mapCountryRef(countryPayload{Name: "England"})
		if got.ID != nil {
			t.Fatalf("expected nil id, got %d", *got.ID)
		}
		if got.Name == nil || *got.Name != "England" {
			t.Fatalf("unexpected name: %+v", got)
		}
		if got.Code != nil {
			t.Fatalf("expected nil code, got %q", *got.Code)
		}
	})

	t.Run("iso2 then fifa fallback", func(t *testing.T) {
		t.Parallel()
		got := mapCountryRef(countryPayload{ID: 17, ISO2: "BR"})
		if got.Code == nil || *got.Code != "BR" {
			t.Fatalf("unexpected code: %+v", got)
		}

		got = mapCountryRef(countryPayload{ID: 17, FifaName: "BRA"})
		if got.Code == nil || *got.Code != "BRA" {
			t.Fatalf("unexpected code: %+v", got)
		}
	})

	t.Run("empty payload is zero ref", func(t *testing.T) {
		t.Parallel()
		got := mapCountryRef(countryPayload{})
		if !got.IsZero() {
			t.Fatalf("expected zero ref, got %+v", got)
		}
	})
}

func clubMembership(teamID int64, name, teamType, start, end string) membershipPayload {
	return membershipPayload{
		TeamID: teamID,
		Start:  start,
		End:    end,
		Team: relation[teamPayload]{
			Data: teamPayload{ID: teamID, Name: name, Type: teamType},
			Set:  true,
		},
	}
}

func TestResolveCurrentClub(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	t.Run("active membership beats ended regardless of order", func(t *testing.T) {
		t.Parallel()
		memberships := []membershipPayload{
			clubMembership(1, "Old Club", "domestic", "2024-07-01", "2025-06-30"),
			clubMembership(2, "Current Club", "domestic", "2023-07-01", ""),
		}
		club, ok := resolveCurrentClub(memberships, now)
		if !ok {
			t.Fatal("expected a club")
		}
		if club.ID == nil || *club.ID != 2 {
			t.Fatalf("expected current club 2, got %+v", club)
		}
	})

	t.Run("future end date counts as active", func(t *testing.T) {
		t.Parallel()
		memberships := []membershipPayload{
			clubMembership(1, "Loan Club", "domestic", "2025-08-01", "2026-06-30"),
			clubMembership(2, "Parent Club", "domestic", "2022-07-01", "2025-06-30"),
		}
		club, ok := resolveCurrentClub(memberships, now)
		if !ok {
			t.Fatal("expected a club")
		}
		if club.ID == nil || *club.ID != 1 {
			t.Fatalf("expected club with future end, got %+v", club)
		}
	})

	t.Run("latest start wins among ended memberships", func(t *testing.T) {
		t.Parallel()
		memberships := []membershipPayload{
			clubMembership(1, "First Club", "domestic", "2018-07-01", "2020-06-30"),
			clubMembership(2, "Second Club", "domestic", "2020-07-01", "2022-06-30"),
			clubMembership(3, "Third Club", "domestic", "2022-07-01", "2024-06-30"),
		}
		club, ok := resolveCurrentClub(memberships, now)
		if !ok {
			t.Fatal("expected a club")
		}
		if club.ID == nil || *club.ID != 3 {
			t.Fatalf("expected most recent club, got %+v", club)
		}
	})

	t.Run("national teams are excluded", func(t *testing.T) {
		t.Parallel()
		memberships := []membershipPayload{
			clubMembership(1, "Argentina", "national", "2016-01-01", ""),
			clubMembership(2, "Club Side", "domestic", "2010-07-01", "2012-06-30"),
		}
		club, ok := resolveCurrentClub(memberships, now)
		if !ok {
			t.Fatal("expected the club membership")
		}
		if club.ID == nil || *club.ID != 2 {
			t.Fatalf("expected club side even though ended, got %+v", club)
		}
	})

	t.Run("only national memberships yields none", func(t *testing.T) {
		t.Parallel()
		memberships := []membershipPayload{
			clubMembership(1, "Argentina", "National", "2016-01-01", ""),
		}
		if _, ok := resolveCurrentClub(memberships, now); ok {
			t.Fatal("expected no club")
		}
	})

	t.Run("missing type counts as club", func(t *testing.T) {
		t.Parallel()
		memberships := []membershipPayload{
			{TeamID: 9, Start: "2024-07-01"},
		}
		club, ok := resolveCurrentClub(memberships, now)
		if !ok {
			t.Fatal("expected a club")
		}
		if club.ID == nil || *club.ID != 9 {
			t.Fatalf("unexpected club: %+v", club)
		}
	})

	t.Run("equal active starts keep provider order", func(t *testing.T) {
		t.Parallel()
		memberships := []membershipPayload{
			clubMembership(5, "Listed First", "domestic", "2024-07-01", ""),
			clubMembership(6, "Listed Second", "domestic", "2024-07-01", ""),
		}
		club, ok := resolveCurrentClub(memberships, now)
		if !ok {
			t.Fatal("expected a club")
		}
		if club.ID == nil || *club.ID != 5 {
			t.Fatalf("expected first-listed club on tie, got %+v", club)
		}
	})

	t.Run("empty history yields none", func(t *testing.T) {
		t.Parallel()
		if _, ok := resolveCurrentClub(nil, now); ok {
			t.Fatal("expected no club")
		}
	})
}

func TestMapPlayerPayloadPositions(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		source playerPayload
		want   string
	}{
		{name: "goalkeeper id", source: playerPayload{ID: 1, PositionID: 24}, want: "GK"},
		{name: "defender id", source: playerPayload{ID: 1, PositionID: 25}, want: "DEF"},
		{name: "midfielder id", source: playerPayload{ID: 1, PositionID: 26}, want: "MID"},
		{name: "forward id", source: playerPayload{ID: 1, PositionID: 27}, want: "FWD"},
		{name: "detailed id fallback", source: playerPayload{ID: 1, DetailedPositionID: 27}, want: "FWD"},
		{
			name: "position name fallback",
			source: playerPayload{
				ID:       1,
				Position: relation[positionRef]{Data: positionRef{Name: "Striker"}, Set: true},
			},
			want: "FWD",
		},
		{name: "unmapped id is unknown", source: playerPayload{ID: 1, PositionID: 99}, want: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := mapPlayerPayload(tc.source, now)
			if got.Position != tc.want {
				t.Fatalf("got position %q, want %q", got.Position, tc.want)
			}
		})
	}
}

func TestRelationUnmarshal(t *testing.T) {
	t.Parallel()

	t.Run("wrapped data object", func(t *testing.T) {
		t.Parallel()
		var r relation[countryPayload]
		if err := r.UnmarshalJSON([]byte(`{"data":{"id":320,"name":"Spain"}}`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !r.Set || r.Data.ID != 320 {
			t.Fatalf("unexpected relation: %+v", r)
		}
	})

	t.Run("direct object", func(t *testing.T) {
		t.Parallel()
		var r relation[countryPayload]
		if err := r.UnmarshalJSON([]byte(`{"id":320,"name":"Spain"}`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !r.Set || r.Data.Name != "Spain" {
			t.Fatalf("unexpected relation: %+v", r)
		}
	})

	t.Run("null clears", func(t *testing.T) {
		t.Parallel()
		var r relation[countryPayload]
		if err := r.UnmarshalJSON([]byte(`null`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Set {
			t.Fatalf("expected unset relation, got %+v", r)
		}
	})
}

func TestParseProviderDate(t *testing.T) {
	t.Parallel()

	got := parseProviderDate("2024-07-01")
	if got == nil || !got.Equal(time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date: %v", got)
	}

	if parseProviderDate("") != nil {
		t.Fatal("expected nil for empty input")
	}
	if parseProviderDate("not-a-date") != nil {
		t.Fatal("expected nil for malformed input")
	}
}
