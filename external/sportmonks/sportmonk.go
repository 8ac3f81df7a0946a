package sportmonks

import (
	"bytes"
	"encoding/json"

	sonic "github.com/bytedance/sonic"
)

// envelope is the provider's standard `{"data": ...}` wrapper. An
// absent or null data key is a valid empty result, not an error.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (e envelope) hasData() bool {
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

type squadEntryPayload struct {
	PlayerID int64                   `json:"player_id"`
	Player   relation[playerPayload] `json:"player"`
}

type playerPayload struct {
	ID                 int64                    `json:"id"`
	CommonName         string                   `json:"common_name"`
	FirstName          string                   `json:"firstname"`
	LastName           string                   `json:"lastname"`
	DisplayName        string                   `json:"display_name"`
	ImagePath          string                   `json:"image_path"`
	PositionID         int64                    `json:"position_id"`
	DetailedPositionID int64                    `json:"detailed_position_id"`
	Position           relation[positionRef]    `json:"position"`
	NationalityID      int64                    `json:"nationality_id"`
	Nationality        relation[countryPayload] `json:"nationality"`
	Teams              []membershipPayload      `json:"teams"`
}

// membershipPayload is one time-boxed entry of a player's team
// history. The provider gives no "current" flag; see resolveCurrentClub.
type membershipPayload struct {
	TeamID int64                 `json:"team_id"`
	Start  string                `json:"start"`
	End    string                `json:"end"`
	Team   relation[teamPayload] `json:"team"`
}

type teamPayload struct {
	ID        int64                    `json:"id"`
	Name      string                   `json:"name"`
	ShortCode string                   `json:"short_code"`
	Type      string                   `json:"type"`
	CountryID int64                    `json:"country_id"`
	ImagePath string                   `json:"image_path"`
	Country   relation[countryPayload] `json:"country"`
}

type positionRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type countryPayload struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	OfficialName string `json:"official_name"`
	ISO2         string `json:"iso2"`
	ISO3         string `json:"iso3"`
	FifaName     string `json:"fifa_name"`
}

// relation tolerates both direct objects and `{"data": {...}}` nesting
// for included relations.
type relation[T any] struct {
	Data T
	Set  bool
}

func (r *relation[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		r.Set = false
		return nil
	}

	var wrapped struct {
		Data *T `json:"data"`
	}
	if err := sonic.Unmarshal(trimmed, &wrapped); err == nil && wrapped.Data != nil {
		r.Data = *wrapped.Data
		r.Set = true
		return nil
	}

	var direct T
	if err := sonic.Unmarshal(trimmed, &direct); err != nil {
		return err
	}
	r.Data = direct
	r.Set = true
	return nil
}
