package usecase

import "time"

const (
	StageSearchTeam    = "search_team"
	StageFetchSquad    = "fetch_squad"
	StageFetchTeam     = "fetch_team"
	StageFetchPlayer   = "fetch_player"
	StageResolveRefs   = "resolve_references"
	StageUpsertTeam    = "upsert_team"
	StageUpsertPlayer  = "upsert_player"
	StageUpsertSquad   = "upsert_squad"
	StageUpsertCountry = "upsert_country"
)

// RunError is one recorded entity-level failure. TeamKey and PlayerKey
// are provider-local identifiers; PlayerKey is empty for team-level
// failures.
type RunError struct {
	TeamKey   string `json:"team_key,omitempty"`
	PlayerKey string `json:"player_key,omitempty"`
	Stage     string `json:"stage"`
	Message   string `json:"message"`
}

// RunSummary is the final report of one ingestion run.
type RunSummary struct {
	Provider        string     `json:"provider"`
	TeamsProcessed  int        `json:"teams_processed"`
	TeamsFailed     int        `json:"teams_failed"`
	PlayersUpserted int        `json:"players_upserted"`
	SquadsUpserted  int        `json:"squads_upserted"`
	APICalls        int64      `json:"api_calls"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      time.Time  `json:"finished_at"`
	Errors          []RunError `json:"errors"`
}

func (s RunSummary) HasErrors() bool {
	return len(s.Errors) > 0
}

func (s *RunSummary) addError(item RunError) {
	s.Errors = append(s.Errors, item)
}
