package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"squad-ingest/internal/domain/country"
	"squad-ingest/internal/domain/player"
	"squad-ingest/internal/domain/squad"
	"squad-ingest/internal/domain/team"
	"squad-ingest/internal/platform/logging"
)

const defaultMaxSquadSize = 26

// SyncConfig selects what one ingestion run covers. Teams may be
// addressed by provider-local id or by name; names are resolved
// through the provider's team search before the run starts.
type SyncConfig struct {
	Provider     string
	TeamIDs      []int64
	TeamNames    []string
	MaxSquadSize int
}

// RosterSyncService drives one roster ingestion run. Teams are
// processed strictly one after another, players within a team in
// provider order.
type RosterSyncService struct {
	provider    RosterProvider
	teamRepo    team.Repository
	playerRepo  player.Repository
	squadRepo   squad.Repository
	countryRepo country.Repository
	cfg         SyncConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewRosterSyncService(
	provider RosterProvider,
	teamRepo team.Repository,
	playerRepo player.Repository,
	squadRepo squad.Repository,
	countryRepo country.Repository,
	cfg SyncConfig,
	logger *logging.Logger,
) (*RosterSyncService, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: roster provider is required", ErrInvalidInput)
	}
	if teamRepo == nil || playerRepo == nil || squadRepo == nil || countryRepo == nil {
		return nil, fmt.Errorf("%w: all repositories are required", ErrInvalidInput)
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxSquadSize <= 0 {
		cfg.MaxSquadSize = defaultMaxSquadSize
	}

	return &RosterSyncService{
		provider:    provider,
		teamRepo:    teamRepo,
		playerRepo:  playerRepo,
		squadRepo:   squadRepo,
		countryRepo: countryRepo,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// SyncTeams runs the full ingestion. Per-entity failures are recorded
// in the summary; only configuration problems return an error.
func (s *RosterSyncService) SyncTeams(ctx context.Context) (RunSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "RosterSyncService.SyncTeams")
	defer span.End()

	summary := RunSummary{
		Provider:  s.cfg.Provider,
		StartedAt: s.now().UTC(),
		Errors:    []RunError{},
	}

	if strings.TrimSpace(s.cfg.Provider) == "" {
		return summary, fmt.Errorf("%w: provider tag is required", ErrInvalidInput)
	}
	if len(s.cfg.TeamIDs) == 0 && len(s.cfg.TeamNames) == 0 {
		return summary, fmt.Errorf("%w: at least one team id or team name is required", ErrInvalidInput)
	}
	for _, teamID := range s.cfg.TeamIDs {
		if teamID <= 0 {
			return summary, fmt.Errorf("%w: team id must be greater than zero", ErrInvalidInput)
		}
	}

	teamIDs := append([]int64(nil), s.cfg.TeamIDs...)
	teamIDs = append(teamIDs, s.resolveTeamNames(ctx, &summary)...)

	for _, teamID := range teamIDs {
		s.syncTeam(ctx, &summary, teamID)
	}

	summary.APICalls = s.provider.Calls()
	summary.FinishedAt = s.now().UTC()

	s.logger.InfoContext(ctx, "roster sync finished",
		"provider", s.cfg.Provider,
		"teams_processed", summary.TeamsProcessed,
		"teams_failed", summary.TeamsFailed,
		"players_upserted", summary.PlayersUpserted,
		"squads_upserted", summary.SquadsUpserted,
		"api_calls", summary.APICalls,
		"errors", len(summary.Errors),
	)

	return summary, nil
}

func (s *RosterSyncService) resolveTeamNames(ctx context.Context, summary *RunSummary) []int64 {
	out := make([]int64, 0, len(s.cfg.TeamNames))
	for _, name := range s.cfg.TeamNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		matches, err := s.provider.SearchTeam(ctx, name)
		if err != nil {
			summary.TeamsFailed++
			summary.addError(RunError{TeamKey: name, Stage: StageSearchTeam, Message: err.Error()})
			continue
		}
		if len(matches) == 0 || matches[0].ExternalID <= 0 {
			summary.TeamsFailed++
			summary.addError(RunError{TeamKey: name, Stage: StageSearchTeam, Message: "no team matched search"})
			continue
		}
		out = append(out, matches[0].ExternalID)
	}
	return out
}

func (s *RosterSyncService) syncTeam(ctx context.Context, summary *RunSummary, teamID int64) {
	teamKey := strconv.FormatInt(teamID, 10)
	logger := s.logger.With("provider", s.cfg.Provider, "team_key", teamKey)

	extSquad, err := s.provider.FetchTeamSquad(ctx, teamID)
	if err != nil {
		summary.TeamsFailed++
		summary.addError(RunError{TeamKey: teamKey, Stage: StageFetchSquad, Message: err.Error()})
		logger.WarnContext(ctx, "team skipped: squad fetch failed", "error", err)
		return
	}

	extTeam, err := s.provider.FetchTeam(ctx, teamID)
	if err != nil {
		summary.TeamsFailed++
		summary.addError(RunError{TeamKey: teamKey, Stage: StageFetchTeam, Message: err.Error()})
		logger.WarnContext(ctx, "team skipped: team fetch failed", "error", err)
		return
	}

	teamDoc := s.mapExternalTeam(ctx, summary, teamKey, extTeam)
	if _, err := s.teamRepo.Upsert(ctx, teamDoc); err != nil {
		summary.addError(RunError{TeamKey: teamKey, Stage: StageUpsertTeam, Message: err.Error()})
		logger.WarnContext(ctx, "team upsert failed", "error", err)
	}

	roster := extSquad.PlayerIDs
	if len(roster) > s.cfg.MaxSquadSize {
		logger.WarnContext(ctx, "squad capped",
			"provider_count", len(roster),
			"max_squad_size", s.cfg.MaxSquadSize,
		)
		roster = roster[:s.cfg.MaxSquadSize]
	}

	squadPlayerIDs := make([]string, 0, len(roster))
	for _, playerID := range roster {
		canonicalID, ok := s.syncPlayer(ctx, summary, teamKey, playerID)
		if !ok {
			continue
		}
		squadPlayerIDs = append(squadPlayerIDs, canonicalID)
	}

	squadDoc := squad.Squad{
		ID:        squad.BuildID(s.cfg.Provider, teamKey),
		Provider:  s.cfg.Provider,
		TeamKey:   teamKey,
		TeamName:  teamDoc.Name,
		PlayerIDs: squadPlayerIDs,
		FetchedAt: s.now().UTC(),
	}
	if _, err := s.squadRepo.Upsert(ctx, squadDoc); err != nil {
		summary.addError(RunError{TeamKey: teamKey, Stage: StageUpsertSquad, Message: err.Error()})
		logger.WarnContext(ctx, "squad upsert failed", "error", err)
	} else {
		summary.SquadsUpserted++
	}

	summary.TeamsProcessed++
}

func (s *RosterSyncService) syncPlayer(ctx context.Context, summary *RunSummary, teamKey string, playerID int64) (string, bool) {
	playerKey := strconv.FormatInt(playerID, 10)

	extPlayer, err := s.provider.FetchPlayer(ctx, playerID)
	if err != nil {
		summary.addError(RunError{TeamKey: teamKey, PlayerKey: playerKey, Stage: StageFetchPlayer, Message: err.Error()})
		return "", false
	}
	if extPlayer.ExternalID <= 0 {
		extPlayer.ExternalID = playerID
	}

	playerDoc := s.mapExternalPlayer(ctx, summary, teamKey, extPlayer)
	if _, err := s.playerRepo.Upsert(ctx, playerDoc); err != nil {
		summary.addError(RunError{TeamKey: teamKey, PlayerKey: playerKey, Stage: StageUpsertPlayer, Message: err.Error()})
		return "", false
	}

	summary.PlayersUpserted++
	return playerDoc.ID, true
}

func (s *RosterSyncService) mapExternalTeam(ctx context.Context, summary *RunSummary, teamKey string, ext ExternalTeam) team.Team {
	name := strings.TrimSpace(ext.Name)
	if name == "" {
		name = player.UnknownName
	}

	return team.Team{
		ID:         team.BuildID(s.cfg.Provider, teamKey),
		Provider:   s.cfg.Provider,
		ProviderID: teamKey,
		Name:       name,
		Type:       strings.TrimSpace(ext.Type),
		Country:    s.resolveCountryRef(ctx, summary, teamKey, "", ext.Country, ext.CountryID),
		ImageURL:   strings.TrimSpace(ext.ImageURL),
	}
}

func (s *RosterSyncService) mapExternalPlayer(ctx context.Context, summary *RunSummary, teamKey string, ext ExternalPlayer) player.Player {
	playerKey := strconv.FormatInt(ext.ExternalID, 10)

	name := strings.TrimSpace(ext.Name)
	if name == "" {
		name = player.UnknownName
	}
	position := strings.TrimSpace(ext.Position)
	if position == "" {
		position = player.PositionUnknown
	}

	var clubCountry country.Ref
	if ext.CurrentClub.CountryID > 0 {
		clubCountry = s.resolveCountryRef(ctx, summary, teamKey, playerKey, ExternalCountry{}, ext.CurrentClub.CountryID)
	}

	return player.Player{
		ID:          player.BuildID(s.cfg.Provider, playerKey),
		Provider:    s.cfg.Provider,
		ProviderID:  playerKey,
		Name:        name,
		Position:    position,
		Nationality: s.resolveCountryRef(ctx, summary, teamKey, playerKey, ext.Nationality, ext.NationalityID),
		CurrentClub: player.ClubRef{ID: ext.CurrentClub.ID, Name: ext.CurrentClub.Name},
		ClubCountry: clubCountry,
		ImageURL:    strings.TrimSpace(ext.ImageURL),
	}
}

// resolveCountryRef fills a country reference. When the provider gave
// no inline country but a local id is known, the country endpoint is
// consulted (memoized by the client). A failed lookup keeps the id so
// partially-filled references survive.
func (s *RosterSyncService) resolveCountryRef(ctx context.Context, summary *RunSummary, teamKey, playerKey string, resolved ExternalCountry, fallbackID int64) country.Ref {
	if resolved.IsZero() && fallbackID > 0 {
		fetched, err := s.provider.FetchCountry(ctx, fallbackID)
		if err != nil {
			summary.addError(RunError{TeamKey: teamKey, PlayerKey: playerKey, Stage: StageResolveRefs, Message: err.Error()})
			id := fallbackID
			return country.Ref{ID: &id}
		}
		resolved = fetched
		if resolved.ID == nil && !resolved.IsZero() {
			id := fallbackID
			resolved.ID = &id
		}
	}

	s.cacheCountry(ctx, summary, resolved)
	return country.Ref{ID: resolved.ID, Name: resolved.Name, Code: resolved.Code}
}

func (s *RosterSyncService) cacheCountry(ctx context.Context, summary *RunSummary, ext ExternalCountry) {
	if ext.ID == nil {
		return
	}

	providerID := strconv.FormatInt(*ext.ID, 10)
	doc := country.Country{
		ID:         country.BuildID(s.cfg.Provider, providerID),
		Provider:   s.cfg.Provider,
		ProviderID: providerID,
		Name:       ext.Name,
		Code:       ext.Code,
	}
	if _, err := s.countryRepo.Upsert(ctx, doc); err != nil {
		summary.addError(RunError{Stage: StageUpsertCountry, Message: err.Error()})
	}
}
