package sportmonks

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"squad-ingest/internal/platform/cache"
	"squad-ingest/internal/platform/logging"
	"squad-ingest/internal/platform/resilience"
	"squad-ingest/internal/usecase"
)

const (
	defaultBaseURL            = "https://api.sportmonks.com/v3/football"
	defaultTimeout            = 30 * time.Second
	defaultMaxRetries         = 4
	defaultMinRequestInterval = 350 * time.Millisecond
	defaultBackoffUnit        = time.Second
	defaultIncludePlayer      = "nationality;teams"
	defaultIncludeTeam        = "country"
	defaultIncludeSquad       = "player"
)

var apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)
var errSportMonksTransient = crerr.New("sportmonks transient failure")

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
	Timeout    time.Duration
	// MaxRetries is the number of retries after the first attempt;
	// zero selects the default.
	MaxRetries int
	// MinRequestInterval spaces consecutive outbound requests,
	// retries included.
	MinRequestInterval time.Duration
	// BackoffUnit is the base of the exponential retry delay
	// (unit<<attempt). Tests shrink it to milliseconds.
	BackoffUnit    time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches squad, team, player and country data. Team, player
// and country lookups are memoized for the lifetime of the client, so
// a player shared by two squads costs one request per run.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	backoffUnit    time.Duration
	limiter        *rate.Limiter
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	memo           *cache.Store
	calls          atomic.Int64
	now            func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	backoffUnit := cfg.BackoffUnit
	if backoffUnit <= 0 {
		backoffUnit = defaultBackoffUnit
	}
	interval := cfg.MinRequestInterval
	if interval <= 0 {
		interval = defaultMinRequestInterval
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxRetries,
		backoffUnit:    backoffUnit,
		limiter:        rate.NewLimiter(rate.Every(interval), 1),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		memo:           cache.NewStore(0),
		now:            time.Now,
	}
}

// Calls reports the number of HTTP requests issued so far, every
// retry attempt included.
func (c *Client) Calls() int64 {
	return c.calls.Load()
}

func (c *Client) ResetCalls() {
	c.calls.Store(0)
}

func (c *Client) FetchTeamSquad(ctx context.Context, teamID int64) (usecase.ExternalSquad, error) {
	if teamID <= 0 {
		return usecase.ExternalSquad{}, fmt.Errorf("%w: team id must be greater than zero", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("/squads/teams/%d", teamID)
	query := map[string]string{"include": defaultIncludeSquad}

	var env envelope
	if err := c.doJSON(ctx, path, query, &env); err != nil {
		return usecase.ExternalSquad{}, fmt.Errorf("fetch squad team_id=%d: %w", teamID, err)
	}

	out := usecase.ExternalSquad{TeamExternalID: teamID}
	if !env.hasData() {
		return out, nil
	}

	var entries []squadEntryPayload
	if err := sonic.Unmarshal(env.Data, &entries); err != nil {
		return usecase.ExternalSquad{}, fmt.Errorf("decode squad payload team_id=%d: %w", teamID, err)
	}

	for _, entry := range entries {
		playerID := entry.PlayerID
		if playerID <= 0 && entry.Player.Set {
			playerID = entry.Player.Data.ID
		}
		if playerID <= 0 {
			continue
		}
		out.PlayerIDs = append(out.PlayerIDs, playerID)
	}
	return out, nil
}

func (c *Client) FetchPlayer(ctx context.Context, playerID int64) (usecase.ExternalPlayer, error) {
	if playerID <= 0 {
		return usecase.ExternalPlayer{}, fmt.Errorf("%w: player id must be greater than zero", usecase.ErrInvalidInput)
	}

	key := fmt.Sprintf("player:%d", playerID)
	out, err := c.memo.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return c.fetchPlayer(ctx, playerID)
	})
	if err != nil {
		return usecase.ExternalPlayer{}, err
	}
	return castCached[usecase.ExternalPlayer](out)
}

func (c *Client) fetchPlayer(ctx context.Context, playerID int64) (usecase.ExternalPlayer, error) {
	path := fmt.Sprintf("/players/%d", playerID)
	query := map[string]string{"include": defaultIncludePlayer}

	var env envelope
	if err := c.doJSON(ctx, path, query, &env); err != nil {
		return usecase.ExternalPlayer{}, fmt.Errorf("fetch player player_id=%d: %w", playerID, err)
	}
	if !env.hasData() {
		return usecase.ExternalPlayer{}, nil
	}

	var payload playerPayload
	if err := sonic.Unmarshal(env.Data, &payload); err != nil {
		return usecase.ExternalPlayer{}, fmt.Errorf("decode player payload player_id=%d: %w", playerID, err)
	}
	return mapPlayerPayload(payload, c.now().UTC()), nil
}

func (c *Client) FetchTeam(ctx context.Context, teamID int64) (usecase.ExternalTeam, error) {
	if teamID <= 0 {
		return usecase.ExternalTeam{}, fmt.Errorf("%w: team id must be greater than zero", usecase.ErrInvalidInput)
	}

	key := fmt.Sprintf("team:%d", teamID)
	out, err := c.memo.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return c.fetchTeam(ctx, teamID)
	})
	if err != nil {
		return usecase.ExternalTeam{}, err
	}
	return castCached[usecase.ExternalTeam](out)
}

func (c *Client) fetchTeam(ctx context.Context, teamID int64) (usecase.ExternalTeam, error) {
	path := fmt.Sprintf("/teams/%d", teamID)
	query := map[string]string{"include": defaultIncludeTeam}

	var env envelope
	if err := c.doJSON(ctx, path, query, &env); err != nil {
		return usecase.ExternalTeam{}, fmt.Errorf("fetch team team_id=%d: %w", teamID, err)
	}
	if !env.hasData() {
		return usecase.ExternalTeam{}, nil
	}

	var payload teamPayload
	if err := sonic.Unmarshal(env.Data, &payload); err != nil {
		return usecase.ExternalTeam{}, fmt.Errorf("decode team payload team_id=%d: %w", teamID, err)
	}
	return mapTeamPayload(payload), nil
}

func (c *Client) FetchCountry(ctx context.Context, countryID int64) (usecase.ExternalCountry, error) {
	if countryID <= 0 {
		return usecase.ExternalCountry{}, fmt.Errorf("%w: country id must be greater than zero", usecase.ErrInvalidInput)
	}

	key := fmt.Sprintf("country:%d", countryID)
	out, err := c.memo.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return c.fetchCountry(ctx, countryID)
	})
	if err != nil {
		return usecase.ExternalCountry{}, err
	}
	return castCached[usecase.ExternalCountry](out)
}

func (c *Client) fetchCountry(ctx context.Context, countryID int64) (usecase.ExternalCountry, error) {
	path := fmt.Sprintf("/countries/%d", countryID)

	var env envelope
	if err := c.doJSON(ctx, path, nil, &env); err != nil {
		return usecase.ExternalCountry{}, fmt.Errorf("fetch country country_id=%d: %w", countryID, err)
	}
	if !env.hasData() {
		return usecase.ExternalCountry{}, nil
	}

	var payload countryPayload
	if err := sonic.Unmarshal(env.Data, &payload); err != nil {
		return usecase.ExternalCountry{}, fmt.Errorf("decode country payload country_id=%d: %w", countryID, err)
	}
	return mapCountryRef(payload), nil
}

func (c *Client) SearchTeam(ctx context.Context, name string) ([]usecase.ExternalTeam, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: team name is required", usecase.ErrInvalidInput)
	}

	path := "/teams/search/" + url.PathEscape(name)
	query := map[string]string{"include": defaultIncludeTeam}

	var env envelope
	if err := c.doJSON(ctx, path, query, &env); err != nil {
		return nil, fmt.Errorf("search team name=%q: %w", name, err)
	}
	if !env.hasData() {
		return nil, nil
	}

	var payloads []teamPayload
	if err := sonic.Unmarshal(env.Data, &payloads); err != nil {
		return nil, fmt.Errorf("decode team search payload name=%q: %w", name, err)
	}

	out := make([]usecase.ExternalTeam, 0, len(payloads))
	for _, payload := range payloads {
		if payload.ID <= 0 {
			continue
		}
		out = append(out, mapTeamPayload(payload))
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sportmonks circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: sport data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("api_token", c.token)

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isTransientFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		c.calls.Add(1)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errSportMonksTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errSportMonksTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errSportMonksTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := c.backoffUnit << attempt
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "sportmonks request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func castCached[T any](out any) (T, error) {
	value, ok := out.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("unexpected cached payload type %T", out)
	}
	return value, nil
}

func isTransientFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errSportMonksTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	value = apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
	return value
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	if query.Has("api_token") {
		query.Set("api_token", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
