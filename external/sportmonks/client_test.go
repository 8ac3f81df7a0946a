package sportmonks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"squad-ingest/internal/platform/logging"
	"squad-ingest/internal/usecase"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return NewClient(ClientConfig{
		BaseURL:            serverURL,
		Token:              "test-token",
		MaxRetries:         4,
		MinRequestInterval: time.Millisecond,
		BackoffUnit:        5 * time.Millisecond,
		Logger:             logging.NewNop(),
	})
}

func TestClientRetriesTransientStatuses(t *testing.T) {
	t.Parallel()

	statuses := []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusOK}

	var mu sync.Mutex
	var attempts []time.Time

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		n := len(attempts)
		attempts = append(attempts, time.Now())
		mu.Unlock()

		if n >= len(statuses) {
			n = len(statuses) - 1
		}
		if statuses[n] != http.StatusOK {
			w.WriteHeader(statuses[n])
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"id":320,"name":"Spain","official_name":"Kingdom of Spain","iso3":"ESP"}}`)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:            server.URL,
		Token:              "test-token",
		MaxRetries:         4,
		MinRequestInterval: time.Millisecond,
		BackoffUnit:        40 * time.Millisecond,
		Logger:             logging.NewNop(),
	})

	got, err := client.FetchCountry(context.Background(), 320)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name == nil || *got.Name != "Kingdom of Spain" {
		t.Fatalf("unexpected country name: %+v", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(attempts) != 3 {
		t.Fatalf("expected 3 attempts (2 retries), got %d", len(attempts))
	}
	if client.Calls() != 3 {
		t.Fatalf("expected call counter 3, got %d", client.Calls())
	}

	first := attempts[1].Sub(attempts[0])
	second := attempts[2].Sub(attempts[1])
	if first < 35*time.Millisecond {
		t.Fatalf("first retry delay too short: %v", first)
	}
	if second < first {
		t.Fatalf("expected non-decreasing delays, got %v then %v", first, second)
	}
}

func TestClientFailsFastOnNotFound(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	requests := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.FetchPlayer(context.Background(), 99)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "status=404") {
		t.Fatalf("expected status in error, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if requests != 1 {
		t.Fatalf("expected exactly 1 request for non-retryable status, got %d", requests)
	}
}

func TestClientMissingDataIsEmptyResult(t *testing.T) {
	t.Parallel()

	bodies := []string{`{}`, `{"data":null}`}
	for _, body := range bodies {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, body)
		}))

		client := newTestClient(t, server.URL)

		got, err := client.FetchTeam(context.Background(), 7)
		if err != nil {
			t.Fatalf("body %q: unexpected error: %v", body, err)
		}
		if got.ExternalID != 0 || got.Name != "" {
			t.Fatalf("body %q: expected zero-value team, got %+v", body, got)
		}

		squad, err := client.FetchTeamSquad(context.Background(), 7)
		if err != nil {
			t.Fatalf("body %q: unexpected squad error: %v", body, err)
		}
		if len(squad.PlayerIDs) != 0 {
			t.Fatalf("body %q: expected empty roster, got %v", body, squad.PlayerIDs)
		}

		server.Close()
	}
}

func TestClientMemoizesLookups(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	requests := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"id":10,"display_name":"Pedri"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	for i := 0; i < 3; i++ {
		got, err := client.FetchPlayer(context.Background(), 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Name != "Pedri" {
			t.Fatalf("unexpected player name %q", got.Name)
		}
	}

	mu.Lock()
	count := requests
	mu.Unlock()
	if count != 1 {
		t.Fatalf("expected 1 upstream request for repeated lookups, got %d", count)
	}
	if client.Calls() != 1 {
		t.Fatalf("expected call counter 1, got %d", client.Calls())
	}

	client.ResetCalls()
	if client.Calls() != 0 {
		t.Fatalf("expected reset counter, got %d", client.Calls())
	}
}

func TestClientFetchTeamSquadCollectsPlayerIDs(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/squads/teams/83") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[{"player_id":10},{"player_id":11},{"player":{"id":12}},{"player_id":0}]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	got, err := client.FetchTeamSquad(context.Background(), 83)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{10, 11, 12}
	if len(got.PlayerIDs) != len(want) {
		t.Fatalf("expected %v, got %v", want, got.PlayerIDs)
	}
	for i := range want {
		if got.PlayerIDs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got.PlayerIDs)
		}
	}
}

func TestClientSearchTeam(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/teams/search/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[{"id":19,"name":"Arsenal","type":"domestic","country":{"id":462,"name":"England","iso2":"GB"}}]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	got, err := client.SearchTeam(context.Background(), "Arsenal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ExternalID != 19 {
		t.Fatalf("unexpected search result: %+v", got)
	}
	if got[0].Country.Code == nil || *got[0].Country.Code != "GB" {
		t.Fatalf("expected country code from include, got %+v", got[0].Country)
	}
}

func TestClientRejectsInvalidIDs(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "http://localhost:0")

	if _, err := client.FetchTeamSquad(context.Background(), 0); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input for zero team id, got %v", err)
	}
	if _, err := client.FetchPlayer(context.Background(), -1); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input for negative player id, got %v", err)
	}
	if _, err := client.SearchTeam(context.Background(), "  "); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input for blank name, got %v", err)
	}
}

func TestSanitizeSensitiveText(t *testing.T) {
	t.Parallel()

	got := sanitizeSensitiveText(`Get "https://api.example.com/teams/1?api_token=abc123": dial tcp: timeout`, "abc123")
	if strings.Contains(got, "abc123") {
		t.Fatalf("token leaked: %s", got)
	}
	if !strings.Contains(got, "api_token=REDACTED") {
		t.Fatalf("expected redacted token param, got %s", got)
	}
}

func TestRedactAPIURL(t *testing.T) {
	t.Parallel()

	got := redactAPIURL("https://api.example.com/players/9?api_token=secret&include=teams")
	if strings.Contains(got, "secret") {
		t.Fatalf("token leaked: %s", got)
	}
	if !strings.Contains(got, "include=teams") {
		t.Fatalf("expected query preserved, got %s", got)
	}
}
