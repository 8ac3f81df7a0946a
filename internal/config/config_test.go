package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SPORTMONKS_TOKEN", "test-token")
	t.Setenv("SPORTMONKS_TEAM_IDS", "83,85")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AppEnv != EnvDev {
		t.Fatalf("expected dev env, got %s", cfg.AppEnv)
	}
	if cfg.ProviderTag != "sportmonks" {
		t.Fatalf("unexpected provider tag %s", cfg.ProviderTag)
	}
	if cfg.SportMonksTimeout != 30*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.SportMonksTimeout)
	}
	if cfg.SportMonksMaxRetries != 4 {
		t.Fatalf("unexpected max retries %d", cfg.SportMonksMaxRetries)
	}
	if cfg.SportMonksMinRequestInterval != 350*time.Millisecond {
		t.Fatalf("unexpected min interval %s", cfg.SportMonksMinRequestInterval)
	}
	if cfg.SquadMaxSize != 26 {
		t.Fatalf("unexpected squad max size %d", cfg.SquadMaxSize)
	}
	if cfg.SportMonksCircuit.Enabled {
		t.Fatal("expected circuit breaker disabled by default")
	}
	if len(cfg.TeamIDs) != 2 || cfg.TeamIDs[0] != 83 || cfg.TeamIDs[1] != 85 {
		t.Fatalf("unexpected team ids %v", cfg.TeamIDs)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("SPORTMONKS_TOKEN", "")
	t.Setenv("SPORTMONKS_TEAM_IDS", "83")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "SPORTMONKS_TOKEN") {
		t.Fatalf("expected token error, got %v", err)
	}
}

func TestLoadRequiresTeamSelection(t *testing.T) {
	t.Setenv("SPORTMONKS_TOKEN", "test-token")
	t.Setenv("SPORTMONKS_TEAM_IDS", "")
	t.Setenv("SPORTMONKS_TEAM_NAMES", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "SPORTMONKS_TEAM_IDS") {
		t.Fatalf("expected team selection error, got %v", err)
	}
}

func TestLoadTeamNamesAlone(t *testing.T) {
	t.Setenv("SPORTMONKS_TOKEN", "test-token")
	t.Setenv("SPORTMONKS_TEAM_NAMES", "Arsenal, Chelsea")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.TeamNames) != 2 || cfg.TeamNames[0] != "Arsenal" || cfg.TeamNames[1] != "Chelsea" {
		t.Fatalf("unexpected team names %v", cfg.TeamNames)
	}
}

func TestLoadRejectsBadTeamIDs(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SPORTMONKS_TEAM_IDS", "83,abc")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed team ids")
	}

	t.Setenv("SPORTMONKS_TEAM_IDS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-positive team id")
	}
}

func TestLoadRejectsInvalidAppEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown APP_ENV")
	}
}

func TestLoadUptraceRequiresDSN(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "UPTRACE_DSN") {
		t.Fatalf("expected uptrace dsn error, got %v", err)
	}
}

func TestParseInt64List(t *testing.T) {
	got, err := parseInt64List(" 83, 85 ,1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 || got[0] != 83 || got[1] != 85 || got[2] != 1 {
		t.Fatalf("unexpected result %v", got)
	}

	if _, err := parseInt64List("-1"); err == nil {
		t.Fatal("expected error for negative id")
	}

	got, err = parseInt64List("")
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v err=%v", got, err)
	}
}
