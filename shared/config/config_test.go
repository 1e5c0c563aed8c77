package config

import (
	"os"
	"path/filepath"
	"testing"

	"anipick/internal/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ANILIST_USERNAME", "ANILIST_CLIENT_ID", "ANILIST_CLIENT_SECRET", "GEMINI_API_KEY",
		"YOUTUBE_API_KEY", "EMAIL_USERNAME", "EMAIL_PASSWORD", "ANIPICK_SCOPE", "LOG_LEVEL", "HEALTH_PORT",
	} {
		t.Setenv(key, "")
	}
	// keep a developer's .env out of the test
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ANILIST_USERNAME", "frieren")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AniList.Username != "frieren" {
		t.Errorf("Username = %s, want frieren", cfg.AniList.Username)
	}
	if cfg.AniList.Endpoint != "https://graphql.anilist.co" {
		t.Errorf("Endpoint = %s", cfg.AniList.Endpoint)
	}
	if cfg.AniList.PerPage != 50 || cfg.AniList.RequestsPerMinute != 90 {
		t.Errorf("unexpected AniList defaults: %+v", cfg.AniList)
	}
	if cfg.Picker.PlayerCommand != "ani-cli" {
		t.Errorf("PlayerCommand = %s, want ani-cli", cfg.Picker.PlayerCommand)
	}
	scope, err := cfg.Scope()
	if err != nil || scope != models.ScopeLibraryOnly {
		t.Errorf("Scope() = %s, %v", scope, err)
	}
	w, err := cfg.Weights()
	if err != nil {
		t.Fatalf("Weights() error = %v", err)
	}
	if w.CurrentBoost != 5 || w.SequelBoost != 2 || w.GlobalCap != 0.1 {
		t.Errorf("default weights = %+v", w)
	}
}

func TestLoadFileAndOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
anilist:
  username: file-user
  per_page: 25
picker:
  scope: trending
  policy: legacy
  weights:
    global_cap: 0.15
logging:
  level: debug
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ANILIST_USERNAME", "env-user")
	t.Setenv("ANIPICK_SCOPE", "discover")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AniList.Username != "file-user" {
		t.Errorf("file value should win over env fallback, got %s", cfg.AniList.Username)
	}
	if cfg.AniList.PerPage != 25 {
		t.Errorf("PerPage = %d, want 25", cfg.AniList.PerPage)
	}
	if scope, _ := cfg.Scope(); scope != models.ScopeRandomGlobal {
		t.Errorf("ANIPICK_SCOPE should override the file, got %s", scope)
	}
	w, err := cfg.Weights()
	if err != nil {
		t.Fatalf("Weights() error = %v", err)
	}
	if w.CurrentBoost != 2 || w.SequelBoost != 1.5 || w.GlobalCap != 0.15 {
		t.Errorf("legacy weights with cap override = %+v", w)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s", cfg.Logging.Level)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown scope", body: "picker:\n  scope: everything\n"},
		{name: "unknown policy", body: "picker:\n  policy: aggressive\n"},
		{name: "cap below base", body: "picker:\n  weights:\n    global_cap: 0.05\n"},
		{name: "page too large", body: "anilist:\n  per_page: 500\n"},
		{name: "bad email", body: "email:\n  to_email: not-an-address\n"},
		{name: "bad yaml", body: "anilist: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("CONFIG_FILE", writeConfig(t, tt.body))
			if _, err := Load(); err == nil {
				t.Error("Load() expected error")
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Error("Load() should fail when CONFIG_FILE points at a missing file")
	}
}

func TestValidateDigest(t *testing.T) {
	cfg := &Config{
		AniList: AniListConfig{Username: "frieren"},
		Email: EmailConfig{
			SMTPServer: "smtp.test.com",
			Username:   "user",
			Password:   "secret",
			FromEmail:  "from@test.com",
			ToEmail:    "to@test.com",
		},
	}
	if err := cfg.ValidateDigest(); err != nil {
		t.Errorf("ValidateDigest() error = %v", err)
	}

	cfg.Email.Password = ""
	if err := cfg.ValidateDigest(); err == nil {
		t.Error("ValidateDigest() should require an email password")
	}

	cfg.Email.Password = "secret"
	cfg.AniList.Username = ""
	if err := cfg.ValidateDigest(); err == nil {
		t.Error("ValidateDigest() should require a username")
	}
}
