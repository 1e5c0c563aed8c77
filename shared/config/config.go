package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"anipick/internal/models"
	"anipick/internal/selection"
	"anipick/shared/logging"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AniList    AniListConfig    `yaml:"anilist"`
	Picker     PickerConfig     `yaml:"picker"`
	AI         AIConfig         `yaml:"ai"`
	YouTube    YouTubeConfig    `yaml:"youtube"`
	Email      EmailConfig      `yaml:"email"`
	Logging    logging.Config   `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Schedule   string           `yaml:"schedule"`
}

type AniListConfig struct {
	Username          string `yaml:"username" env:"ANILIST_USERNAME"`
	Endpoint          string `yaml:"endpoint" validate:"url"`
	ClientID          string `yaml:"client_id" env:"ANILIST_CLIENT_ID"`
	ClientSecret      string `yaml:"client_secret" env:"ANILIST_CLIENT_SECRET"`
	TokenFile         string `yaml:"token_file"`
	TimeoutSeconds    int    `yaml:"timeout_seconds" validate:"gte=1"`
	RequestsPerMinute int    `yaml:"requests_per_minute" validate:"gte=1"`
	PerPage           int    `yaml:"per_page" validate:"gte=1,lte=50"`
}

type PickerConfig struct {
	Scope         string            `yaml:"scope" env:"ANIPICK_SCOPE"`
	Policy        string            `yaml:"policy"`
	Weights       selection.Weights `yaml:"weights" validate:"-"`
	PlayerCommand string            `yaml:"player_command"`
}

type AIConfig struct {
	GeminiAPIKey string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model        string `yaml:"model"`
}

type YouTubeConfig struct {
	APIKey string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
}

type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username" env:"EMAIL_USERNAME"`
	Password   string `yaml:"password" env:"EMAIL_PASSWORD"`
	FromEmail  string `yaml:"from_email" validate:"omitempty,email"`
	ToEmail    string `yaml:"to_email" validate:"omitempty,email"`
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port" validate:"gte=0,lte=65535"`
}

// Load reads .env, then the YAML file named by CONFIG_FILE (default
// config.yaml), then fills blanks from the environment and defaults. A
// missing config file is fine: the picker can run on a username alone.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	explicit := configFile != ""
	if configFile == "" {
		configFile = "config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// defaults and environment only
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.AniList.Username, "ANILIST_USERNAME")
	setFromEnv(&c.AniList.ClientID, "ANILIST_CLIENT_ID")
	setFromEnv(&c.AniList.ClientSecret, "ANILIST_CLIENT_SECRET")
	setFromEnv(&c.AI.GeminiAPIKey, "GEMINI_API_KEY")
	setFromEnv(&c.YouTube.APIKey, "YOUTUBE_API_KEY")
	setFromEnv(&c.Email.Username, "EMAIL_USERNAME")
	setFromEnv(&c.Email.Password, "EMAIL_PASSWORD")

	// Scope and log level are overridden by the environment, not just filled.
	if v := os.Getenv("ANIPICK_SCOPE"); v != "" {
		c.Picker.Scope = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("HEALTH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Monitoring.HealthPort = port
		}
	}
}

func setFromEnv(field *string, key string) {
	if *field == "" {
		*field = os.Getenv(key)
	}
}

func (c *Config) applyDefaults() {
	if c.AniList.Endpoint == "" {
		c.AniList.Endpoint = "https://graphql.anilist.co"
	}
	if c.AniList.TokenFile == "" {
		c.AniList.TokenFile = "anilist_token.json"
	}
	if c.AniList.TimeoutSeconds == 0 {
		c.AniList.TimeoutSeconds = 10
	}
	if c.AniList.RequestsPerMinute == 0 {
		c.AniList.RequestsPerMinute = 90
	}
	if c.AniList.PerPage == 0 {
		c.AniList.PerPage = 50
	}
	if c.Picker.Scope == "" {
		c.Picker.Scope = string(models.ScopeLibraryOnly)
	}
	if c.Picker.Policy == "" {
		c.Picker.Policy = string(selection.PolicyRefined)
	}
	if c.Picker.PlayerCommand == "" {
		c.Picker.PlayerCommand = "ani-cli"
	}
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8080
	}
	if c.Schedule == "" {
		c.Schedule = "0 0 19 * * *" // Daily at 7 PM
	}
}

var validate = validator.New()

func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := c.Scope(); err != nil {
		return err
	}
	if _, err := c.Weights(); err != nil {
		return err
	}
	return nil
}

// Scope parses picker.scope.
func (c *Config) Scope() (models.Scope, error) {
	return models.ParseScope(c.Picker.Scope)
}

// Weights resolves picker.policy and overlays any explicit picker.weights.
func (c *Config) Weights() (selection.Weights, error) {
	base, err := selection.WeightsFor(selection.Policy(c.Picker.Policy))
	if err != nil {
		return selection.Weights{}, err
	}
	w := base.Merge(c.Picker.Weights)
	if err := w.Validate(); err != nil {
		return selection.Weights{}, err
	}
	return w, nil
}

// ValidateDigest checks what the scheduled email digest needs on top of Load.
func (c *Config) ValidateDigest() error {
	if c.AniList.Username == "" {
		return fmt.Errorf("AniList username is required (set ANILIST_USERNAME or anilist.username)")
	}
	if c.Email.SMTPServer == "" {
		return fmt.Errorf("SMTP server is required (set email.smtp_server)")
	}
	if c.Email.Username == "" {
		return fmt.Errorf("Email username is required (set EMAIL_USERNAME or email.username)")
	}
	if c.Email.Password == "" {
		return fmt.Errorf("Email password is required (set EMAIL_PASSWORD or email.password)")
	}
	if c.Email.ToEmail == "" || c.Email.FromEmail == "" {
		return fmt.Errorf("email.from_email and email.to_email are required")
	}
	return nil
}
