package app

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	coreconfig "github.com/m3rciful/partyfinder/core/config"
	coredatabase "github.com/m3rciful/partyfinder/core/database"
	"github.com/m3rciful/partyfinder/internal/search"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// MatchmakingConfig tunes candidate searches.
type MatchmakingConfig struct {
	// ResultLimit caps one search; 0 selects the maximum.
	ResultLimit int `yaml:"result_limit" envconfig:"MATCH_RESULT_LIMIT" validate:"gte=0,lte=30"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database    coredatabase.Config `yaml:"database"`
	Matchmaking MatchmakingConfig   `yaml:"matchmaking"`
}

// CoreConfig exposes the embedded core section.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// LoadConfig reads path, overlays the environment, and validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.ReadFile(path, &cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalizes the core section and checks the application sections.
func Validate(cfg *Config) error {
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}
	if err := validate.Struct(cfg.Database); err != nil {
		return fmt.Errorf("invalid database config: %w", err)
	}
	if err := validate.Struct(cfg.Matchmaking); err != nil {
		return fmt.Errorf("invalid matchmaking config: %w", err)
	}
	if cfg.Matchmaking.ResultLimit == 0 {
		cfg.Matchmaking.ResultLimit = search.MaxResults
	}
	return nil
}
