// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"sleepygame/internal/engine"
)

// Config is the full server configuration.
type Config struct {
	Addr            string        `env:"SLEEPY_ADDR"             envDefault:":8080"`
	DBPath          string        `env:"SLEEPY_DB_PATH"          envDefault:"sleepy.db"`
	WebDir          string        `env:"SLEEPY_WEB_DIR"`
	BotDelay        time.Duration `env:"SLEEPY_BOT_DELAY"        envDefault:"800ms"`
	CleanupInterval time.Duration `env:"SLEEPY_CLEANUP_INTERVAL" envDefault:"1m"`
	SessionMaxAge   time.Duration `env:"SLEEPY_SESSION_MAX_AGE"  envDefault:"1h"`

	Game    GameConfig
	Logging LoggingConfig
}

// GameConfig holds the table rules.
type GameConfig struct {
	MaxHandSize         int  `env:"SLEEPY_MAX_HAND_SIZE"         envDefault:"5"`
	CharactersPerPlayer int  `env:"SLEEPY_CHARACTERS_PER_PLAYER" envDefault:"3"`
	SupportSelfOnly     bool `env:"SLEEPY_SUPPORT_SELF_ONLY"     envDefault:"false"`
	MaxPlayers          int  `env:"SLEEPY_MAX_PLAYERS"           envDefault:"4"`
}

// LoggingConfig selects the log level and encoding.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Rules converts the game settings to engine rules.
func (g GameConfig) Rules() engine.Rules {
	r := engine.DefaultRules()
	r.MaxHandSize = g.MaxHandSize
	r.CharactersPerPlayer = g.CharactersPerPlayer
	r.SupportSelfOnly = g.SupportSelfOnly
	return r
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("SLEEPY_ADDR must not be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("SLEEPY_DB_PATH must not be empty"))
	}
	if c.BotDelay < 0 {
		errs = append(errs, errors.New("SLEEPY_BOT_DELAY must not be negative"))
	}
	if c.CleanupInterval <= 0 {
		errs = append(errs, errors.New("SLEEPY_CLEANUP_INTERVAL must be positive"))
	}
	if c.SessionMaxAge <= 0 {
		errs = append(errs, errors.New("SLEEPY_SESSION_MAX_AGE must be positive"))
	}
	if c.Game.MaxHandSize < 1 {
		errs = append(errs, errors.New("SLEEPY_MAX_HAND_SIZE must be at least 1"))
	}
	if c.Game.CharactersPerPlayer < 1 {
		errs = append(errs, errors.New("SLEEPY_CHARACTERS_PER_PLAYER must be at least 1"))
	}
	if c.Game.MaxPlayers < 2 {
		errs = append(errs, errors.New("SLEEPY_MAX_PLAYERS must be at least 2"))
	}
	if need := c.Game.MaxPlayers * c.Game.CharactersPerPlayer; need > len(engine.CharacterTemplates) {
		errs = append(errs, fmt.Errorf("%d players with %d characters each need %d characters, only %d exist",
			c.Game.MaxPlayers, c.Game.CharactersPerPlayer, need, len(engine.CharacterTemplates)))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q is not json or console", c.Logging.Format))
	}
	return errors.Join(errs...)
}
