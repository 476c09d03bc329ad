package commands

import (
	"fmt"

	"github.com/wonny/cohesion/pkg/config"
	"github.com/wonny/cohesion/pkg/database"
	"github.com/wonny/cohesion/pkg/logger"
)

// deps is what every database-backed command needs
type deps struct {
	cfg *config.Config
	log *logger.Logger
	db  *database.DB
}

// loadConfig applies the global flag overrides on top of the environment
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// bootstrap loads config, builds the logger and connects to the database
func bootstrap() (*deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &deps{cfg: cfg, log: log, db: db}, nil
}

func (d *deps) Close() {
	d.db.Close()
}
