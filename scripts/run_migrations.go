package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/safar/storefront/internal/config"
	"github.com/safar/storefront/internal/database"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if len(os.Args) < 2 {
		logger.Fatal().Msg("usage: go run scripts/run_migrations.go [up|down]")
	}

	direction := database.MigrationDirection(os.Args[1])
	if direction != database.MigrateUp && direction != database.MigrateDown {
		logger.Fatal().Str("direction", string(direction)).Msg("direction must be 'up' or 'down'")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to database")
	}
	defer db.Close()

	if err := database.Migrate(db, direction); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	logger.Info().Str("direction", string(direction)).Msg("migrations applied")
}
