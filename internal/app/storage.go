package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/team-events/internal/config"
	"github.com/riskibarqy/team-events/internal/domain/athlete"
	"github.com/riskibarqy/team-events/internal/domain/event"
	"github.com/riskibarqy/team-events/internal/domain/notification"
	"github.com/riskibarqy/team-events/internal/domain/participant"
	"github.com/riskibarqy/team-events/internal/domain/team"
	"github.com/riskibarqy/team-events/internal/domain/user"
	cacherepo "github.com/riskibarqy/team-events/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/team-events/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/team-events/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/team-events/internal/platform/cache"
	"github.com/riskibarqy/team-events/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

type repositories struct {
	events        event.Repository
	participants  participant.Repository
	teams         team.Repository
	athletes      athlete.Repository
	users         user.Repository
	notifications notification.Repository
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", withApplicationName(cfg.DBURL, cfg.ServiceName),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

// newRepositories returns the storage backend selected by STORAGE_DRIVER.
// The closer releases the database handle when one was opened.
func newRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, func() error, error) {
	var (
		repos  repositories
		closer = func() error { return nil }
	)

	switch cfg.StorageDriver {
	case config.StorageMemory:
		repos = repositories{
			events:        memory.NewEventRepository(nil),
			participants:  memory.NewParticipantRepository(nil),
			teams:         memory.NewTeamRepository(memory.SeedTeams()),
			athletes:      memory.NewAthleteRepository(memory.SeedAthletes()),
			users:         memory.NewUserRepository(memory.SeedUsers()),
			notifications: memory.NewNotificationRepository(),
		}
		logger.Info("storage ready", "driver", config.StorageMemory)
	default:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return repositories{}, nil, err
		}
		if cfg.DBSeedEnabled {
			if err := postgres.BootstrapSeed(ctx, db); err != nil {
				_ = db.Close()
				return repositories{}, nil, fmt.Errorf("seed postgres: %w", err)
			}
		}
		repos = repositories{
			events:        postgres.NewEventRepository(db),
			participants:  postgres.NewParticipantRepository(db),
			teams:         postgres.NewTeamRepository(db),
			athletes:      postgres.NewAthleteRepository(db),
			users:         postgres.NewUserRepository(db),
			notifications: postgres.NewNotificationRepository(db),
		}
		closer = db.Close
		logger.Info("storage ready", "driver", config.StoragePostgres, "db_name", dbNameFromURL(cfg.DBURL), "seeded", cfg.DBSeedEnabled)
	}

	if cfg.CacheEnabled {
		repos.teams = cacherepo.NewTeamRepository(
			repos.teams,
			basecache.NewStore[[]team.Team](cfg.CacheTTL),
			basecache.NewStore[[]int64](cfg.CacheTTL),
		)
	}

	return repos, closer, nil
}
