package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/team-events/external/anubis"
	"github.com/riskibarqy/team-events/internal/config"
	"github.com/riskibarqy/team-events/internal/interfaces/httpapi"
	"github.com/riskibarqy/team-events/internal/platform/logging"
	"github.com/riskibarqy/team-events/internal/usecase"
)

// Container holds the wired services shared by the API server and the
// maintenance commands.
type Container struct {
	Events   *usecase.EventService
	RSVP     *usecase.RSVPService
	Feed     *usecase.EventFeedService
	Backfill *usecase.BackfillService

	close func() error
}

func NewContainer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, closer, err := newRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	senders, err := newSenders(cfg, logger)
	if err != nil {
		_ = closer()
		return nil, err
	}

	resolver := usecase.NewTeamResolver(repos.events, repos.teams, repos.athletes)
	roster := usecase.NewRosterSynchronizer(repos.athletes, repos.participants, logger)
	dispatcher := usecase.NewNotificationDispatcher(
		repos.users,
		repos.notifications,
		senders,
		usecase.DispatcherConfig{MaxWorkers: cfg.NotifyMaxWorkers},
		logger,
	)

	return &Container{
		Events: usecase.NewEventService(
			repos.events,
			repos.participants,
			repos.athletes,
			repos.users,
			repos.notifications,
			resolver,
			roster,
			dispatcher,
			logger,
		),
		RSVP: usecase.NewRSVPService(
			repos.events,
			repos.participants,
			repos.athletes,
			repos.users,
			dispatcher,
			usecase.RSVPConfig{},
			logger,
		),
		Feed:     usecase.NewEventFeedService(repos.events, repos.participants, repos.teams),
		Backfill: usecase.NewBackfillService(repos.events, repos.participants, resolver, roster, logger),
		close:    closer,
	}, nil
}

func (c *Container) Close() error {
	if c == nil || c.close == nil {
		return nil
	}
	return c.close()
}

func NewHTTPServer(cfg config.Config, container *Container, logger *logging.Logger) (*http.Server, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	verifier := anubis.NewClient(anubis.Config{
		BaseURL:        cfg.AnubisBaseURL,
		IntrospectPath: cfg.AnubisIntrospectURL,
		AdminKey:       cfg.AnubisAdminKey,
		Timeout:        cfg.AnubisTimeout,
		CacheTTL:       cfg.AnubisCacheTTL,
		Logger:         logger,
		CircuitBreaker: cfg.AnubisCircuit,
	})

	handler := httpapi.NewHandler(container.Events, container.RSVP, container.Feed, logger)
	router := httpapi.NewRouter(handler, verifier, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}
