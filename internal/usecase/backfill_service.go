package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/team-events/internal/domain/event"
	"github.com/riskibarqy/team-events/internal/domain/participant"
	"github.com/riskibarqy/team-events/internal/platform/logging"
)

type BackfillInput struct {
	// EventIDs limits the run; empty means every event.
	EventIDs     []int64
	AttachRoster bool
	MaxWorkers   int
}

type BackfillResult struct {
	EventCount        int                    `json:"event_count"`
	SuccessCount      int                    `json:"success_count"`
	FailedCount       int                    `json:"failed_count"`
	WorkerCount       int                    `json:"worker_count"`
	LinksWritten      int                    `json:"links_written"`
	ParticipantsAdded int                    `json:"participants_added"`
	Failures          []BackfillEventFailure `json:"failures,omitempty"`
}

type BackfillEventFailure struct {
	EventID int64  `json:"event_id"`
	Message string `json:"message"`
}

// BackfillService brings historical events to the state live mutation would
// have produced. It never sends notifications.
type BackfillService struct {
	eventRepo       event.Repository
	participantRepo participant.Repository
	resolver        *TeamResolver
	roster          *RosterSynchronizer
	logger          *logging.Logger
}

func NewBackfillService(
	eventRepo event.Repository,
	participantRepo participant.Repository,
	resolver *TeamResolver,
	roster *RosterSynchronizer,
	logger *logging.Logger,
) *BackfillService {
	if logger == nil {
		logger = logging.Default()
	}
	return &BackfillService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		resolver:        resolver,
		roster:          roster,
		logger:          logger,
	}
}

func (s *BackfillService) Run(ctx context.Context, input BackfillInput) (BackfillResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackfillService.Run")
	defer span.End()

	ids := event.NormalizeIDs(input.EventIDs)
	if len(ids) == 0 {
		all, err := s.eventRepo.ListIDs(ctx)
		if err != nil {
			return BackfillResult{}, fmt.Errorf("list events: %w", err)
		}
		ids = event.NormalizeIDs(all)
	}

	workerCount := normalizeBackfillWorkerCount(input.MaxWorkers, len(ids))
	result := BackfillResult{
		EventCount:  len(ids),
		WorkerCount: workerCount,
	}
	if len(ids) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return BackfillResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		successCount atomic.Int32
		linksWritten atomic.Int32
		added        atomic.Int32
		failuresMu   sync.Mutex
		failures     []BackfillEventFailure
	)

	err = submitAndWait(pool.Submit, ids, func(eventID int64) {
		start := time.Now()
		links, inserted, err := s.backfillEvent(ctx, eventID, input.AttachRoster)
		if err != nil {
			s.logger.WarnContext(ctx, "backfill event failed", "event_id", eventID, "error", err)
			failuresMu.Lock()
			failures = append(failures, BackfillEventFailure{EventID: eventID, Message: err.Error()})
			failuresMu.Unlock()
			return
		}

		successCount.Add(1)
		linksWritten.Add(int32(links))
		added.Add(int32(inserted))
		s.logger.DebugContext(ctx, "backfill event done",
			"event_id", eventID,
			"links", links,
			"participants_added", inserted,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
	if err != nil {
		return BackfillResult{}, err
	}

	sort.Slice(failures, func(i, j int) bool { return failures[i].EventID < failures[j].EventID })

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = len(failures)
	result.LinksWritten = int(linksWritten.Load())
	result.ParticipantsAdded = int(added.Load())
	result.Failures = failures
	return result, nil
}

// backfillEvent keeps current links, adds the legacy team and the teams of
// every athlete participant, and optionally invites the resulting rosters.
func (s *BackfillService) backfillEvent(ctx context.Context, eventID int64, attachRoster bool) (int, int, error) {
	ev, exists, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return 0, 0, fmt.Errorf("get event: %w", err)
	}
	if !exists {
		return 0, 0, fmt.Errorf("%w: event id=%d", ErrNotFound, eventID)
	}

	athleteIDs, err := s.participantRepo.ListAthleteIDs(ctx, eventID)
	if err != nil {
		return 0, 0, fmt.Errorf("list participant athletes: %w", err)
	}
	known, missing, err := s.resolver.partitionAthletes(ctx, athleteIDs)
	if err != nil {
		return 0, 0, err
	}
	if len(missing) > 0 {
		s.logger.WarnContext(ctx, "backfill skipping participants of unknown athletes",
			"event_id", eventID,
			"athlete_ids", missing,
		)
	}

	next, err := s.resolver.Resolve(ctx, ev, event.UnsetTeams(), known)
	if err != nil {
		return 0, 0, err
	}
	links, err := s.eventRepo.ReplaceTeamLinks(ctx, eventID, next)
	if err != nil {
		return 0, 0, fmt.Errorf("replace team links: %w", err)
	}

	if !attachRoster {
		return len(links), 0, nil
	}
	inserted, err := s.roster.Sync(ctx, eventID, links)
	if err != nil {
		return len(links), 0, err
	}
	return len(links), len(inserted), nil
}

// submitAndWait hands every id to the pool and waits for the submitted tasks,
// including when a later submission is rejected.
func submitAndWait(submit func(func()) error, ids []int64, task func(int64)) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for _, id := range ids {
		wg.Add(1)
		if err := submit(func() {
			defer wg.Done()
			task(id)
		}); err != nil {
			wg.Done()
			return fmt.Errorf("submit event id=%d to worker pool: %w", id, err)
		}
	}
	return nil
}

func normalizeBackfillWorkerCount(requested, tasks int) int {
	if requested <= 0 {
		requested = 1
	}
	if tasks > 0 && requested > tasks {
		requested = tasks
	}
	return requested
}
