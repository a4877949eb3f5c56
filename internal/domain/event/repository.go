package event

import (
	"context"
	"errors"
)

// ErrNotFound is returned by link operations on a missing event.
var ErrNotFound = errors.New("event not found")

// ResolveFunc computes the next link set from the currently persisted one.
type ResolveFunc func(current []int64) ([]int64, error)

// Repository describes event and event-team link persistence.
type Repository interface {
	Create(ctx context.Context, ev Event) (Event, error)
	Update(ctx context.Context, ev Event) (Event, error)
	GetByID(ctx context.Context, id int64) (Event, bool, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Event, error)
	ListIDs(ctx context.Context) ([]int64, error)
	ListIDsByCreator(ctx context.Context, creatorID int64) ([]int64, error)
	ListIDsByLegacyTeams(ctx context.Context, teamIDs []int64) ([]int64, error)
	ListIDsByLinkedTeams(ctx context.Context, teamIDs []int64) ([]int64, error)
	MarkNotified(ctx context.Context, id int64, emailSent, pushSent bool) error

	// ListTeamIDs returns the sorted link set of one event.
	ListTeamIDs(ctx context.Context, eventID int64) ([]int64, error)
	// ListTeamIDsByEvents returns sorted link sets keyed by event id.
	ListTeamIDsByEvents(ctx context.Context, eventIDs []int64) (map[int64][]int64, error)
	// ReplaceTeamLinks atomically rewrites the link set and returns it.
	ReplaceTeamLinks(ctx context.Context, eventID int64, teamIDs []int64) ([]int64, error)
	// ReconcileTeamLinks locks the event, reads its links, resolves and
	// replaces them in one transaction.
	ReconcileTeamLinks(ctx context.Context, eventID int64, resolve ResolveFunc) ([]int64, error)
}
