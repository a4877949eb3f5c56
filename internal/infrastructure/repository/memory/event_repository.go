package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/riskibarqy/team-events/internal/domain/event"
)

type EventRepository struct {
	mu     sync.RWMutex
	nextID int64
	events map[int64]event.Event
	links  map[int64][]int64
	now    func() time.Time
}

func NewEventRepository(events []event.Event) *EventRepository {
	r := &EventRepository{
		events: make(map[int64]event.Event, len(events)),
		links:  make(map[int64][]int64),
		now:    time.Now,
	}
	for _, item := range events {
		r.events[item.ID] = item
		if item.ID > r.nextID {
			r.nextID = item.ID
		}
	}
	return r
}

func (r *EventRepository) Create(_ context.Context, ev event.Event) (event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	ev.ID = r.nextID
	now := r.now().UTC()
	ev.CreatedAt = now
	ev.UpdatedAt = now
	ev.TeamID = cloneID(ev.TeamID)
	ev.CoachID = cloneID(ev.CoachID)
	r.events[ev.ID] = ev
	return ev, nil
}

func (r *EventRepository) Update(_ context.Context, ev event.Event) (event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.events[ev.ID]
	if !ok {
		return event.Event{}, fmt.Errorf("update event id=%d: %w", ev.ID, event.ErrNotFound)
	}
	ev.CreatedAt = current.CreatedAt
	ev.UpdatedAt = r.now().UTC()
	ev.TeamID = cloneID(ev.TeamID)
	ev.CoachID = cloneID(ev.CoachID)
	r.events[ev.ID] = ev
	return ev, nil
}

func (r *EventRepository) GetByID(_ context.Context, id int64) (event.Event, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.events[id]
	if !ok {
		return event.Event{}, false, nil
	}
	return cloneEvent(item), true, nil
}

func (r *EventRepository) GetByIDs(_ context.Context, ids []int64) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.Event, 0, len(ids))
	for _, id := range event.NormalizeIDs(ids) {
		if item, ok := r.events[id]; ok {
			out = append(out, cloneEvent(item))
		}
	}
	return out, nil
}

func (r *EventRepository) ListIDs(_ context.Context) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]int64, 0, len(r.events))
	for id := range r.events {
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}

func (r *EventRepository) ListIDsByCreator(_ context.Context, creatorID int64) ([]int64, error) {
	return r.filterIDs(func(item event.Event) bool { return item.CreatorID == creatorID }), nil
}

func (r *EventRepository) ListIDsByLegacyTeams(_ context.Context, teamIDs []int64) ([]int64, error) {
	if len(teamIDs) == 0 {
		return []int64{}, nil
	}
	return r.filterIDs(func(item event.Event) bool {
		teamID, ok := item.LegacyTeamID()
		return ok && slices.Contains(teamIDs, teamID)
	}), nil
}

func (r *EventRepository) ListIDsByLinkedTeams(_ context.Context, teamIDs []int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]int64, 0)
	for eventID, linked := range r.links {
		for _, teamID := range linked {
			if slices.Contains(teamIDs, teamID) {
				out = append(out, eventID)
				break
			}
		}
	}
	slices.Sort(out)
	return out, nil
}

func (r *EventRepository) MarkNotified(_ context.Context, id int64, emailSent, pushSent bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.events[id]
	if !ok {
		return fmt.Errorf("mark notified event id=%d: %w", id, event.ErrNotFound)
	}
	item.EmailSent = emailSent
	item.PushSent = pushSent
	item.UpdatedAt = r.now().UTC()
	r.events[id] = item
	return nil
}

func (r *EventRepository) ListTeamIDs(_ context.Context, eventID int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.linksOf(eventID)), nil
}

func (r *EventRepository) ListTeamIDsByEvents(_ context.Context, eventIDs []int64) (map[int64][]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int64][]int64, len(eventIDs))
	for _, id := range eventIDs {
		out[id] = slices.Clone(r.linksOf(id))
	}
	return out, nil
}

func (r *EventRepository) ReplaceTeamLinks(_ context.Context, eventID int64, teamIDs []int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[eventID]; !ok {
		return nil, fmt.Errorf("replace team links event id=%d: %w", eventID, event.ErrNotFound)
	}
	return r.replaceLocked(eventID, teamIDs), nil
}

func (r *EventRepository) ReconcileTeamLinks(_ context.Context, eventID int64, resolve event.ResolveFunc) ([]int64, error) {
	if resolve == nil {
		return nil, fmt.Errorf("resolve func is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[eventID]; !ok {
		return nil, fmt.Errorf("reconcile team links event id=%d: %w", eventID, event.ErrNotFound)
	}
	next, err := resolve(slices.Clone(r.linksOf(eventID)))
	if err != nil {
		return nil, err
	}
	return r.replaceLocked(eventID, next), nil
}

func (r *EventRepository) replaceLocked(eventID int64, teamIDs []int64) []int64 {
	next := event.NormalizeIDs(teamIDs)
	if len(next) == 0 {
		delete(r.links, eventID)
	} else {
		r.links[eventID] = next
	}
	return slices.Clone(next)
}

func (r *EventRepository) linksOf(eventID int64) []int64 {
	if ids, ok := r.links[eventID]; ok {
		return ids
	}
	return []int64{}
}

func (r *EventRepository) filterIDs(match func(event.Event) bool) []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]int64, 0)
	for id, item := range r.events {
		if match(item) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

func cloneEvent(item event.Event) event.Event {
	item.TeamID = cloneID(item.TeamID)
	item.CoachID = cloneID(item.CoachID)
	return item
}

func cloneID(v *int64) *int64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
