package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/riskibarqy/team-events/internal/domain/participant"
)

// ParticipantRepository enforces the same uniqueness rules as the
// event_participants indexes: one row per (event, user) and one user-less row
// per (event, athlete).
type ParticipantRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]participant.Participant
	now    func() time.Time
}

func NewParticipantRepository(rows []participant.Participant) *ParticipantRepository {
	r := &ParticipantRepository{
		rows: make(map[int64]participant.Participant, len(rows)),
		now:  time.Now,
	}
	for _, row := range rows {
		r.rows[row.ID] = cloneParticipant(row)
		if row.ID > r.nextID {
			r.nextID = row.ID
		}
	}
	return r
}

func (r *ParticipantRepository) ListByEvent(_ context.Context, eventID int64) ([]participant.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]participant.Participant, 0)
	for _, row := range r.rows {
		if row.EventID == eventID {
			out = append(out, cloneParticipant(row))
		}
	}
	slices.SortFunc(out, func(a, b participant.Participant) int {
		return compareInt64(a.ID, b.ID)
	})
	return out, nil
}

func (r *ParticipantRepository) ListAthleteIDs(ctx context.Context, eventID int64) ([]int64, error) {
	rows, err := r.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ids := participant.AthleteIDs(rows)
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

func (r *ParticipantRepository) ListUserIDs(ctx context.Context, eventID int64) ([]int64, error) {
	rows, err := r.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if row.UserID != nil {
			ids = append(ids, *row.UserID)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

func (r *ParticipantRepository) ListEventIDsByUser(_ context.Context, userID int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]int64, 0)
	for _, row := range r.rows {
		if row.UserID != nil && *row.UserID == userID {
			out = append(out, row.EventID)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func (r *ParticipantRepository) FindByUser(_ context.Context, eventID, userID int64) (participant.Participant, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, row := range r.rows {
		if row.EventID == eventID && row.UserID != nil && *row.UserID == userID {
			return cloneParticipant(row), true, nil
		}
	}
	return participant.Participant{}, false, nil
}

func (r *ParticipantRepository) FindByAthleteWithoutUser(_ context.Context, eventID, athleteID int64) (participant.Participant, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, row := range r.rows {
		if row.EventID == eventID && row.UserID == nil && row.AthleteID != nil && *row.AthleteID == athleteID {
			return cloneParticipant(row), true, nil
		}
	}
	return participant.Participant{}, false, nil
}

func (r *ParticipantRepository) Create(_ context.Context, p participant.Participant) (participant.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflictsLocked(p) {
		return participant.Participant{}, fmt.Errorf("create participant event id=%d: %w", p.EventID, participant.ErrDuplicate)
	}
	return r.insertLocked(p), nil
}

func (r *ParticipantRepository) CreateMany(_ context.Context, rows []participant.Participant) ([]participant.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]participant.Participant, 0, len(rows))
	for _, row := range rows {
		if r.conflictsLocked(row) {
			continue
		}
		out = append(out, r.insertLocked(row))
	}
	return out, nil
}

func (r *ParticipantRepository) UpdateResponse(_ context.Context, p participant.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.rows[p.ID]
	if !ok {
		return fmt.Errorf("participant id=%d not found", p.ID)
	}
	current.Status = p.Status
	current.RespondedAt = cloneTime(p.RespondedAt)
	r.rows[p.ID] = current
	return nil
}

func (r *ParticipantRepository) insertLocked(p participant.Participant) participant.Participant {
	r.nextID++
	p.ID = r.nextID
	if p.InvitedAt.IsZero() {
		p.InvitedAt = r.now().UTC()
	}
	p = cloneParticipant(p)
	r.rows[p.ID] = p
	return cloneParticipant(p)
}

func (r *ParticipantRepository) conflictsLocked(p participant.Participant) bool {
	for _, row := range r.rows {
		if row.EventID != p.EventID {
			continue
		}
		if p.UserID != nil {
			if row.UserID != nil && *row.UserID == *p.UserID {
				return true
			}
			continue
		}
		if p.AthleteID != nil && row.UserID == nil && row.AthleteID != nil && *row.AthleteID == *p.AthleteID {
			return true
		}
	}
	return false
}

func cloneParticipant(p participant.Participant) participant.Participant {
	p.UserID = cloneID(p.UserID)
	p.AthleteID = cloneID(p.AthleteID)
	p.RespondedAt = cloneTime(p.RespondedAt)
	return p
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
