package event

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Event is a scheduled activity (practice, game, meeting). Team membership is
// not stored on the event: it lives in event_teams and is projected into View.
type Event struct {
	ID        int64
	Name      string
	StartsAt  time.Time
	Location  string
	TeamID    *int64
	CreatorID int64
	CoachID   *int64
	EmailSent bool
	PushSent  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("event name is required")
	}
	if e.StartsAt.IsZero() {
		return fmt.Errorf("event start time is required")
	}
	if e.CreatorID <= 0 {
		return fmt.Errorf("event creator is required")
	}
	if e.TeamID != nil && *e.TeamID <= 0 {
		return fmt.Errorf("event legacy team id must be positive")
	}
	return nil
}

// LegacyTeamID returns the single-team field when it is set.
func (e Event) LegacyTeamID() (int64, bool) {
	if e.TeamID == nil || *e.TeamID <= 0 {
		return 0, false
	}
	return *e.TeamID, true
}

// View is the read-side projection of an event with its linked teams.
type View struct {
	Event
	TeamIDs []int64
}

// TeamSelection distinguishes "no selection supplied" from "selection
// supplied", where an empty supplied selection clears the links.
type TeamSelection struct {
	set bool
	ids []int64
}

func UnsetTeams() TeamSelection {
	return TeamSelection{}
}

func SelectTeams(ids ...int64) TeamSelection {
	return TeamSelection{set: true, ids: slices.Clone(ids)}
}

func (s TeamSelection) IsSet() bool {
	return s.set
}

func (s TeamSelection) IDs() []int64 {
	return slices.Clone(s.ids)
}

// NormalizeIDs drops non-positive ids, dedupes and sorts ascending.
func NormalizeIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id > 0 {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
