package participant

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusInvited   Status = "invited"
	StatusConfirmed Status = "confirmed"
	StatusDeclined  Status = "declined"
	StatusMaybe     Status = "maybe"
)

func ParseStatus(v string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(v))); s {
	case StatusInvited, StatusConfirmed, StatusDeclined, StatusMaybe:
		return s, nil
	default:
		return "", fmt.Errorf("unknown participant status %q", v)
	}
}

// IsResponse reports whether s can be set by an RSVP.
func (s Status) IsResponse() bool {
	switch s {
	case StatusConfirmed, StatusDeclined, StatusMaybe:
		return true
	default:
		return false
	}
}

// Participant is a user and/or athlete attached to an event. Roster-derived
// rows carry only AthleteID.
type Participant struct {
	ID          int64
	EventID     int64
	UserID      *int64
	AthleteID   *int64
	Status      Status
	InvitedAt   time.Time
	RespondedAt *time.Time
}

func (p Participant) Validate() error {
	if p.EventID <= 0 {
		return fmt.Errorf("participant event id is required")
	}
	if p.UserID == nil && p.AthleteID == nil {
		return fmt.Errorf("participant needs a user or an athlete")
	}
	if _, err := ParseStatus(string(p.Status)); err != nil {
		return err
	}
	return nil
}

// Respond applies an RSVP. Responses are re-entrant: the last one wins.
func (p *Participant) Respond(status Status, at time.Time) error {
	if !status.IsResponse() {
		return fmt.Errorf("status %q is not a valid response", status)
	}
	p.Status = status
	respondedAt := at
	p.RespondedAt = &respondedAt
	return nil
}

// Actor identifies who is responding: a user account or an athlete that has
// no account.
type Actor struct {
	UserID    *int64
	AthleteID *int64
}

func (a Actor) Validate() error {
	switch {
	case a.UserID != nil && *a.UserID > 0:
		return nil
	case a.AthleteID != nil && *a.AthleteID > 0:
		return nil
	default:
		return fmt.Errorf("actor needs a user id or an athlete id")
	}
}

// AthleteIDs collects the non-null athlete ids of rows.
func AthleteIDs(rows []Participant) []int64 {
	out := make([]int64, 0, len(rows))
	for _, row := range rows {
		if row.AthleteID != nil {
			out = append(out, *row.AthleteID)
		}
	}
	return out
}
