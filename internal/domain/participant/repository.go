package participant

import (
	"context"
	"errors"
)

// ErrDuplicate is returned when a row for the same user, or the same
// user-less athlete, already exists on the event.
var ErrDuplicate = errors.New("participant already exists")

// ErrUnknownReference is returned when a row points at a user or athlete
// that does not exist.
var ErrUnknownReference = errors.New("participant references unknown user or athlete")

// Repository describes participant persistence needs from use cases.
type Repository interface {
	ListByEvent(ctx context.Context, eventID int64) ([]Participant, error)
	ListAthleteIDs(ctx context.Context, eventID int64) ([]int64, error)
	ListUserIDs(ctx context.Context, eventID int64) ([]int64, error)
	ListEventIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	FindByUser(ctx context.Context, eventID, userID int64) (Participant, bool, error)
	FindByAthleteWithoutUser(ctx context.Context, eventID, athleteID int64) (Participant, bool, error)
	Create(ctx context.Context, p Participant) (Participant, error)
	// CreateMany inserts rows and returns only those actually inserted;
	// rows conflicting with an existing one are skipped.
	CreateMany(ctx context.Context, rows []Participant) ([]Participant, error)
	UpdateResponse(ctx context.Context, p Participant) error
}
