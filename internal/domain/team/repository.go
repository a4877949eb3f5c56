package team

import "context"

// Repository describes team lookups needed by the event workflow.
type Repository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]Team, error)
	ListIDsByCoach(ctx context.Context, userID int64) ([]int64, error)
}
