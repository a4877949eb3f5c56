package athlete

import "context"

// Repository describes athlete lookups needed by the event workflow.
type Repository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]Athlete, error)
	ListIDsByTeams(ctx context.Context, teamIDs []int64) ([]int64, error)
	GetByUserIDs(ctx context.Context, userIDs []int64) ([]Athlete, error)
}
