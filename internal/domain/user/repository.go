package user

import "context"

type Repository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]User, error)
}
