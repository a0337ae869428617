package stats

import "context"

// Repository computes the aggregate summary from registration rows.
type Repository interface {
	Summary(ctx context.Context) (Summary, error)
}
