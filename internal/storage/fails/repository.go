package fails

import (
	"context"
	"time"
)

// Record is a repository the searcher skipped because classifying it failed
type Record struct {
	Id        uint64    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Repo      string    `json:"repo"`
	Error     string    `json:"error"`
}

type Repository interface {
	Migrate(ctx context.Context) error

	Save(ctx context.Context, repo string, err error) error

	// Recent returns newest records first
	Recent(ctx context.Context, limit uint) ([]*Record, error)
	DeleteById(ctx context.Context, id uint64) error
}

const table = "search_fail"
