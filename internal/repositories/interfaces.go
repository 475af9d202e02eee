package repositories

import (
	"context"
)

// Repository groups the per-collection repositories behind one handle.
// Every query is an equality match on a single column; richer filtering
// happens in the service layer.
type Repository interface {
	User() UserRepository
	Quiz() QuizRepository
	Attempt() AttemptRepository

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
