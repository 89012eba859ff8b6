package storage

import (
	"context"
	"fmt"

	"celflicks/internal/domain/ledger"
	"celflicks/internal/domain/videos"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	pool   *pgxpool.Pool
	Videos videos.Store
	Ledger ledger.Store
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		pool:   db,
		Videos: videos.NewRepository(db),
		Ledger: ledger.NewRepository(db),
	}
}

// Ping reports whether the database behind the repositories is reachable.
func (c *Container) Ping(ctx context.Context) error {
	if c.pool == nil {
		return fmt.Errorf("storage container pool is nil")
	}
	return c.pool.Ping(ctx)
}

// Close releases the pool. Safe to call on a container built without one.
func (c *Container) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}
