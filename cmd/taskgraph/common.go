package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/metalagman/taskgraph/internal/config"
	"github.com/metalagman/taskgraph/internal/db"
	"github.com/metalagman/taskgraph/internal/graph"
)

// withStore loads config, opens the database, and runs fn with a store.
func withStore(ctx context.Context, fn func(ctx context.Context, store *graph.Store, cfg config.Config) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := cfg.Database.Path
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	conn, err := db.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	return fn(ctx, graph.NewStore(conn), cfg)
}
