package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conceptblog/internal/config"
	"conceptblog/internal/graphdb"
	"conceptblog/internal/graphdb/graphdbtest"
	"conceptblog/internal/logger"
)

func TestRunClosesGraphStoreWhenLedgerFails(t *testing.T) {
	store := graphdbtest.New(nil)
	orig := connectGraph
	connectGraph = func(context.Context, config.Neo4j, *logger.Logger) (graphdb.Store, error) {
		return store, nil
	}
	t.Cleanup(func() { connectGraph = orig })

	cfg := config.Config{DatabaseURL: "sqlite://" + filepath.Join(t.TempDir(), "missing", "ledger.db")}
	err := run(context.Background(), cfg, logger.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "open ledger database")
	assert.True(t, store.Closed)
}
