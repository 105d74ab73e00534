package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunnerEnsureRunsOnce(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	r := &Runner{apply: func(ctx context.Context, _ *sql.DB) error {
		calls.Add(1)
		<-release
		return nil
	}}

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.Ensure(context.Background())
		}(i)
	}
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
	for _, err := range errs {
		require.NoError(t, err)
	}
	require.NoError(t, r.Ensure(context.Background()))
	require.Equal(t, int32(1), calls.Load())
}

func TestRunnerEnsureSharesError(t *testing.T) {
	boom := errors.New("boom")
	var calls int
	r := &Runner{apply: func(ctx context.Context, _ *sql.DB) error {
		calls++
		return boom
	}}

	require.ErrorIs(t, r.Ensure(context.Background()), boom)
	require.ErrorIs(t, r.Ensure(context.Background()), boom)
	require.Equal(t, 1, calls)
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(embedMigrations, migrationDir+"/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	body, err := fs.ReadFile(embedMigrations, files[0])
	require.NoError(t, err)
	require.Contains(t, string(body), "-- +goose Up")
	require.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS purchase_orders")
	require.Contains(t, string(body), "bid_amount    NUMERIC CHECK (bid_amount >= 0)")
}
