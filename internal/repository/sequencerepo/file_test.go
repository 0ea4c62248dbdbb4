package sequencerepo_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperror "stockdesk/internal/errors"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/repository/sequencerepo"
)

const key = "lastBillNumber"

func TestFileStore_StartsAtOne(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "sequence.json")
	store := sequencerepo.NewFileStore(path, logger.NewNop())
	ctx := context.Background()

	last, err := store.Last(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)

	n, err := store.Next(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"lastBillNumber":"1"}`, string(raw))
}

func TestFileStore_ContinuesFromExistingValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequence.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"lastBillNumber":"41","other":"7"}`), 0o644))

	store := sequencerepo.NewFileStore(path, logger.NewNop())
	n, err := store.Next(context.Background(), key)

	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	other, err := store.Last(context.Background(), "other")
	require.NoError(t, err)
	assert.Equal(t, int64(7), other)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequence.json")
	ctx := context.Background()

	first := sequencerepo.NewFileStore(path, logger.NewNop())
	_, err := first.Next(ctx, key)
	require.NoError(t, err)
	_, err = first.Next(ctx, key)
	require.NoError(t, err)

	second := sequencerepo.NewFileStore(path, logger.NewNop())
	n, err := second.Next(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequence.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	store := sequencerepo.NewFileStore(path, logger.NewNop())
	_, err := store.Next(context.Background(), key)

	var internal *apperror.InternalError
	assert.ErrorAs(t, err, &internal)
}

func TestFileStore_NonNumericValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequence.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"lastBillNumber":"abc"}`), 0o644))

	store := sequencerepo.NewFileStore(path, logger.NewNop())
	_, err := store.Next(context.Background(), key)

	assert.Error(t, err)
}

func TestFileStore_ConcurrentNextIsUnique(t *testing.T) {
	store := sequencerepo.NewFileStore(filepath.Join(t.TempDir(), "sequence.json"), logger.NewNop())
	ctx := context.Background()

	const workers = 20
	results := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := store.Next(ctx, key)
			assert.NoError(t, err)
			results <- n
		}()
	}
	wg.Wait()
	close(results)

	seen := map[int64]bool{}
	for n := range results {
		assert.False(t, seen[n], "número repetido: %d", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)

	last, err := store.Last(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), last)
}

func TestFileStore_CanceledContext(t *testing.T) {
	store := sequencerepo.NewFileStore(filepath.Join(t.TempDir(), "sequence.json"), logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Next(ctx, key)
	assert.ErrorIs(t, err, context.Canceled)
}
