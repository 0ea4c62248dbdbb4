package sequencerepo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdesk/internal/pkg/database"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/repository/sequencerepo"
)

// Integração: requer TEST_DATABASE_URL com as migrações de sql/ aplicadas.
func TestPostgresStore_Integration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL não definido")
	}

	db, err := database.NewPostgresDB(dsn)
	if err != nil {
		t.Skipf("Postgres indisponível: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	k := "test-" + time.Now().Format("150405.000000")
	defer db.ExecContext(ctx, `DELETE FROM document_sequences WHERE name = $1`, k)

	store := sequencerepo.NewPostgresStore(db, 5*time.Second, logger.NewNop())

	last, err := store.Last(ctx, k)
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)

	for want := int64(1); want <= 3; want++ {
		n, err := store.Next(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	last, err = store.Last(ctx, k)
	require.NoError(t, err)
	assert.Equal(t, int64(3), last)
}
