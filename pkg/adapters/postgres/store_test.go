package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/aretw0/pagecraft/pkg/adapters/postgres"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDatabaseURL(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	url := os.Getenv("PAGECRAFT_TEST_POSTGRES_DSN")
	if url == "" {
		t.Skip("PAGECRAFT_TEST_POSTGRES_DSN not set")
	}
	return url
}

func TestPostgresStore_Contract(t *testing.T) {
	ctx := context.Background()
	db, err := postgres.Open(ctx, testDatabaseURL(t))
	require.NoError(t, err)
	defer db.Close()

	store, err := postgres.New(db, postgres.WithTable("pagecraft_contract_test"))
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(ctx))
	t.Cleanup(func() {
		_, _ = db.ExecContext(ctx, `DROP TABLE IF EXISTS pagecraft_contract_test`)
	})

	ports.RunDocumentStoreContract(t, store)
}

func TestNew_RejectsBadTableName(t *testing.T) {
	_, err := postgres.New(nil, postgres.WithTable("docs; DROP TABLE x"))
	assert.Error(t, err)
}
