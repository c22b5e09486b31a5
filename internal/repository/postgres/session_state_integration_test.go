//go:build integration
// +build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/domain"
)

// startPostgres launches a Postgres container with the migrations applied
func startPostgres(t *testing.T) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "storefront",
				"POSTGRES_PASSWORD": "storefront",
				"POSTGRES_DB":       "storefront",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://storefront:storefront@%s:%s/storefront?sslmode=disable", host, port.Port())
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, RunMigrations(db, zap.NewNop()))

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cleanupCancel()

		_ = db.Close()
		_ = container.Terminate(cleanupCtx)
	})
	return db
}

func TestSessionStateRepository_Postgres(t *testing.T) {
	db := startPostgres(t)
	repo := NewSessionStateRepository(db, nil)
	ctx := context.Background()
	session := uuid.New().String()

	_, ok, err := repo.Get(ctx, session, "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, session, "cart", []byte(`[{"productId":"1"}]`)))
	require.NoError(t, repo.Set(ctx, session, "cart", []byte(`[]`)))

	v, ok, err := repo.Get(ctx, session, "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(v))

	require.NoError(t, repo.Delete(ctx, session, "cart"))
	_, ok, err = repo.Get(ctx, session, "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	t.Run("cart survives a restart", func(t *testing.T) {
		factory := NewStorageFactory(repo)
		s := cart.New(cart.NewLocalStorageAdapter(factory(session)), cart.Options{}, nil)
		require.NoError(t, s.AddToCart(domain.ProductSummary{ID: "p1", Price: 450}, 2, "M", "black"))

		reopened := cart.New(cart.NewLocalStorageAdapter(factory(session)), cart.Options{}, nil)
		assert.Equal(t, 2, reopened.CartCount())
		assert.Equal(t, 900.0, reopened.Subtotal())

		require.NoError(t, repo.DeleteSession(ctx, session))
	})

	t.Run("migrations are idempotent", func(t *testing.T) {
		require.NoError(t, RunMigrations(db, zap.NewNop()))
	})
}
