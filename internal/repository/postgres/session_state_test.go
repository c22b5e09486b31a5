package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/config"
)

type sessionStateMock struct {
	rows map[string][]byte
}

func (m *sessionStateMock) Get(_ context.Context, sessionID, key string) ([]byte, bool, error) {
	v, ok := m.rows[sessionID+"/"+key]
	return v, ok, nil
}

func (m *sessionStateMock) Set(_ context.Context, sessionID, key string, value []byte) error {
	m.rows[sessionID+"/"+key] = value
	return nil
}

func (m *sessionStateMock) Delete(_ context.Context, sessionID, key string) error {
	delete(m.rows, sessionID+"/"+key)
	return nil
}

func (m *sessionStateMock) DeleteSession(context.Context, string) error { return nil }

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: "5432", User: "shop", Password: "pw", DBName: "storefront", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=shop password=pw dbname=storefront sslmode=disable", dsn)
}

func TestStorageFactory_ScopesBySession(t *testing.T) {
	repo := &sessionStateMock{rows: map[string][]byte{}}
	factory := NewStorageFactory(repo)
	ctx := context.Background()

	a, b := factory("a"), factory("b")
	require.NoError(t, a.SetItem(ctx, "cart", []byte(`[]`)))

	_, ok, err := b.GetItem(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := a.GetItem(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(v))

	require.NoError(t, a.RemoveItem(ctx, "cart"))
	assert.Empty(t, repo.rows)
}
