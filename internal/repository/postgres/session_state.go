package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/storage"
)

type sessionStateRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSessionStateRepository creates a repository over the local_storage table
func NewSessionStateRepository(db *sql.DB, logger *zap.Logger) *sessionStateRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sessionStateRepository{
		db:     db,
		logger: logger,
	}
}

func (r *sessionStateRepository) Get(ctx context.Context, sessionID, key string) ([]byte, bool, error) {
	query := `
		SELECT value
		FROM local_storage
		WHERE session_id = $1 AND key = $2
	`

	var value []byte
	err := r.db.QueryRowContext(ctx, query, sessionID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		r.logger.Error("Failed to get session state", zap.Error(err), zap.String("key", key))
		return nil, false, err
	}
	return value, true, nil
}

func (r *sessionStateRepository) Set(ctx context.Context, sessionID, key string, value []byte) error {
	query := `
		INSERT INTO local_storage (session_id, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, sessionID, key, value, time.Now())
	if err != nil {
		r.logger.Error("Failed to set session state", zap.Error(err), zap.String("key", key))
		return err
	}
	return nil
}

func (r *sessionStateRepository) Delete(ctx context.Context, sessionID, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM local_storage WHERE session_id = $1 AND key = $2`, sessionID, key)
	if err != nil {
		r.logger.Error("Failed to delete session state", zap.Error(err), zap.String("key", key))
		return err
	}
	return nil
}

func (r *sessionStateRepository) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM local_storage WHERE session_id = $1`, sessionID)
	if err != nil {
		r.logger.Error("Failed to delete session", zap.Error(err))
		return err
	}
	return nil
}

// sessionStorage is the storage.LocalStorage view of one session's rows
type sessionStorage struct {
	repo      repository.SessionStateRepository
	sessionID string
}

func (s *sessionStorage) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	return s.repo.Get(ctx, s.sessionID, key)
}

func (s *sessionStorage) SetItem(ctx context.Context, key string, value []byte) error {
	return s.repo.Set(ctx, s.sessionID, key, value)
}

func (s *sessionStorage) RemoveItem(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, s.sessionID, key)
}

// NewStorageFactory hands out session-scoped LocalStorage backed by repo
func NewStorageFactory(repo repository.SessionStateRepository) storage.Factory {
	return func(sessionID string) storage.LocalStorage {
		return &sessionStorage{repo: repo, sessionID: sessionID}
	}
}
