// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratacms/strata-auth/auth"
	"github.com/stratacms/strata-auth/pkg/errutil"
	"github.com/stratacms/strata-auth/session"
	"github.com/stratacms/strata-auth/store/postgres"
)

var sessionColumns = []string{"id", "list_key", "item_id", "token_hash", "expires_at", "created_at"}

func newMockSessionRepo(t *testing.T) (*postgres.SessionRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)

	repo, err := postgres.NewSessionRepository(mock)
	require.NoError(t, err)
	return repo, mock
}

func TestSessionRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	repo, mock := newMockSessionRepo(t)

	sess, err := session.New("User", "item-1", "hash", now, now.Add(time.Hour))
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO auth_sessions`).
		WithArgs(sess.ID.String(), "User", "item-1", "hash", sess.ExpiresAt, sess.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(ctx, sess))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_GetByTokenHash(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	t.Run("returns the session", func(t *testing.T) {
		repo, mock := newMockSessionRepo(t)
		id := ulid.Make()

		rows := pgxmock.NewRows(sessionColumns).
			AddRow(id.String(), "User", "item-1", "hash", now.Add(time.Hour), now)
		mock.ExpectQuery(`WHERE token_hash = \$1`).
			WithArgs("hash").
			WillReturnRows(rows)

		sess, err := repo.GetByTokenHash(ctx, "hash")
		require.NoError(t, err)
		assert.Equal(t, id, sess.ID)
		assert.Equal(t, "User", sess.ListKey)
		assert.Equal(t, "item-1", sess.ItemID)
	})

	t.Run("missing session wraps ErrNotFound", func(t *testing.T) {
		repo, mock := newMockSessionRepo(t)

		mock.ExpectQuery(`WHERE token_hash = \$1`).
			WithArgs("missing").
			WillReturnRows(pgxmock.NewRows(sessionColumns))

		_, err := repo.GetByTokenHash(ctx, "missing")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("unparseable id is an error", func(t *testing.T) {
		repo, mock := newMockSessionRepo(t)

		rows := pgxmock.NewRows(sessionColumns).
			AddRow("not-a-ulid", "User", "item-1", "hash", now.Add(time.Hour), now)
		mock.ExpectQuery(`WHERE token_hash = \$1`).
			WithArgs("hash").
			WillReturnRows(rows)

		_, err := repo.GetByTokenHash(ctx, "hash")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "SESSION_GET_FAILED")
		errutil.AssertErrorContext(t, err, "operation", "parse session id")
	})
}

func TestSessionRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes by id", func(t *testing.T) {
		repo, mock := newMockSessionRepo(t)
		id := ulid.Make()

		mock.ExpectExec(`DELETE FROM auth_sessions WHERE id = \$1`).
			WithArgs(id.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, repo.Delete(ctx, id))
	})

	t.Run("missing session wraps ErrNotFound", func(t *testing.T) {
		repo, mock := newMockSessionRepo(t)
		id := ulid.Make()

		mock.ExpectExec(`DELETE FROM auth_sessions WHERE id = \$1`).
			WithArgs(id.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.Delete(ctx, id)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	repo, mock := newMockSessionRepo(t)

	mock.ExpectExec(`DELETE FROM auth_sessions WHERE expires_at < \$1`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
