// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

// Package postgres provides PostgreSQL implementations of the auth plugin's
// storage interfaces.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/stratacms/strata-auth/auth"
)

// DB is the pgx pool subset the repositories use. pgxpool.Pool satisfies it,
// as does pgxmock.PgxPoolIface in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ItemStore implements auth.ItemStore against a single identity-list table.
type ItemStore struct {
	db    DB
	table string
}

// NewItemStore creates an ItemStore for the given table. The table name is
// quoted on every query, so list keys that collide with SQL keywords work.
func NewItemStore(db DB, table string) (*ItemStore, error) {
	if db == nil {
		return nil, oops.Code("STORE_CONFIG_INVALID").Errorf("database handle is required")
	}
	if table == "" {
		return nil, oops.Code("STORE_CONFIG_INVALID").Errorf("table name is required")
	}
	return &ItemStore{db: db, table: pgx.Identifier{table}.Sanitize()}, nil
}

const itemColumns = `id, identity, secret_hash,
	       password_reset_token, password_reset_issued_at, password_reset_redeemed_at,
	       magic_auth_token, magic_auth_issued_at, magic_auth_redeemed_at`

// FindByIdentity returns every item whose identity exactly equals value.
// Matching is case-sensitive by contract, which the = operator satisfies.
func (s *ItemStore) FindByIdentity(ctx context.Context, value string) ([]*auth.Item, error) {
	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM %s WHERE identity = $1
	`, itemColumns, s.table), value)
	if err != nil {
		return nil, oops.Code("ITEM_FIND_FAILED").
			With("operation", "find items by identity").
			Wrap(err)
	}
	defer rows.Close()

	var items []*auth.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, oops.Code("ITEM_FIND_FAILED").
				With("operation", "scan item row").
				Wrap(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ITEM_FIND_FAILED").
			With("operation", "iterate item rows").
			Wrap(err)
	}
	return items, nil
}

// GetByID retrieves a single item.
func (s *ItemStore) GetByID(ctx context.Context, id string) (*auth.Item, error) {
	row := s.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = $1
	`, itemColumns, s.table), id)

	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ITEM_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ITEM_GET_FAILED").
			With("operation", "get item by id").
			With("id", id).
			Wrap(err)
	}
	return item, nil
}

// Count returns the number of items in the list.
func (s *ItemStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&count)
	if err != nil {
		return 0, oops.Code("ITEM_COUNT_FAILED").
			With("operation", "count items").
			Wrap(err)
	}
	return count, nil
}

// Create stores a new item. A duplicate identity is reported with the
// ITEM_IDENTITY_TAKEN code so callers can distinguish it from plain faults.
func (s *ItemStore) Create(ctx context.Context, item *auth.Item) error {
	now := time.Now()
	_, err := s.db.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, identity, secret_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, s.table),
		item.ID,
		item.Identity,
		nullable(item.SecretHash),
		now,
		now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("ITEM_IDENTITY_TAKEN").
				With("identity", item.Identity).
				Wrap(err)
		}
		return oops.Code("ITEM_CREATE_FAILED").
			With("operation", "insert item").
			Wrap(err)
	}
	return nil
}

// SetTokenState overwrites the lifecycle fields for one token type.
func (s *ItemStore) SetTokenState(ctx context.Context, itemID string, typ auth.TokenType, state auth.TokenState) error {
	var prefix string
	switch typ {
	case auth.TokenTypePasswordReset:
		prefix = "password_reset"
	case auth.TokenTypeMagicAuth:
		prefix = "magic_auth"
	default:
		return typ.Validate()
	}

	tag, err := s.db.Exec(ctx, fmt.Sprintf(`
		UPDATE %s
		SET %s_token = $1, %s_issued_at = $2, %s_redeemed_at = $3, updated_at = $4
		WHERE id = $5
	`, s.table, prefix, prefix, prefix),
		nullable(state.Token),
		state.IssuedAt,
		state.RedeemedAt,
		time.Now(),
		itemID,
	)
	if err != nil {
		return oops.Code("ITEM_TOKEN_UPDATE_FAILED").
			With("operation", "update token state").
			With("token_type", string(typ)).
			With("item_id", itemID).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("ITEM_NOT_FOUND").
			With("item_id", itemID).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// SetSecret replaces the stored secret hash for an item.
func (s *ItemStore) SetSecret(ctx context.Context, itemID, secretHash string) error {
	tag, err := s.db.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET secret_hash = $1, updated_at = $2 WHERE id = $3
	`, s.table),
		nullable(secretHash),
		time.Now(),
		itemID,
	)
	if err != nil {
		return oops.Code("ITEM_SECRET_UPDATE_FAILED").
			With("operation", "update secret hash").
			With("item_id", itemID).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("ITEM_NOT_FOUND").
			With("item_id", itemID).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanItem reads one item row in itemColumns order.
func scanItem(row pgx.Row) (*auth.Item, error) {
	var (
		item       auth.Item
		secretHash *string
		prToken    *string
		maToken    *string
	)
	err := row.Scan(
		&item.ID,
		&item.Identity,
		&secretHash,
		&prToken,
		&item.PasswordReset.IssuedAt,
		&item.PasswordReset.RedeemedAt,
		&maToken,
		&item.MagicAuth.IssuedAt,
		&item.MagicAuth.RedeemedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with operation context
	}
	if secretHash != nil {
		item.SecretHash = *secretHash
	}
	if prToken != nil {
		item.PasswordReset.Token = *prToken
	}
	if maToken != nil {
		item.MagicAuth.Token = *maToken
	}
	return &item, nil
}

// nullable maps the empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
