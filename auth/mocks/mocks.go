// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

// Package mocks provides hand-maintained testify mocks for the auth
// collaborator interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/stratacms/strata-auth/auth"
)

// TestingT is the subset of *testing.T the mock constructors need.
type TestingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockItemStore is a testify mock for auth.ItemStore.
type MockItemStore struct {
	mock.Mock
}

// NewMockItemStore creates a MockItemStore that asserts its expectations
// during test cleanup.
func NewMockItemStore(t TestingT) *MockItemStore {
	m := &MockItemStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockItemStore) FindByIdentity(ctx context.Context, value string) ([]*auth.Item, error) {
	args := m.Called(ctx, value)
	var items []*auth.Item
	if v := args.Get(0); v != nil {
		items = v.([]*auth.Item)
	}
	return items, args.Error(1)
}

func (m *MockItemStore) GetByID(ctx context.Context, id string) (*auth.Item, error) {
	args := m.Called(ctx, id)
	var item *auth.Item
	if v := args.Get(0); v != nil {
		item = v.(*auth.Item)
	}
	return item, args.Error(1)
}

func (m *MockItemStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockItemStore) Create(ctx context.Context, item *auth.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemStore) SetTokenState(ctx context.Context, itemID string, typ auth.TokenType, state auth.TokenState) error {
	args := m.Called(ctx, itemID, typ, state)
	return args.Error(0)
}

func (m *MockItemStore) SetSecret(ctx context.Context, itemID, secretHash string) error {
	args := m.Called(ctx, itemID, secretHash)
	return args.Error(0)
}

// MockSecretHasher is a testify mock for auth.SecretHasher.
type MockSecretHasher struct {
	mock.Mock
}

// NewMockSecretHasher creates a MockSecretHasher that asserts its
// expectations during test cleanup.
func NewMockSecretHasher(t TestingT) *MockSecretHasher {
	m := &MockSecretHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSecretHasher) Hash(secret string) (string, error) {
	args := m.Called(secret)
	return args.String(0), args.Error(1)
}

func (m *MockSecretHasher) Verify(secret, hash string) (bool, error) {
	args := m.Called(secret, hash)
	return args.Bool(0), args.Error(1)
}

// MockSessionStrategy is a testify mock for auth.SessionStrategy.
type MockSessionStrategy struct {
	mock.Mock
}

// NewMockSessionStrategy creates a MockSessionStrategy that asserts its
// expectations during test cleanup.
func NewMockSessionStrategy(t TestingT) *MockSessionStrategy {
	m := &MockSessionStrategy{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSessionStrategy) Start(ctx context.Context, listKey, itemID string) (string, error) {
	args := m.Called(ctx, listKey, itemID)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStrategy) Get(ctx context.Context) (*auth.SessionRef, error) {
	args := m.Called(ctx)
	var ref *auth.SessionRef
	if v := args.Get(0); v != nil {
		ref = v.(*auth.SessionRef)
	}
	return ref, args.Error(1)
}

func (m *MockSessionStrategy) End(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
