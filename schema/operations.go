// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package schema

import "context"

// OperationKind distinguishes schema mutations from queries.
type OperationKind int

const (
	// KindMutation marks an operation mounted under Mutation.
	KindMutation OperationKind = iota
	// KindQuery marks an operation mounted under Query.
	KindQuery
)

// OperationNames holds the schema names the operations are mounted under.
type OperationNames struct {
	AuthenticateWithPassword   string
	CreateInitial              string
	SendPasswordResetLink      string
	RedeemPasswordResetToken   string
	ValidatePasswordResetToken string
	SendMagicAuthLink          string
	RedeemMagicAuthToken       string
	EndSession                 string
	AuthenticatedItem          string
}

// DefaultOperationNames derives the conventional names for a list key:
// listKey "User" yields authenticateUserWithPassword, createInitialUser, etc.
func DefaultOperationNames(listKey string) OperationNames {
	return OperationNames{
		AuthenticateWithPassword:   "authenticate" + listKey + "WithPassword",
		CreateInitial:              "createInitial" + listKey,
		SendPasswordResetLink:      "send" + listKey + "PasswordResetLink",
		RedeemPasswordResetToken:   "redeem" + listKey + "PasswordResetToken",
		ValidatePasswordResetToken: "validate" + listKey + "PasswordResetToken",
		SendMagicAuthLink:          "send" + listKey + "MagicAuthLink",
		RedeemMagicAuthToken:       "redeem" + listKey + "MagicAuthToken",
		EndSession:                 "endSession",
		AuthenticatedItem:          "authenticatedItem",
	}
}

// Names returns the bound operation names for this extension.
func (e *Extension) Names() OperationNames {
	return e.names
}

// Args carries the parsed arguments of an operation. Unused fields are empty.
type Args struct {
	Identity  string
	Secret    string
	Token     string
	NewSecret string
}

// Operation is one resolvable entry the host mounts on its schema. The set
// is fixed at construction; names come from the extension's configuration.
type Operation struct {
	Kind    OperationKind
	Name    string
	Enabled bool
	Resolve func(ctx context.Context, args Args) (any, error)
}

// Operations returns every operation the extension contributes. Token-link
// operations are present but disabled when their flow is not configured;
// hosts skip disabled entries when composing the schema.
func (e *Extension) Operations() []Operation {
	passwordReset := e.cfg.PasswordReset != nil
	magicAuth := e.cfg.MagicAuth != nil

	return []Operation{
		{
			Kind:    KindMutation,
			Name:    e.names.AuthenticateWithPassword,
			Enabled: true,
			Resolve: func(ctx context.Context, args Args) (any, error) {
				return e.AuthenticateWithPassword(ctx, args.Identity, args.Secret)
			},
		},
		{
			Kind:    KindMutation,
			Name:    e.names.CreateInitial,
			Enabled: true,
			Resolve: func(ctx context.Context, args Args) (any, error) {
				return e.CreateInitial(ctx, args.Identity, args.Secret)
			},
		},
		{
			Kind:    KindMutation,
			Name:    e.names.SendPasswordResetLink,
			Enabled: passwordReset,
			Resolve: func(ctx context.Context, args Args) (any, error) {
				return e.SendPasswordResetLink(ctx, args.Identity)
			},
		},
		{
			Kind:    KindMutation,
			Name:    e.names.RedeemPasswordResetToken,
			Enabled: passwordReset,
			Resolve: func(ctx context.Context, args Args) (any, error) {
				return e.RedeemPasswordResetToken(ctx, args.Identity, args.Token, args.NewSecret)
			},
		},
		{
			Kind:    KindQuery,
			Name:    e.names.ValidatePasswordResetToken,
			Enabled: passwordReset,
			Resolve: func(ctx context.Context, args Args) (any, error) {
				return e.ValidatePasswordResetToken(ctx, args.Identity, args.Token)
			},
		},
		{
			Kind:    KindMutation,
			Name:    e.names.SendMagicAuthLink,
			Enabled: magicAuth,
			Resolve: func(ctx context.Context, args Args) (any, error) {
				return e.SendMagicAuthLink(ctx, args.Identity)
			},
		},
		{
			Kind:    KindMutation,
			Name:    e.names.RedeemMagicAuthToken,
			Enabled: magicAuth,
			Resolve: func(ctx context.Context, args Args) (any, error) {
				return e.RedeemMagicAuthToken(ctx, args.Identity, args.Token)
			},
		},
		{
			Kind:    KindMutation,
			Name:    e.names.EndSession,
			Enabled: true,
			Resolve: func(ctx context.Context, _ Args) (any, error) {
				return e.EndSession(ctx)
			},
		},
		{
			Kind:    KindQuery,
			Name:    e.names.AuthenticatedItem,
			Enabled: true,
			Resolve: func(ctx context.Context, _ Args) (any, error) {
				return e.AuthenticatedItem(ctx)
			},
		},
	}
}
