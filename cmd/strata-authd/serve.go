// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/stratacms/strata-auth/auth"
	"github.com/stratacms/strata-auth/clock"
	"github.com/stratacms/strata-auth/internal/logging"
	"github.com/stratacms/strata-auth/pkg/errutil"
	"github.com/stratacms/strata-auth/schema"
	"github.com/stratacms/strata-auth/session"
	"github.com/stratacms/strata-auth/store/postgres"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the auth operations over HTTP",
		Long: `Start the development HTTP server. Each schema operation is mounted
under /auth/<operationName>; /metrics exposes Prometheus metrics.`,
		RunE: runServe,
	}
	flags := cmd.Flags()
	flags.String("config", "", "config file path")
	flags.String("listen_addr", "", "listen address (overrides config)")
	flags.String("database_url", "", "PostgreSQL connection string (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config") //nolint:errcheck // flag is registered above
	cfg, err := LoadConfig(configPath, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("strata-authd", version, cfg.LogFormat)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	ext, sessionRepo, err := buildExtension(cfg, pool, logger)
	if err != nil {
		return err
	}

	go sweepExpiredSessions(ctx, sessionRepo, clock.Real(), sessionSweepInterval, logger)

	mux := http.NewServeMux()
	for _, op := range ext.Operations() {
		if !op.Enabled {
			continue
		}
		mux.Handle("POST /auth/"+op.Name, operationHandler(op, logger))
	}
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           sessionTokenMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	logger.Info("listening", "addr", cfg.ListenAddr, "list", cfg.List.Key)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return oops.Code("SERVER_SHUTDOWN_FAILED").Wrap(err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return oops.Code("SERVER_FAILED").Wrap(err)
	}
}

// buildExtension wires the postgres-backed stores into the schema extension.
// The session repository is returned alongside so the caller can run the
// expiry sweep against it.
func buildExtension(cfg Config, db postgres.DB, logger *slog.Logger) (*schema.Extension, *postgres.SessionRepository, error) {
	items, err := postgres.NewItemStore(db, cfg.List.Table)
	if err != nil {
		return nil, nil, err
	}
	sessionRepo, err := postgres.NewSessionRepository(db)
	if err != nil {
		return nil, nil, err
	}
	sessions, err := session.NewManagerWithOptions(sessionRepo, clock.Real(), cfg.SessionLifetime)
	if err != nil {
		return nil, nil, err
	}

	authCfg := auth.Config{
		ListKey:           cfg.List.Key,
		IdentityField:     cfg.List.IdentityField,
		SecretField:       cfg.List.SecretField,
		ProtectIdentities: cfg.ProtectIdentities,
	}
	if cfg.PasswordReset.Enabled {
		authCfg.PasswordReset = &auth.TokenLinkConfig{
			TokensValidFor: cfg.PasswordReset.TokensValidFor,
			SendToken:      logTokenDelivery(logger, auth.TokenTypePasswordReset),
		}
	}
	if cfg.MagicAuth.Enabled {
		authCfg.MagicAuth = &auth.TokenLinkConfig{
			TokensValidFor: cfg.MagicAuth.TokensValidFor,
			SendToken:      logTokenDelivery(logger, auth.TokenTypeMagicAuth),
		}
	}

	ext, err := schema.New(authCfg, schema.Deps{
		Store:    items,
		Hasher:   auth.NewArgon2idHasher(),
		Sessions: sessions,
		Logger:   logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return ext, sessionRepo, nil
}

// sessionSweepInterval is how often expired sessions are reaped.
const sessionSweepInterval = time.Hour

// sweepExpiredSessions deletes expired sessions on a fixed interval until ctx
// is cancelled. Sweep failures are logged and retried on the next tick.
func sweepExpiredSessions(ctx context.Context, repo session.Repository, clk clock.Clock, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx, clk.Now())
			if err != nil {
				errutil.LogError(logger, "failed to delete expired sessions", err)
				continue
			}
			if n > 0 {
				logger.Info("deleted expired sessions", "count", n)
			}
		}
	}
}

// logTokenDelivery is the demo delivery callback: real deployments send
// email or SMS here. The token itself is not logged.
func logTokenDelivery(logger *slog.Logger, typ auth.TokenType) auth.SendTokenFunc {
	return func(ctx context.Context, params auth.TokenParams) {
		logger.InfoContext(ctx, "auth token issued",
			"token_type", string(typ),
			"item_id", params.ItemID,
			"identity", params.Identity,
		)
	}
}

// operationHandler adapts one schema operation to an HTTP endpoint taking a
// JSON-encoded argument object.
func operationHandler(op schema.Operation, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var args schema.Args
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
		}

		result, err := op.Resolve(r.Context(), args)
		if err != nil {
			errutil.LogError(logger, "operation failed", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			errutil.LogError(logger, "encode response", err)
		}
	})
}

// sessionTokenMiddleware lifts a bearer token into the request context so
// the session strategy can resolve it.
func sessionTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if header := r.Header.Get("Authorization"); header != "" {
			if token, found := strings.CutPrefix(header, "Bearer "); found {
				r = r.WithContext(session.WithToken(r.Context(), token))
			}
		}
		next.ServeHTTP(w, r)
	})
}
