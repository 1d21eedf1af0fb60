/*
Package cli implements the toolkit command-line interface.

Every command loads configuration (--config, TOOLKIT_CONFIG or the default
locations), builds a zerolog logger, and opens only what it needs: the
SQLite store, the YAML tool catalog, or the full recommendation service.
*/
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/khanglvm/editorial-toolkit/internal/catalog"
	"github.com/khanglvm/editorial-toolkit/internal/config"
	"github.com/khanglvm/editorial-toolkit/internal/logging"
	"github.com/khanglvm/editorial-toolkit/internal/recommend"
	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

// UserEnvVar supplies the default --user.
const UserEnvVar = "TOOLKIT_USER"

const defaultUser = "default"

// AddGlobalFlags registers the flags shared by every subcommand.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().String("config", "", "Config file (default: toolkit.yaml or ~/.editorial-toolkit/config.yaml)")
}

// addUserFlag registers --user on cmd.
func addUserFlag(cmd *cobra.Command, user *string) {
	def := os.Getenv(UserEnvVar)
	if def == "" {
		def = defaultUser
	}
	cmd.Flags().StringVarP(user, "user", "u", def, "User ID (env: "+UserEnvVar+")")
}

// app holds the dependencies of one command invocation.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	out    io.Writer

	store   *storage.SQLiteStorage
	reviews *storage.ReviewCache
	cat     *catalog.Catalog
	svc     *recommend.Service
}

// newApp loads configuration and the logger. Storage and catalog are
// opened on first use.
func newApp(cmd *cobra.Command) (*app, error) {
	var path string
	if f := cmd.Flags().Lookup("config"); f != nil {
		path = f.Value.String()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})

	return &app{cfg: cfg, logger: logger, out: cmd.OutOrStdout()}, nil
}

// storage opens the database. With required set, an unusable database is
// an error; otherwise the returned store is disabled and reads are empty.
func (a *app) storage(required bool) (*storage.SQLiteStorage, error) {
	if a.store == nil {
		a.store = storage.NewStorage(a.cfg.Database.Path, a.logger)
		if err := a.store.Init(); err != nil && required {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		a.reviews = storage.NewReviewCache(a.store, a.cfg.Cache.ReviewTTL)
	}
	if required && !a.store.Enabled() {
		return nil, errors.New("storage is disabled: set database.path")
	}
	return a.store, nil
}

// catalog loads the tool catalog.
func (a *app) catalog() (*catalog.Catalog, error) {
	if a.cat == nil {
		cat, err := catalog.LoadFile(a.cfg.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("%w\nSet catalog.path in the config file or TOOLKIT_CATALOG_PATH", err)
		}
		a.cat = cat
	}
	return a.cat, nil
}

// service wires the recommendation engine. Storage failures degrade the
// engine instead of failing the command.
func (a *app) service() (*recommend.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}

	cat, err := a.catalog()
	if err != nil {
		return nil, err
	}
	store, _ := a.storage(false)

	breaker := recommend.BreakerSettings{
		FailureThreshold: a.cfg.Breaker.FailureThreshold,
		Timeout:          a.cfg.Breaker.Timeout,
	}
	a.svc = recommend.NewService(
		cat,
		recommend.NewGuardedActivityLog(store, breaker, a.logger),
		recommend.NewGuardedReviewStore(a.reviews, breaker, a.logger),
		recommend.NewGuardedPlaybookStore(store, breaker, a.logger),
		recommend.Options{
			Cooldown:      a.cfg.Recommend.Cooldown,
			ActivityLimit: a.cfg.Recommend.ActivityLimit,
			Concurrency:   a.cfg.Recommend.Concurrency,
			Logger:        a.logger,
		},
	)
	return a.svc, nil
}

// profile returns the stored profile of userID, or an empty one.
func (a *app) profile(ctx context.Context, userID string) storage.Profile {
	store, _ := a.storage(false)
	p, err := store.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			a.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to read profile, using defaults")
		}
		return storage.Profile{UserID: userID}
	}
	return p
}

// Close flushes the service and releases storage and the catalog.
func (a *app) Close() {
	if a.svc != nil {
		a.svc.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to close storage")
		}
	}
	if a.cat != nil {
		_ = a.cat.Close()
	}
}

// printJSON pretty-prints v.
func (a *app) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// orDash renders s, or "-" when empty.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
