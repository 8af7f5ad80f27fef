package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/brandscope/internal/session"
	"github.com/sells-group/brandscope/internal/wizard"
	anthropicpkg "github.com/sells-group/brandscope/pkg/anthropic"
)

// initStore opens the configured session store and runs migrations.
func initStore(ctx context.Context) (session.Store, error) {
	var (
		st  session.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		st, err = session.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		st, err = session.NewSQLite(cfg.Store.SQLitePath)
	}
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initWizard wires the store, guard, and model client into a Wizard.
func initWizard(ctx context.Context) (*wizard.Wizard, session.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	client := anthropicpkg.NewClient(
		cfg.Anthropic.Key,
		anthropicpkg.WithRateLimit(cfg.Anthropic.RequestsPerMinute),
	)

	return wizard.New(st, session.NewGuard(), client, *cfg), st, nil
}
