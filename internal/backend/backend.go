// Package backend assembles the account, profile, and task services
// selected in the settings into an app.Backend.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"

	"todowork/internal/app"
	"todowork/internal/backend/firebase"
	"todowork/internal/backend/googletasks"
	"todowork/internal/backend/local"
	"todowork/internal/backend/mongostore"
	"todowork/internal/config"
)

// Open connects every backend named in cfg.Settings. Shared resources (the
// SQLite database, the Mongo client) are opened once. The returned
// Backend's Closer releases all of them.
func Open(ctx context.Context, cfg *config.Config) (b app.Backend, err error) {
	s := cfg.Settings
	var closers closeAll
	defer func() {
		if err != nil {
			_ = closers.Close()
		}
	}()

	var db *local.Store
	openLocal := func() (*local.Store, error) {
		if db != nil {
			return db, nil
		}
		if err := cfg.EnsureDir(); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		st, err := local.Open(cfg.DatabasePath())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		db = st
		closers = append(closers, st)
		return st, nil
	}

	var mongo *mongostore.Store
	openMongo := func() (*mongostore.Store, error) {
		if mongo != nil {
			return mongo, nil
		}
		st, err := mongostore.Connect(ctx, s.Mongo.URI, s.Mongo.Database)
		if err != nil {
			return nil, err
		}
		mongo = st
		closers = append(closers, st)
		return st, nil
	}

	switch s.Accounts {
	case config.BackendLocal:
		st, err := openLocal()
		if err != nil {
			return app.Backend{}, err
		}
		b.Accounts = local.NewAccounts(st, cfg.SessionPath())
	case config.BackendFirebase:
		if err := cfg.EnsureDir(); err != nil {
			return app.Backend{}, fmt.Errorf("failed to create config directory: %w", err)
		}
		acc, err := firebase.New(ctx, cfg)
		if err != nil {
			return app.Backend{}, err
		}
		b.Accounts = acc
	default:
		return app.Backend{}, fmt.Errorf("unknown accounts backend: %s", s.Accounts)
	}

	switch s.Profiles {
	case config.BackendLocal:
		st, err := openLocal()
		if err != nil {
			return app.Backend{}, err
		}
		b.Profiles = st
	case config.BackendMongo:
		st, err := openMongo()
		if err != nil {
			return app.Backend{}, err
		}
		b.Profiles = st
	default:
		return app.Backend{}, fmt.Errorf("unknown profiles backend: %s", s.Profiles)
	}

	switch s.Tasks {
	case config.BackendLocal:
		st, err := openLocal()
		if err != nil {
			return app.Backend{}, err
		}
		b.Tasks = st
	case config.BackendMongo:
		st, err := openMongo()
		if err != nil {
			return app.Backend{}, err
		}
		b.Tasks = st
	case config.BackendGoogle:
		c, err := googletasks.New(ctx, cfg)
		if err != nil {
			return app.Backend{}, err
		}
		b.Tasks = c
	default:
		return app.Backend{}, fmt.Errorf("unknown tasks backend: %s", s.Tasks)
	}

	b.Closer = closers
	return b, nil
}

type closeAll []io.Closer

func (c closeAll) Close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
