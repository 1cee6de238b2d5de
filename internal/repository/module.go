package repository

import (
	"context"
	"fmt"

	"github.com/ghaggin/yoga/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(New),
)

type Params struct {
	fx.In

	LC     fx.Lifecycle
	Config *config.Config
	Log    *zap.Logger
}

// New opens the store selected by config. The json store is written back
// and the sqlite store closed when the app stops.
func New(p Params) (Repository, error) {
	var (
		repo Repository
		stop func(context.Context) error
	)

	switch p.Config.API.Store {
	case config.StoreJSON:
		r := NewJSON(p.Config.API.JSONPath, p.Log)
		repo, stop = r, r.Flush
	case config.StoreSQLite:
		r, err := OpenSQLite(p.Config.API.SQLitePath)
		if err != nil {
			return nil, err
		}
		repo, stop = r, r.Close
	default:
		return nil, fmt.Errorf("unknown store %q", p.Config.API.Store)
	}

	p.Log.Info("repository opened", zap.String("store", p.Config.API.Store))

	p.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !p.Config.API.Seed {
				return nil
			}
			return Seed(ctx, repo, p.Log)
		},
		OnStop: stop,
	})

	return repo, nil
}
