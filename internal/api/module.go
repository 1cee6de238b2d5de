package api

import (
	"github.com/ghaggin/yoga/internal/auth"
	"github.com/ghaggin/yoga/internal/repository"
	"go.uber.org/fx"
)

var Module = fx.Options(
	repository.Module,
	fx.Provide(
		auth.NewTokensFromConfig,
		New,
		NewController,
	),
)
