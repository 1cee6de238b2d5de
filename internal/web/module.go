package web

import (
	"github.com/ghaggin/yoga/internal/middleware"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		middleware.NewSessionManager,
		NewClient,
		New,
	),
)
