package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ghaggin/yoga/internal/api"
	"github.com/ghaggin/yoga/internal/config"
	"github.com/ghaggin/yoga/internal/web"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	var mode = flag.String("mode", "", "either api or web")
	flag.Parse()

	deps := fx.Options(
		fx.Provide(
			zap.NewDevelopment,
			config.New,
		),
	)

	var app *fx.App
	switch config.Mode(*mode) {
	case config.ModeAPI:
		app = fx.New(
			deps,
			api.Module,
			fx.Invoke(api.RegisterHooks),
		)
	case config.ModeWeb:
		app = fx.New(
			deps,
			web.Module,
			fx.Invoke(web.RegisterHooks),
		)
	default:
		fmt.Fprintf(os.Stderr, "unrecognized mode %q, want %q or %q\n", *mode, config.ModeAPI, config.ModeWeb)
		os.Exit(2)
	}

	app.Run()
}
