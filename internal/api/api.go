// Package api serves the booking REST API the web client talks to.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/ghaggin/yoga/internal/config"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Server struct {
	log     *zap.Logger
	ctrl    *Controller
	limiter *limiter
	server  *http.Server
	done    chan struct{}
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Config     *config.Config
	Controller *Controller
}

func New(p Params) (*Server, error) {
	s := &Server{
		log:     p.Log,
		ctrl:    p.Controller,
		limiter: newLimiter(p.Config.API.LoginRate, p.Config.API.LoginBurst),
		done:    make(chan struct{}),
	}

	root := chi.NewRouter()
	root.Use(chimw.RequestID)
	root.Use(chimw.Recoverer)
	s.routes(root)
	root.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})

	s.server = &http.Server{
		Addr:    p.Config.API.Addr(),
		Handler: root,
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// RegisterHooks should be invoked by fx
func RegisterHooks(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
}

func (s *Server) Start(_ context.Context) error {
	go s.limiter.run(s.done)
	go func() {
		s.log.Info("api listening", zap.String("addr", s.server.Addr))
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("error starting server", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	close(s.done)
	return s.server.Shutdown(ctx)
}
