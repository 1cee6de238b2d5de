// Package web serves the browser client of the booking API. Each browser
// session owns a state.Holder restored from its scs session.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ghaggin/yoga/internal/client"
	"github.com/ghaggin/yoga/internal/config"
	"github.com/ghaggin/yoga/internal/guard"
	"github.com/ghaggin/yoga/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const apiTimeout = 10 * time.Second

type Web struct {
	log      *zap.Logger
	sessions *middleware.SessionManager
	client   *client.Client
	server   *http.Server
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   *config.Config
	Sessions *middleware.SessionManager
	Client   *client.Client
}

// NewClient builds the API client shared by all browser sessions.
func NewClient(cfg *config.Config, log *zap.Logger) *client.Client {
	return client.New(cfg.Web.APIURL, &http.Client{Timeout: apiTimeout}, log)
}

func New(p Params) (*Web, error) {
	s := &Web{
		log:      p.Log,
		sessions: p.Sessions,
		client:   p.Client,
	}

	root := chi.NewRouter()
	root.Use(chimw.RequestID)
	root.Use(chimw.Recoverer)
	root.Use(s.sessions.Wrap)

	root.Get("/", s.home)
	root.Post("/logout", s.logout)

	// Guest
	root.Group(func(r chi.Router) {
		r.Use(s.guard(guard.RequireGuest))
		r.Get("/login", s.getLogin)
		r.Post("/login", s.postLogin)
		r.Get("/register", s.getRegister)
		r.Post("/register", s.postRegister)
	})

	// Auth
	root.Group(func(r chi.Router) {
		r.Use(s.guard(guard.RequireAuth))
		r.Get("/sessions", s.list)

		r.Get("/detail/{id}", s.detail)
		r.Post("/detail/{id}/participate", s.participate)
		r.Post("/detail/{id}/unparticipate", s.unParticipate)

		r.Get("/me", s.me)
		r.Post("/me/delete", s.deleteAccount)

		r.Group(func(r chi.Router) {
			r.Use(s.guard(guard.RequireAdmin))
			r.Get("/sessions/create", s.getForm)
			r.Post("/sessions/create", s.postForm)
			r.Get("/sessions/update/{id}", s.getForm)
			r.Post("/sessions/update/{id}", s.postForm)
			r.Post("/detail/{id}/delete", s.deleteSession)
		})
	})

	root.NotFound(s.notFound)

	s.server = &http.Server{
		Addr:    p.Config.Web.Addr(),
		Handler: root,
	}
	return s, nil
}

func (s *Web) Handler() http.Handler {
	return s.server.Handler
}

func RegisterHooks(lc fx.Lifecycle, s *Web) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.server.Shutdown,
	})
}

func (s *Web) Start(_ context.Context) error {
	go func() {
		s.log.Info("web listening", zap.String("addr", s.server.Addr))
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("error shutting down server", zap.Error(err))
		}
	}()
	return nil
}

// guard turns route checks into middleware.
func (s *Web) guard(checks ...guard.Check) func(http.Handler) http.Handler {
	check := guard.All(checks...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d := check(middleware.Holder(r.Context())); !d.Allow {
				http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
