package middleware

import (
	"context"
	"encoding/gob"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/yoga/internal/config"
	"github.com/ghaggin/yoga/internal/model"
	"github.com/ghaggin/yoga/internal/state"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	identityKey = "identity"
	flashKey    = "flash"
)

type ctxKey int

const holderKey ctxKey = iota

// SessionManager keeps the identity of each browser in an scs session and
// exposes it to handlers as a state.Holder.
type SessionManager struct {
	impl *scs.SessionManager
	log  *zap.Logger
}

type Params struct {
	fx.In

	Config *config.Config
	Log    *zap.Logger
}

func NewSessionManager(p Params) (*SessionManager, error) {
	gob.Register(&model.Identity{})

	sm := &SessionManager{log: p.Log}
	sm.impl = scs.New()
	sm.impl.Lifetime = p.Config.Web.SessionLifetime
	sm.impl.Cookie.Name = "yoga_session"
	sm.impl.Cookie.HttpOnly = true
	sm.impl.Cookie.SameSite = http.SameSiteLaxMode
	sm.impl.Cookie.Secure = p.Config.Web.SecureCookie

	return sm, nil
}

func (s *SessionManager) Wrap(next http.Handler) http.Handler {
	return s.impl.LoadAndSave(s.holder(next))
}

// holder rebuilds the browser's state.Holder for the request and writes
// login and logout back to the session.
func (s *SessionManager) holder(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		h := state.New()
		if identity, ok := s.impl.Get(ctx, identityKey).(*model.Identity); ok {
			h.Restore(*identity)
		}

		replay := true
		cancel := h.Subscribe(func(logged bool) {
			if replay {
				return
			}
			s.store(ctx, h, logged)
		})
		replay = false
		defer cancel()

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, holderKey, h)))
	})
}

func (s *SessionManager) store(ctx context.Context, h *state.Holder, logged bool) {
	if err := s.impl.RenewToken(ctx); err != nil {
		s.log.Error("failed renewing session token", zap.Error(err))
	}

	identity, ok := h.Identity()
	if !logged || !ok {
		s.impl.Remove(ctx, identityKey)
		return
	}
	s.impl.Put(ctx, identityKey, &identity)
}

// Holder returns the request's state holder. Outside Wrap it returns an
// empty, logged out holder.
func Holder(ctx context.Context) *state.Holder {
	h, ok := ctx.Value(holderKey).(*state.Holder)
	if !ok {
		return state.New()
	}
	return h
}

func (s *SessionManager) Flash(ctx context.Context, msg string) {
	if msg == "" {
		return
	}
	s.impl.Put(ctx, flashKey, msg)
}

// PopFlash returns the pending flash message once.
func (s *SessionManager) PopFlash(ctx context.Context) string {
	return s.impl.PopString(ctx, flashKey)
}
