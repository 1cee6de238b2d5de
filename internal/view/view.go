// Package view contains the per-page controllers of the booking client. They
// read the session state, call the resource clients and decide where the
// user goes next; rendering is left to the caller.
package view

import (
	"context"
	"errors"

	"github.com/ghaggin/yoga/internal/client"
	"github.com/ghaggin/yoga/internal/model"
	"github.com/ghaggin/yoga/internal/state"
	"go.uber.org/zap"
)

const (
	MsgError          = "An error occurred"
	MsgSessionCreated = "Session created !"
	MsgSessionUpdated = "Session updated !"
	MsgSessionDeleted = "Session deleted !"
	MsgAccountDeleted = "Your account has been deleted !"
)

const (
	PathHome     = "/"
	PathLogin    = "/login"
	PathRegister = "/register"
	PathSessions = "/sessions"
	PathMe       = "/me"
)

var ErrNotLoggedIn = errors.New("not logged in")

type AuthAPI interface {
	Login(ctx context.Context, req model.LoginRequest) (model.Identity, error)
	Register(ctx context.Context, req model.SignupRequest) error
}

type SessionAPI interface {
	List(ctx context.Context) ([]model.Session, error)
	Get(ctx context.Context, id int64) (*model.Session, error)
	Create(ctx context.Context, payload model.Session) (*model.Session, error)
	Update(ctx context.Context, id int64, payload model.Session) (*model.Session, error)
	Delete(ctx context.Context, id int64) error
	Participate(ctx context.Context, sessionID, userID int64) error
	UnParticipate(ctx context.Context, sessionID, userID int64) error
}

type TeacherAPI interface {
	List(ctx context.Context) ([]model.Teacher, error)
	Get(ctx context.Context, id int64) (*model.Teacher, error)
}

type UserAPI interface {
	Get(ctx context.Context, id int64) (*model.User, error)
	Delete(ctx context.Context, id int64) error
}

// API is the slice of the booking API the controllers use.
type API struct {
	Auth     AuthAPI
	Sessions SessionAPI
	Teachers TeacherAPI
	Users    UserAPI
}

// NewAPI binds c to the current identity of h.
func NewAPI(c *client.Client, h *state.Holder) API {
	c = c.WithTokens(h)
	return API{
		Auth:     c.Auth(),
		Sessions: c.Sessions(),
		Teachers: c.Teachers(),
		Users:    c.Users(),
	}
}

// Outcome tells the caller where to navigate and which transient message
// to show there. A zero Outcome means stay on the page.
type Outcome struct {
	Redirect string
	Flash    string
}

func redirect(path, flash string) Outcome {
	return Outcome{Redirect: path, Flash: flash}
}

type base struct {
	api   API
	state *state.Holder
	log   *zap.Logger
}

func newBase(api API, h *state.Holder, log *zap.Logger) base {
	if log == nil {
		log = zap.NewNop()
	}
	return base{api: api, state: h, log: log}
}

func (b base) identity() (model.Identity, error) {
	identity, ok := b.state.Identity()
	if !ok {
		return model.Identity{}, ErrNotLoggedIn
	}
	return identity, nil
}
