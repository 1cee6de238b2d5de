package api

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/ghaggin/yoga/internal/auth"
	"github.com/ghaggin/yoga/internal/model"
	"github.com/ghaggin/yoga/internal/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrBadCredentials       = errors.New("bad credentials")
	ErrEmailTaken           = errors.New("email already taken")
	ErrForbidden            = errors.New("admin rights required")
	ErrNotOwner             = errors.New("not the account owner")
	ErrAlreadyParticipating = errors.New("already participating")
	ErrNotParticipating     = errors.New("not participating")
	ErrUnknownTeacher       = errors.New("unknown teacher")
)

type Controller struct {
	repo   repository.Repository
	tokens *auth.Tokens
	log    *zap.Logger

	// serializes read-modify-write of session participants
	mu sync.Mutex
}

type ControllerParams struct {
	fx.In

	Logger *zap.Logger
	Repo   repository.Repository
	Tokens *auth.Tokens
}

func NewController(p ControllerParams) (*Controller, error) {
	return &Controller{
		log:    p.Logger,
		repo:   p.Repo,
		tokens: p.Tokens,
	}, nil
}

func (c *Controller) Login(ctx context.Context, req model.LoginRequest) (model.Identity, error) {
	u, err := c.repo.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return model.Identity{}, ErrBadCredentials
	}
	if err != nil {
		return model.Identity{}, err
	}

	ok, err := auth.CheckPassword(req.Password, u.Password)
	if err != nil {
		return model.Identity{}, err
	}
	if !ok {
		return model.Identity{}, ErrBadCredentials
	}

	token, err := c.tokens.Issue(u.Email)
	if err != nil {
		return model.Identity{}, err
	}

	return model.Identity{
		Token:     token,
		Type:      model.TokenTypeBearer,
		ID:        u.ID,
		Username:  u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Admin:     u.Admin,
	}, nil
}

func (c *Controller) Register(ctx context.Context, req model.SignupRequest) error {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}

	err = c.repo.AddUser(ctx, &model.User{
		Email:     strings.TrimSpace(req.Email),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  hash,
	})
	if errors.Is(err, repository.ErrConflict) {
		return ErrEmailTaken
	}
	return err
}

// UserByToken resolves a bearer token to its account.
func (c *Controller) UserByToken(ctx context.Context, token string) (*model.User, error) {
	email, err := c.tokens.Subject(token)
	if err != nil {
		return nil, err
	}

	u, err := c.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: account %s no longer exists", auth.ErrInvalidToken, email)
	}
	return u, err
}

func (c *Controller) Sessions(ctx context.Context) ([]model.Session, error) {
	return c.repo.GetSessions(ctx)
}

func (c *Controller) Session(ctx context.Context, id int64) (*model.Session, error) {
	return c.repo.GetSession(ctx, id)
}

func (c *Controller) CreateSession(ctx context.Context, caller *model.User, s *model.Session) error {
	if !caller.Admin {
		return ErrForbidden
	}
	if err := c.checkTeacher(ctx, s.TeacherID); err != nil {
		return err
	}

	s.ID = 0
	s.Users = []int64{}
	return c.repo.AddSession(ctx, s)
}

// UpdateSession keeps the participant list of the stored session.
func (c *Controller) UpdateSession(ctx context.Context, caller *model.User, id int64, s *model.Session) error {
	if !caller.Admin {
		return ErrForbidden
	}
	if err := c.checkTeacher(ctx, s.TeacherID); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.repo.GetSession(ctx, id)
	if err != nil {
		return err
	}

	s.ID = id
	s.Users = current.Users
	return c.repo.UpdateSession(ctx, s)
}

func (c *Controller) DeleteSession(ctx context.Context, caller *model.User, id int64) error {
	if !caller.Admin {
		return ErrForbidden
	}
	return c.repo.DeleteSession(ctx, id)
}

func (c *Controller) Participate(ctx context.Context, sessionID, userID int64) error {
	return c.updateParticipants(ctx, sessionID, userID, func(s *model.Session) error {
		if s.HasUser(userID) {
			return ErrAlreadyParticipating
		}
		s.Users = append(s.Users, userID)
		return nil
	})
}

func (c *Controller) UnParticipate(ctx context.Context, sessionID, userID int64) error {
	return c.updateParticipants(ctx, sessionID, userID, func(s *model.Session) error {
		if !s.HasUser(userID) {
			return ErrNotParticipating
		}
		s.Users = slices.DeleteFunc(s.Users, func(id int64) bool { return id == userID })
		return nil
	})
}

func (c *Controller) updateParticipants(ctx context.Context, sessionID, userID int64, change func(*model.Session) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.repo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if _, err := c.repo.GetUser(ctx, userID); err != nil {
		return err
	}

	if err := change(s); err != nil {
		return err
	}

	c.log.Debug("participants changed",
		zap.Int64("session", sessionID),
		zap.Int64("user", userID),
		zap.Int("count", len(s.Users)),
	)
	return c.repo.UpdateSession(ctx, s)
}

func (c *Controller) checkTeacher(ctx context.Context, id int64) error {
	_, err := c.repo.GetTeacher(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUnknownTeacher
	}
	return err
}

func (c *Controller) Teachers(ctx context.Context) ([]model.Teacher, error) {
	return c.repo.GetTeachers(ctx)
}

func (c *Controller) Teacher(ctx context.Context, id int64) (*model.Teacher, error) {
	return c.repo.GetTeacher(ctx, id)
}

func (c *Controller) User(ctx context.Context, id int64) (*model.User, error) {
	u, err := c.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	public := u.Public()
	return &public, nil
}

// DeleteUser only lets an account delete itself.
func (c *Controller) DeleteUser(ctx context.Context, caller *model.User, id int64) error {
	if _, err := c.repo.GetUser(ctx, id); err != nil {
		return err
	}
	if caller.ID != id {
		return ErrNotOwner
	}
	return c.repo.DeleteUser(ctx, id)
}
