package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/ghaggin/yoga/internal/model"
	"github.com/ghaggin/yoga/internal/state"
	"go.uber.org/zap"
)

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=3"`
}

func (f LoginForm) Normalize() LoginForm {
	f.Email = strings.TrimSpace(f.Email)
	return f
}

func (f LoginForm) Valid() bool {
	return validateForm(f.Normalize()) == nil
}

type Login struct {
	base
}

func NewLogin(api API, h *state.Holder, log *zap.Logger) *Login {
	return &Login{base: newBase(api, h, log)}
}

// Submit logs in and, on success, stores the returned identity.
func (c *Login) Submit(ctx context.Context, form LoginForm) (Outcome, error) {
	form = form.Normalize()
	if err := validateForm(form); err != nil {
		return Outcome{}, err
	}

	identity, err := c.api.Auth.Login(ctx, model.LoginRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		c.log.Info("login failed", zap.String("email", form.Email), zap.Error(err))
		return Outcome{}, fmt.Errorf("login: %w", err)
	}

	c.state.LogIn(identity)
	return redirect(PathSessions, ""), nil
}
