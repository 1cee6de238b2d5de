package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/ghaggin/yoga/internal/model"
	"github.com/ghaggin/yoga/internal/state"
	"go.uber.org/zap"
)

type RegisterForm struct {
	FirstName string `form:"firstName" validate:"required,min=3,max=20"`
	LastName  string `form:"lastName" validate:"required,min=3,max=20"`
	Email     string `form:"email" validate:"required,email"`
	Password  string `form:"password" validate:"required,min=3,max=40"`
}

func (f RegisterForm) Normalize() RegisterForm {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	return f
}

func (f RegisterForm) Valid() bool {
	return validateForm(f.Normalize()) == nil
}

type Register struct {
	base
}

func NewRegister(api API, h *state.Holder, log *zap.Logger) *Register {
	return &Register{base: newBase(api, h, log)}
}

// Submit creates the account and sends the user to the login page.
func (c *Register) Submit(ctx context.Context, form RegisterForm) (Outcome, error) {
	form = form.Normalize()
	if err := validateForm(form); err != nil {
		return Outcome{}, err
	}

	err := c.api.Auth.Register(ctx, model.SignupRequest{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Password:  form.Password,
	})
	if err != nil {
		c.log.Info("register failed", zap.String("email", form.Email), zap.Error(err))
		return Outcome{}, fmt.Errorf("register: %w", err)
	}
	return redirect(PathLogin, ""), nil
}
