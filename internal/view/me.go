package view

import (
	"context"
	"fmt"

	"github.com/ghaggin/yoga/internal/model"
	"github.com/ghaggin/yoga/internal/state"
	"go.uber.org/zap"
)

// MeView has a nil User when the API returned no record.
type MeView struct {
	User      *model.User
	CanDelete bool
}

type Me struct {
	base
}

func NewMe(api API, h *state.Holder, log *zap.Logger) *Me {
	return &Me{base: newBase(api, h, log)}
}

func (c *Me) Load(ctx context.Context) (MeView, error) {
	identity, err := c.identity()
	if err != nil {
		return MeView{}, err
	}

	user, err := c.api.Users.Get(ctx, identity.ID)
	if err != nil {
		return MeView{}, fmt.Errorf("fetching user %d: %w", identity.ID, err)
	}

	return MeView{
		User:      user,
		CanDelete: user != nil && !user.Admin,
	}, nil
}

// Delete removes the account, then logs out.
func (c *Me) Delete(ctx context.Context) (Outcome, error) {
	identity, err := c.identity()
	if err != nil {
		return Outcome{}, err
	}

	if err := c.api.Users.Delete(ctx, identity.ID); err != nil {
		return Outcome{}, fmt.Errorf("deleting user %d: %w", identity.ID, err)
	}

	c.state.LogOut()
	return redirect(PathHome, MsgAccountDeleted), nil
}
