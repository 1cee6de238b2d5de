package view

import (
	"context"
	"fmt"

	"github.com/ghaggin/yoga/internal/model"
	"github.com/ghaggin/yoga/internal/state"
	"go.uber.org/zap"
)

type ListView struct {
	Sessions  []model.Session
	CanCreate bool
}

type List struct {
	base
}

func NewList(api API, h *state.Holder, log *zap.Logger) *List {
	return &List{base: newBase(api, h, log)}
}

// Load fetches the sessions every time the list is entered.
func (c *List) Load(ctx context.Context) (ListView, error) {
	identity, err := c.identity()
	if err != nil {
		return ListView{}, err
	}

	sessions, err := c.api.Sessions.List(ctx)
	if err != nil {
		return ListView{}, fmt.Errorf("listing sessions: %w", err)
	}

	return ListView{
		Sessions:  sessions,
		CanCreate: identity.Admin,
	}, nil
}
