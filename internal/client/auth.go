package client

import (
	"context"
	"net/http"

	"github.com/ghaggin/yoga/internal/model"
)

type AuthClient struct {
	c *Client
}

// Login returns the identity sent back by the API.
func (a *AuthClient) Login(ctx context.Context, req model.LoginRequest) (model.Identity, error) {
	var identity model.Identity
	if err := a.c.do(ctx, http.MethodPost, "/auth/login", req, &identity); err != nil {
		return model.Identity{}, err
	}
	return identity, nil
}

func (a *AuthClient) Register(ctx context.Context, req model.SignupRequest) error {
	return a.c.do(ctx, http.MethodPost, "/auth/register", req, nil)
}
