package client

import (
	"context"
	"net/http"

	"github.com/ghaggin/yoga/internal/model"
)

type UserClient struct {
	c *Client
}

// Get returns nil without error when the API answers with a null body.
func (u *UserClient) Get(ctx context.Context, id int64) (*model.User, error) {
	var user *model.User
	if err := u.c.do(ctx, http.MethodGet, "/user"+idPath(id), nil, &user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *UserClient) Delete(ctx context.Context, id int64) error {
	return u.c.do(ctx, http.MethodDelete, "/user"+idPath(id), nil, nil)
}
