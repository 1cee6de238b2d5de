package client

import (
	"context"
	"net/http"

	"github.com/ghaggin/yoga/internal/model"
)

type TeacherClient struct {
	c *Client
}

func (t *TeacherClient) List(ctx context.Context) ([]model.Teacher, error) {
	var teachers []model.Teacher
	if err := t.c.do(ctx, http.MethodGet, "/teacher", nil, &teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

func (t *TeacherClient) Get(ctx context.Context, id int64) (*model.Teacher, error) {
	var teacher model.Teacher
	if err := t.c.do(ctx, http.MethodGet, "/teacher"+idPath(id), nil, &teacher); err != nil {
		return nil, err
	}
	return &teacher, nil
}
