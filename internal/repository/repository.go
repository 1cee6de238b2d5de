package repository

import (
	"context"
	"errors"

	"github.com/ghaggin/yoga/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Repository stores accounts, teachers and booking sessions. Add* methods
// assign the id and timestamps of the value passed in.
type Repository interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	AddUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id int64) error

	GetTeachers(ctx context.Context) ([]model.Teacher, error)
	GetTeacher(ctx context.Context, id int64) (*model.Teacher, error)
	AddTeacher(ctx context.Context, teacher *model.Teacher) error

	GetSessions(ctx context.Context) ([]model.Session, error)
	GetSession(ctx context.Context, id int64) (*model.Session, error)
	AddSession(ctx context.Context, session *model.Session) error
	UpdateSession(ctx context.Context, session *model.Session) error
	DeleteSession(ctx context.Context, id int64) error
}
