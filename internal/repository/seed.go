package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ghaggin/yoga/internal/auth"
	"github.com/ghaggin/yoga/internal/model"
	"go.uber.org/zap"
)

const (
	AdminEmail    = "yoga@studio.com"
	AdminPassword = "test!1234"
)

var defaultTeachers = []model.Teacher{
	{FirstName: "Margot", LastName: "DELAHAYE"},
	{FirstName: "Hélène", LastName: "THIERCELIN"},
}

// Seed adds the default teachers and the admin account to an empty store.
// It is a no-op for anything already present.
func Seed(ctx context.Context, r Repository, log *zap.Logger) error {
	teachers, err := r.GetTeachers(ctx)
	if err != nil {
		return fmt.Errorf("listing teachers: %w", err)
	}
	if len(teachers) == 0 {
		for _, t := range defaultTeachers {
			if err := r.AddTeacher(ctx, &t); err != nil {
				return fmt.Errorf("adding teacher: %w", err)
			}
			log.Info("seeded teacher", zap.Int64("id", t.ID), zap.String("name", t.FirstName+" "+t.LastName))
		}
	}

	hash, err := auth.HashPassword(AdminPassword)
	if err != nil {
		return err
	}
	admin := &model.User{
		Email:     AdminEmail,
		FirstName: "Admin",
		LastName:  "Admin",
		Password:  hash,
		Admin:     true,
	}
	err = r.AddUser(ctx, admin)
	if errors.Is(err, ErrConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("adding admin: %w", err)
	}
	log.Info("seeded admin account", zap.String("email", AdminEmail))
	return nil
}
