package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ghaggin/yoga/internal/auth"
	"github.com/ghaggin/yoga/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type repoFactory struct {
	name string
	open func(t *testing.T) Repository
}

func factories() []repoFactory {
	return []repoFactory{
		{
			name: "json",
			open: func(t *testing.T) Repository {
				return NewJSON(filepath.Join(t.TempDir(), "yoga.json"), zap.NewNop())
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) Repository {
				r, err := OpenSQLite(filepath.Join(t.TempDir(), "yoga.db"))
				require.NoError(t, err)
				t.Cleanup(func() { r.Close(context.Background()) })
				return r
			},
		},
	}
}

func eachRepo(t *testing.T, fn func(t *testing.T, r Repository)) {
	for _, f := range factories() {
		t.Run(f.name, func(t *testing.T) {
			fn(t, f.open(t))
		})
	}
}

func newUser(email string) *model.User {
	return &model.User{Email: email, FirstName: "Jane", LastName: "Doe", Password: "hash"}
}

func TestUsers(t *testing.T) {
	eachRepo(t, func(t *testing.T, r Repository) {
		require := require.New(t)
		ctx := context.Background()

		u := newUser("jane@doe.com")
		require.NoError(r.AddUser(ctx, u))
		require.NotZero(u.ID)
		require.False(u.CreatedAt.IsZero())

		got, err := r.GetUser(ctx, u.ID)
		require.NoError(err)
		require.Equal("jane@doe.com", got.Email)
		require.Equal("hash", got.Password)

		got, err = r.GetUserByEmail(ctx, "JANE@doe.com")
		require.NoError(err)
		require.Equal(u.ID, got.ID)

		require.ErrorIs(r.AddUser(ctx, newUser("jane@doe.com")), ErrConflict)

		other := newUser("john@doe.com")
		require.NoError(r.AddUser(ctx, other))
		require.NotEqual(u.ID, other.ID)

		require.NoError(r.DeleteUser(ctx, u.ID))
		_, err = r.GetUser(ctx, u.ID)
		require.ErrorIs(err, ErrNotFound)
		require.ErrorIs(r.DeleteUser(ctx, u.ID), ErrNotFound)

		_, err = r.GetUserByEmail(ctx, "nobody@doe.com")
		require.ErrorIs(err, ErrNotFound)
	})
}

func TestTeachers(t *testing.T) {
	eachRepo(t, func(t *testing.T, r Repository) {
		require := require.New(t)
		ctx := context.Background()

		teachers, err := r.GetTeachers(ctx)
		require.NoError(err)
		require.Empty(teachers)

		tt := &model.Teacher{FirstName: "Margot", LastName: "DELAHAYE"}
		require.NoError(r.AddTeacher(ctx, tt))

		got, err := r.GetTeacher(ctx, tt.ID)
		require.NoError(err)
		require.Equal("DELAHAYE", got.LastName)

		_, err = r.GetTeacher(ctx, tt.ID+100)
		require.ErrorIs(err, ErrNotFound)

		teachers, err = r.GetTeachers(ctx)
		require.NoError(err)
		require.Len(teachers, 1)
	})
}

func TestSessions(t *testing.T) {
	eachRepo(t, func(t *testing.T, r Repository) {
		require := require.New(t)
		assert := assert.New(t)
		ctx := context.Background()

		u1, u2 := newUser("a@doe.com"), newUser("b@doe.com")
		require.NoError(r.AddUser(ctx, u1))
		require.NoError(r.AddUser(ctx, u2))

		date := model.NewTime(time.Date(2025, 1, 20, 8, 0, 0, 0, time.UTC))
		s := &model.Session{Name: "Morning flow", Description: "Gentle start", Date: date, TeacherID: 1}
		require.NoError(r.AddSession(ctx, s))
		require.NotZero(s.ID)
		require.NotNil(s.Users)

		got, err := r.GetSession(ctx, s.ID)
		require.NoError(err)
		assert.Equal("Morning flow", got.Name)
		assert.True(date.Equal(got.Date.Time))
		assert.Empty(got.Users)
		assert.NotNil(got.Users)

		got.Users = append(got.Users, u2.ID, u1.ID)
		got.Name = "Evening flow"
		require.NoError(r.UpdateSession(ctx, got))

		got, err = r.GetSession(ctx, s.ID)
		require.NoError(err)
		assert.Equal("Evening flow", got.Name)
		assert.Equal([]int64{u2.ID, u1.ID}, got.Users)
		assert.True(s.CreatedAt.Equal(got.CreatedAt.Time))

		sessions, err := r.GetSessions(ctx)
		require.NoError(err)
		require.Len(sessions, 1)
		assert.Equal([]int64{u2.ID, u1.ID}, sessions[0].Users)

		// deleting an account drops it from the participants
		require.NoError(r.DeleteUser(ctx, u2.ID))
		got, err = r.GetSession(ctx, s.ID)
		require.NoError(err)
		assert.Equal([]int64{u1.ID}, got.Users)

		require.ErrorIs(r.UpdateSession(ctx, &model.Session{ID: s.ID + 100, Name: "x", Date: date}), ErrNotFound)

		require.NoError(r.DeleteSession(ctx, s.ID))
		_, err = r.GetSession(ctx, s.ID)
		require.ErrorIs(err, ErrNotFound)
		require.ErrorIs(r.DeleteSession(ctx, s.ID), ErrNotFound)
	})
}

func TestReturnedSessionIsACopy(t *testing.T) {
	eachRepo(t, func(t *testing.T, r Repository) {
		require := require.New(t)
		ctx := context.Background()

		u := newUser("a@doe.com")
		require.NoError(r.AddUser(ctx, u))
		s := &model.Session{Name: "n", Description: "d", Date: model.NewTime(time.Now()), TeacherID: 1, Users: []int64{u.ID}}
		require.NoError(r.AddSession(ctx, s))

		got, err := r.GetSession(ctx, s.ID)
		require.NoError(err)
		got.Users[0] = 999

		again, err := r.GetSession(ctx, s.ID)
		require.NoError(err)
		require.Equal([]int64{u.ID}, again.Users)
	})
}

func TestSeed(t *testing.T) {
	eachRepo(t, func(t *testing.T, r Repository) {
		require := require.New(t)
		ctx := context.Background()

		require.NoError(Seed(ctx, r, zap.NewNop()))
		require.NoError(Seed(ctx, r, zap.NewNop()))

		teachers, err := r.GetTeachers(ctx)
		require.NoError(err)
		require.Len(teachers, 2)
		require.Equal("Margot", teachers[0].FirstName)
		require.Equal("THIERCELIN", teachers[1].LastName)

		admin, err := r.GetUserByEmail(ctx, AdminEmail)
		require.NoError(err)
		require.True(admin.Admin)

		ok, err := auth.CheckPassword(AdminPassword, admin.Password)
		require.NoError(err)
		require.True(ok)
	})
}

func TestDeletedIDsAreNotReused(t *testing.T) {
	eachRepo(t, func(t *testing.T, r Repository) {
		require := require.New(t)
		ctx := context.Background()
		date := model.NewTime(time.Now())

		a := &model.Session{Name: "a", Description: "d", Date: date, TeacherID: 1}
		b := &model.Session{Name: "b", Description: "d", Date: date, TeacherID: 1}
		require.NoError(r.AddSession(ctx, a))
		require.NoError(r.AddSession(ctx, b))
		require.NoError(r.DeleteSession(ctx, b.ID))

		c := &model.Session{Name: "c", Description: "d", Date: date, TeacherID: 1}
		require.NoError(r.AddSession(ctx, c))
		require.Greater(c.ID, b.ID)

		u1 := newUser("a@doe.com")
		require.NoError(r.AddUser(ctx, u1))
		require.NoError(r.DeleteUser(ctx, u1.ID))
		u2 := newUser("b@doe.com")
		require.NoError(r.AddUser(ctx, u2))
		require.Greater(u2.ID, u1.ID)
	})
}

func TestJSONCounterSurvivesReload(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "yoga.json")
	date := model.NewTime(time.Now())

	r := NewJSON(path, zap.NewNop())
	s := &model.Session{Name: "a", Description: "d", Date: date, TeacherID: 1}
	require.NoError(r.AddSession(ctx, s))
	require.NoError(r.DeleteSession(ctx, s.ID))
	require.NoError(r.Flush(ctx))

	reloaded := NewJSON(path, zap.NewNop())
	next := &model.Session{Name: "b", Description: "d", Date: date, TeacherID: 1}
	require.NoError(reloaded.AddSession(ctx, next))
	require.Greater(next.ID, s.ID)
}

func TestJSONFlushAndReload(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "yoga.json")

	r := NewJSON(path, zap.NewNop())
	u := newUser("jane@doe.com")
	require.NoError(r.AddUser(ctx, u))
	require.NoError(r.AddSession(ctx, &model.Session{Name: "n", Description: "d", Date: model.NewTime(time.Now()), TeacherID: 1, Users: []int64{u.ID}}))
	require.NoError(r.Flush(ctx))

	reloaded := NewJSON(path, zap.NewNop())
	got, err := reloaded.GetUserByEmail(ctx, "jane@doe.com")
	require.NoError(err)
	require.Equal("hash", got.Password)

	sessions, err := reloaded.GetSessions(ctx)
	require.NoError(err)
	require.Len(sessions, 1)
	require.Equal([]int64{u.ID}, sessions[0].Users)
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "yoga.db")

	r, err := OpenSQLite(path)
	require.NoError(err)
	require.NoError(r.AddUser(ctx, newUser("jane@doe.com")))
	require.NoError(r.Close(ctx))

	r, err = OpenSQLite(path)
	require.NoError(err)
	defer r.Close(ctx)

	_, err = r.GetUserByEmail(ctx, "jane@doe.com")
	require.NoError(err)
}
