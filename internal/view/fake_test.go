package view

import (
	"context"

	"github.com/ghaggin/yoga/internal/client"
	"github.com/ghaggin/yoga/internal/model"
	"github.com/ghaggin/yoga/internal/state"
)

var (
	adminIdentity = model.Identity{ID: 1, Username: "yoga@studio.com", FirstName: "Admin", LastName: "Admin", Admin: true, Token: "fake-bearer-token", Type: "Bearer"}
	userIdentity  = model.Identity{ID: 2, Username: "john.doe@example.com", FirstName: "John", LastName: "Doe", Admin: false, Token: "fake-bearer-token", Type: "Bearer"}
)

func errStatus(status int) error {
	return &client.RequestError{StatusCode: status}
}

func loggedIn(identity model.Identity) *state.Holder {
	h := state.New()
	h.LogIn(identity)
	return h
}

// fakeAPI implements every API interface; unset funcs succeed with zero values.
// calls records the order of invocations.
type fakeAPI struct {
	calls []string

	loginFn         func(model.LoginRequest) (model.Identity, error)
	registerFn      func(model.SignupRequest) error
	listSessionsFn  func() ([]model.Session, error)
	getSessionFn    func(id int64) (*model.Session, error)
	createFn        func(model.Session) (*model.Session, error)
	updateFn        func(id int64, s model.Session) (*model.Session, error)
	deleteSessionFn func(id int64) error
	participateFn   func(sessionID, userID int64) error
	unParticipateFn func(sessionID, userID int64) error
	listTeachersFn  func() ([]model.Teacher, error)
	getTeacherFn    func(id int64) (*model.Teacher, error)
	getUserFn       func(id int64) (*model.User, error)
	deleteUserFn    func(id int64) error
}

func (f *fakeAPI) api() API {
	return API{Auth: authFake{f}, Sessions: sessionFake{f}, Teachers: teacherFake{f}, Users: userFake{f}}
}

type authFake struct{ f *fakeAPI }

func (a authFake) Login(_ context.Context, req model.LoginRequest) (model.Identity, error) {
	a.f.calls = append(a.f.calls, "auth.login")
	if a.f.loginFn == nil {
		return model.Identity{}, nil
	}
	return a.f.loginFn(req)
}

func (a authFake) Register(_ context.Context, req model.SignupRequest) error {
	a.f.calls = append(a.f.calls, "auth.register")
	if a.f.registerFn == nil {
		return nil
	}
	return a.f.registerFn(req)
}

type sessionFake struct{ f *fakeAPI }

func (s sessionFake) List(context.Context) ([]model.Session, error) {
	s.f.calls = append(s.f.calls, "session.list")
	if s.f.listSessionsFn == nil {
		return nil, nil
	}
	return s.f.listSessionsFn()
}

func (s sessionFake) Get(_ context.Context, id int64) (*model.Session, error) {
	s.f.calls = append(s.f.calls, "session.get")
	if s.f.getSessionFn == nil {
		return &model.Session{ID: id}, nil
	}
	return s.f.getSessionFn(id)
}

func (s sessionFake) Create(_ context.Context, payload model.Session) (*model.Session, error) {
	s.f.calls = append(s.f.calls, "session.create")
	if s.f.createFn == nil {
		return &payload, nil
	}
	return s.f.createFn(payload)
}

func (s sessionFake) Update(_ context.Context, id int64, payload model.Session) (*model.Session, error) {
	s.f.calls = append(s.f.calls, "session.update")
	if s.f.updateFn == nil {
		return &payload, nil
	}
	return s.f.updateFn(id, payload)
}

func (s sessionFake) Delete(_ context.Context, id int64) error {
	s.f.calls = append(s.f.calls, "session.delete")
	if s.f.deleteSessionFn == nil {
		return nil
	}
	return s.f.deleteSessionFn(id)
}

func (s sessionFake) Participate(_ context.Context, sessionID, userID int64) error {
	s.f.calls = append(s.f.calls, "session.participate")
	if s.f.participateFn == nil {
		return nil
	}
	return s.f.participateFn(sessionID, userID)
}

func (s sessionFake) UnParticipate(_ context.Context, sessionID, userID int64) error {
	s.f.calls = append(s.f.calls, "session.unparticipate")
	if s.f.unParticipateFn == nil {
		return nil
	}
	return s.f.unParticipateFn(sessionID, userID)
}

type teacherFake struct{ f *fakeAPI }

func (t teacherFake) List(context.Context) ([]model.Teacher, error) {
	t.f.calls = append(t.f.calls, "teacher.list")
	if t.f.listTeachersFn == nil {
		return nil, nil
	}
	return t.f.listTeachersFn()
}

func (t teacherFake) Get(_ context.Context, id int64) (*model.Teacher, error) {
	t.f.calls = append(t.f.calls, "teacher.get")
	if t.f.getTeacherFn == nil {
		return &model.Teacher{ID: id}, nil
	}
	return t.f.getTeacherFn(id)
}

type userFake struct{ f *fakeAPI }

func (u userFake) Get(_ context.Context, id int64) (*model.User, error) {
	u.f.calls = append(u.f.calls, "user.get")
	if u.f.getUserFn == nil {
		return &model.User{ID: id}, nil
	}
	return u.f.getUserFn(id)
}

func (u userFake) Delete(_ context.Context, id int64) error {
	u.f.calls = append(u.f.calls, "user.delete")
	if u.f.deleteUserFn == nil {
		return nil
	}
	return u.f.deleteUserFn(id)
}
