package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/ghaggin/yoga/internal/model"
	"github.com/ghaggin/yoga/internal/state"
	"go.uber.org/zap"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

// ModeFromPath picks update mode for /sessions/update/{id} routes.
func ModeFromPath(path string) Mode {
	if strings.Contains(path, "update") {
		return ModeUpdate
	}
	return ModeCreate
}

type SessionForm struct {
	Name        string `form:"name" validate:"required,max=50"`
	Date        string `form:"date" validate:"required,datetime=2006-01-02"`
	TeacherID   int64  `form:"teacher_id" validate:"gt=0"`
	Description string `form:"description" validate:"required,max=2000"`
}

// Normalize trims the free-text fields. Valid and Submit both check the
// normalized form.
func (f SessionForm) Normalize() SessionForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	return f
}

// Valid drives the enabled state of the submit button.
func (f SessionForm) Valid() bool {
	return validateForm(f.Normalize()) == nil
}

func (f SessionForm) payload() (model.Session, error) {
	date, err := model.ParseTime(f.Date)
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{
		Name:        f.Name,
		Date:        date,
		TeacherID:   f.TeacherID,
		Description: f.Description,
	}, nil
}

type FormView struct {
	Mode          Mode
	ID            int64
	Form          SessionForm
	Teachers      []model.Teacher
	SubmitEnabled bool
}

type Form struct {
	base
}

func NewForm(api API, h *state.Holder, log *zap.Logger) *Form {
	return &Form{base: newBase(api, h, log)}
}

// Init prepares the create or update form. Non-admin identities get a
// redirect to the list instead of a view.
func (c *Form) Init(ctx context.Context, mode Mode, id int64) (FormView, Outcome, error) {
	if !c.state.IsAdmin() {
		return FormView{}, redirect(PathSessions, ""), nil
	}

	v := FormView{Mode: mode, ID: id}
	if mode == ModeUpdate {
		session, err := c.api.Sessions.Get(ctx, id)
		if err != nil {
			return FormView{}, Outcome{}, fmt.Errorf("fetching session %d: %w", id, err)
		}
		v.Form = SessionForm{
			Name:        session.Name,
			Date:        session.Date.Date(),
			TeacherID:   session.TeacherID,
			Description: session.Description,
		}
	}

	teachers, err := c.api.Teachers.List(ctx)
	if err != nil {
		return FormView{}, Outcome{}, fmt.Errorf("listing teachers: %w", err)
	}
	v.Teachers = teachers
	v.SubmitEnabled = v.Form.Valid()
	return v, Outcome{}, nil
}

// Submit creates or updates the session and returns to the list.
func (c *Form) Submit(ctx context.Context, mode Mode, id int64, form SessionForm) (Outcome, error) {
	if !c.state.IsAdmin() {
		return redirect(PathSessions, ""), nil
	}

	form = form.Normalize()
	if err := validateForm(form); err != nil {
		return Outcome{}, err
	}
	payload, err := form.payload()
	if err != nil {
		return Outcome{}, &ValidationError{Fields: []string{"date"}}
	}

	if mode == ModeUpdate {
		if _, err := c.api.Sessions.Update(ctx, id, payload); err != nil {
			return Outcome{}, fmt.Errorf("updating session %d: %w", id, err)
		}
		return redirect(PathSessions, MsgSessionUpdated), nil
	}

	if _, err := c.api.Sessions.Create(ctx, payload); err != nil {
		return Outcome{}, fmt.Errorf("creating session: %w", err)
	}
	return redirect(PathSessions, MsgSessionCreated), nil
}
