package view

import (
	"context"
	"fmt"

	"github.com/ghaggin/yoga/internal/model"
	"github.com/ghaggin/yoga/internal/state"
	"go.uber.org/zap"
)

type DetailView struct {
	Session         model.Session
	Teacher         *model.Teacher
	Attendees       int
	IsParticipating bool
	CanDelete       bool
}

type Detail struct {
	base
}

func NewDetail(api API, h *state.Holder, log *zap.Logger) *Detail {
	return &Detail{base: newBase(api, h, log)}
}

// Load fetches the session and then, once it is known, its teacher.
func (c *Detail) Load(ctx context.Context, id int64) (DetailView, error) {
	identity, err := c.identity()
	if err != nil {
		return DetailView{}, err
	}

	session, err := c.api.Sessions.Get(ctx, id)
	if err != nil {
		return DetailView{}, fmt.Errorf("fetching session %d: %w", id, err)
	}

	teacher, err := c.api.Teachers.Get(ctx, session.TeacherID)
	if err != nil {
		return DetailView{}, fmt.Errorf("fetching teacher %d: %w", session.TeacherID, err)
	}

	return DetailView{
		Session:         *session,
		Teacher:         teacher,
		Attendees:       len(session.Users),
		IsParticipating: session.HasUser(identity.ID),
		CanDelete:       identity.Admin,
	}, nil
}

// Delete removes the session. Non-admin identities are sent back to the
// list without a call.
func (c *Detail) Delete(ctx context.Context, id int64) (Outcome, error) {
	if !c.state.IsAdmin() {
		return redirect(PathSessions, ""), nil
	}
	if err := c.api.Sessions.Delete(ctx, id); err != nil {
		return Outcome{}, fmt.Errorf("deleting session %d: %w", id, err)
	}
	return redirect(PathSessions, MsgSessionDeleted), nil
}

// Participate adds the current user and reloads the session.
func (c *Detail) Participate(ctx context.Context, id int64) (DetailView, error) {
	identity, err := c.identity()
	if err != nil {
		return DetailView{}, err
	}
	if err := c.api.Sessions.Participate(ctx, id, identity.ID); err != nil {
		return DetailView{}, fmt.Errorf("participating in session %d: %w", id, err)
	}
	return c.Load(ctx, id)
}

// UnParticipate removes the current user and reloads the session.
func (c *Detail) UnParticipate(ctx context.Context, id int64) (DetailView, error) {
	identity, err := c.identity()
	if err != nil {
		return DetailView{}, err
	}
	if err := c.api.Sessions.UnParticipate(ctx, id, identity.ID); err != nil {
		return DetailView{}, fmt.Errorf("leaving session %d: %w", id, err)
	}
	return c.Load(ctx, id)
}
