package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ghaggin/yoga/internal/client"
	"github.com/ghaggin/yoga/internal/middleware"
	"github.com/ghaggin/yoga/internal/template"
	"github.com/ghaggin/yoga/internal/view"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type formPage struct {
	Form any
}

func (s *Web) api(r *http.Request) view.API {
	return view.NewAPI(s.client, middleware.Holder(r.Context()))
}

func (s *Web) data(r *http.Request, title string, page any) *template.Data {
	h := middleware.Holder(r.Context())
	return &template.Data{
		PageTitle: title,
		Links:     view.NewApp(h).Links(),
		LoggedIn:  h.IsLogged(),
		Flash:     s.sessions.PopFlash(r.Context()),
		Page:      page,
	}
}

func (s *Web) render(w http.ResponseWriter, r *http.Request, status int, tmpl string, td *template.Data) {
	if err := template.RenderStatus(w, r, status, tmpl, td); err != nil {
		s.log.Error("failed rendering page", zap.String("template", tmpl), zap.Error(err))
		http.Error(w, view.MsgError, http.StatusInternalServerError)
	}
}

func (s *Web) follow(w http.ResponseWriter, r *http.Request, out view.Outcome) {
	s.sessions.Flash(r.Context(), out.Flash)
	http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
}

// errorText is the message shown next to a form that failed to submit.
func errorText(err error) string {
	if msg := view.Message(err); msg != "" {
		return msg
	}
	return err.Error()
}

// handled deals with API failures every page reacts to the same way: an
// expired token logs the browser out and a missing record is a 404.
func (s *Web) handled(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case client.IsStatus(err, http.StatusUnauthorized), errors.Is(err, view.ErrNotLoggedIn):
		middleware.Holder(r.Context()).LogOut()
		http.Redirect(w, r, view.PathLogin, http.StatusSeeOther)
		return true
	case client.IsStatus(err, http.StatusNotFound):
		s.notFound(w, r)
		return true
	}
	return false
}

// apiError sends the browser back to the list with the generic message.
func (s *Web) apiError(w http.ResponseWriter, r *http.Request, err error) {
	if s.handled(w, r, err) {
		return
	}
	s.log.Warn("api call failed", zap.String("path", r.URL.Path), zap.Error(err))
	s.follow(w, r, view.Outcome{Redirect: view.PathSessions, Flash: view.MsgError})
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (s *Web) home(w http.ResponseWriter, r *http.Request) {
	if middleware.Holder(r.Context()).IsLogged() {
		http.Redirect(w, r, view.PathSessions, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, view.PathLogin, http.StatusSeeOther)
}

func (s *Web) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "not_found.html", s.data(r, "not found", nil))
}

func (s *Web) logout(w http.ResponseWriter, r *http.Request) {
	s.follow(w, r, view.NewApp(middleware.Holder(r.Context())).Logout())
}

func (s *Web) getLogin(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", s.data(r, "login", formPage{Form: view.LoginForm{}}))
}

func (s *Web) postLogin(w http.ResponseWriter, r *http.Request) {
	form := view.LoginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	ctrl := view.NewLogin(s.api(r), middleware.Holder(r.Context()), s.log)
	out, err := ctrl.Submit(r.Context(), form)
	if err != nil {
		form.Password = ""
		td := s.data(r, "login", formPage{Form: form})
		td.Error = errorText(err)
		s.render(w, r, http.StatusOK, "login.html", td)
		return
	}
	s.follow(w, r, out)
}

func (s *Web) getRegister(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register.html", s.data(r, "register", formPage{Form: view.RegisterForm{}}))
}

func (s *Web) postRegister(w http.ResponseWriter, r *http.Request) {
	form := view.RegisterForm{
		FirstName: r.PostFormValue("firstName"),
		LastName:  r.PostFormValue("lastName"),
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
	}

	ctrl := view.NewRegister(s.api(r), middleware.Holder(r.Context()), s.log)
	out, err := ctrl.Submit(r.Context(), form)
	if err != nil {
		form.Password = ""
		td := s.data(r, "register", formPage{Form: form})
		td.Error = errorText(err)
		s.render(w, r, http.StatusOK, "register.html", td)
		return
	}
	s.follow(w, r, out)
}

func (s *Web) list(w http.ResponseWriter, r *http.Request) {
	ctrl := view.NewList(s.api(r), middleware.Holder(r.Context()), s.log)
	v, err := ctrl.Load(r.Context())
	if err != nil {
		if s.handled(w, r, err) {
			return
		}
		s.log.Warn("listing sessions failed", zap.Error(err))
		td := s.data(r, "sessions", view.ListView{})
		td.Flash = view.MsgError
		s.render(w, r, http.StatusBadGateway, "list.html", td)
		return
	}
	s.render(w, r, http.StatusOK, "list.html", s.data(r, "sessions", v))
}

func (s *Web) detail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	ctrl := view.NewDetail(s.api(r), middleware.Holder(r.Context()), s.log)
	v, err := ctrl.Load(r.Context(), id)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "detail.html", s.data(r, v.Session.Name, v))
}

func (s *Web) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	ctrl := view.NewDetail(s.api(r), middleware.Holder(r.Context()), s.log)
	out, err := ctrl.Delete(r.Context(), id)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	s.follow(w, r, out)
}

func (s *Web) participate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	ctrl := view.NewDetail(s.api(r), middleware.Holder(r.Context()), s.log)
	if _, err := ctrl.Participate(r.Context(), id); err != nil {
		s.apiError(w, r, err)
		return
	}
	http.Redirect(w, r, "/detail/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

func (s *Web) unParticipate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	ctrl := view.NewDetail(s.api(r), middleware.Holder(r.Context()), s.log)
	if _, err := ctrl.UnParticipate(r.Context(), id); err != nil {
		s.apiError(w, r, err)
		return
	}
	http.Redirect(w, r, "/detail/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

// formTarget reads the mode from the path and, in update mode, the id.
func formTarget(r *http.Request) (view.Mode, int64, bool) {
	mode := view.ModeFromPath(r.URL.Path)
	if mode == view.ModeCreate {
		return mode, 0, true
	}
	id, ok := idParam(r)
	return mode, id, ok
}

func (s *Web) getForm(w http.ResponseWriter, r *http.Request) {
	mode, id, ok := formTarget(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	ctrl := view.NewForm(s.api(r), middleware.Holder(r.Context()), s.log)
	v, out, err := ctrl.Init(r.Context(), mode, id)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	if out.Redirect != "" {
		s.follow(w, r, out)
		return
	}
	s.render(w, r, http.StatusOK, "form.html", s.data(r, "session", v))
}

func (s *Web) postForm(w http.ResponseWriter, r *http.Request) {
	mode, id, ok := formTarget(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	teacherID, _ := strconv.ParseInt(r.PostFormValue("teacher_id"), 10, 64)
	form := view.SessionForm{
		Name:        r.PostFormValue("name"),
		Date:        r.PostFormValue("date"),
		TeacherID:   teacherID,
		Description: r.PostFormValue("description"),
	}

	ctrl := view.NewForm(s.api(r), middleware.Holder(r.Context()), s.log)
	out, err := ctrl.Submit(r.Context(), mode, id, form)
	var verr *view.ValidationError
	if errors.As(err, &verr) {
		v, _, initErr := ctrl.Init(r.Context(), mode, id)
		if initErr != nil {
			s.apiError(w, r, initErr)
			return
		}
		v.Form = form
		v.SubmitEnabled = form.Valid()
		td := s.data(r, "session", v)
		td.Error = verr.Error()
		s.render(w, r, http.StatusOK, "form.html", td)
		return
	}
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	s.follow(w, r, out)
}

func (s *Web) me(w http.ResponseWriter, r *http.Request) {
	ctrl := view.NewMe(s.api(r), middleware.Holder(r.Context()), s.log)
	v, err := ctrl.Load(r.Context())
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "me.html", s.data(r, "account", v))
}

func (s *Web) deleteAccount(w http.ResponseWriter, r *http.Request) {
	ctrl := view.NewMe(s.api(r), middleware.Holder(r.Context()), s.log)
	out, err := ctrl.Delete(r.Context())
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	s.follow(w, r, out)
}
