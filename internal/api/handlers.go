package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ghaggin/yoga/internal/model"
	"github.com/ghaggin/yoga/internal/repository"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type sessionRequest struct {
	Name        string     `json:"name" validate:"required,max=50"`
	Date        model.Time `json:"date"`
	TeacherID   int64      `json:"teacher_id" validate:"required,gt=0"`
	Description string     `json:"description" validate:"required,max=2500"`
}

func (s *Server) routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(s.limiter.middleware).Post("/login", s.handleLogin)
			r.Post("/register", s.handleRegister)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)

			r.Get("/session", s.handleListSessions)
			r.Post("/session", s.handleCreateSession)
			r.Get("/session/{id}", s.handleGetSession)
			r.Put("/session/{id}", s.handleUpdateSession)
			r.Delete("/session/{id}", s.handleDeleteSession)
			r.Post("/session/{id}/participate/{userId}", s.handleParticipate)
			r.Delete("/session/{id}/participate/{userId}", s.handleUnParticipate)

			r.Get("/teacher", s.handleListTeachers)
			r.Get("/teacher/{id}", s.handleGetTeacher)

			r.Get("/user/{id}", s.handleGetUser)
			r.Delete("/user/{id}", s.handleDeleteUser)
		})
	})
}

// fail maps controller and repository errors onto status codes. Anything
// unexpected is logged and answered with a bare 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, ErrBadCredentials), errors.Is(err, ErrNotOwner):
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, ErrForbidden):
		writeMessage(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, ErrEmailTaken):
		writeMessage(w, http.StatusBadRequest, "Error: Email is already taken!")
	case errors.Is(err, ErrAlreadyParticipating), errors.Is(err, ErrNotParticipating), errors.Is(err, ErrUnknownTeacher):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	identity, err := s.ctrl.Login(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ctrl.Register(r.Context(), req); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "User registered successfully!")
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.ctrl.Sessions(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid session id")
		return
	}

	session, err := s.ctrl.Session(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func decodeSession(r *http.Request) (*model.Session, error) {
	var req sessionRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	if req.Date.IsZero() {
		return nil, errors.New("invalid fields: Date")
	}
	return &model.Session{
		Name:        req.Name,
		Date:        req.Date,
		TeacherID:   req.TeacherID,
		Description: req.Description,
	}, nil
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := decodeSession(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ctrl.CreateSession(r.Context(), userFrom(r.Context()), session); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid session id")
		return
	}

	session, err := decodeSession(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ctrl.UpdateSession(r.Context(), userFrom(r.Context()), id, session); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid session id")
		return
	}

	if err := s.ctrl.DeleteSession(r.Context(), userFrom(r.Context()), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) participationIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	sessionID, ok := idParam(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid session id")
		return 0, 0, false
	}
	userID, ok := idParam(r, "userId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid user id")
		return 0, 0, false
	}
	return sessionID, userID, true
}

func (s *Server) handleParticipate(w http.ResponseWriter, r *http.Request) {
	sessionID, userID, ok := s.participationIDs(w, r)
	if !ok {
		return
	}

	if err := s.ctrl.Participate(r.Context(), sessionID, userID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleUnParticipate(w http.ResponseWriter, r *http.Request) {
	sessionID, userID, ok := s.participationIDs(w, r)
	if !ok {
		return
	}

	if err := s.ctrl.UnParticipate(r.Context(), sessionID, userID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := s.ctrl.Teachers(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, teachers)
}

func (s *Server) handleGetTeacher(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid teacher id")
		return
	}

	teacher, err := s.ctrl.Teacher(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, teacher)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := s.ctrl.User(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := s.ctrl.DeleteUser(r.Context(), userFrom(r.Context()), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
