package client

import (
	"context"
	"net/http"

	"github.com/ghaggin/yoga/internal/model"
)

const sessionPath = "/session"

type SessionClient struct {
	c *Client
}

func (s *SessionClient) List(ctx context.Context) ([]model.Session, error) {
	var sessions []model.Session
	if err := s.c.do(ctx, http.MethodGet, sessionPath, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *SessionClient) Get(ctx context.Context, id int64) (*model.Session, error) {
	var session model.Session
	if err := s.c.do(ctx, http.MethodGet, sessionPath+idPath(id), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionClient) Create(ctx context.Context, payload model.Session) (*model.Session, error) {
	var session model.Session
	if err := s.c.do(ctx, http.MethodPost, sessionPath, payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionClient) Update(ctx context.Context, id int64, payload model.Session) (*model.Session, error) {
	var session model.Session
	if err := s.c.do(ctx, http.MethodPut, sessionPath+idPath(id), payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionClient) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, sessionPath+idPath(id), nil, nil)
}

// Participate adds userID to the session. The request has no body.
func (s *SessionClient) Participate(ctx context.Context, sessionID, userID int64) error {
	return s.c.do(ctx, http.MethodPost, sessionPath+idPath(sessionID, "participate", userID), nil, nil)
}

func (s *SessionClient) UnParticipate(ctx context.Context, sessionID, userID int64) error {
	return s.c.do(ctx, http.MethodDelete, sessionPath+idPath(sessionID, "participate", userID), nil, nil)
}
