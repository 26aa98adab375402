package service

import (
	"context"

	"toast/api/internal/crud"
	"toast/api/internal/models"
)

// SessionService exposes the caller's own sessions. Sessions are created by
// login only.
type SessionService struct {
	engine *crud.Engine[models.Session]
}

func NewSessionService(db crud.DB, pages crud.Pagination) *SessionService {
	return &SessionService{engine: crud.New(db, sessionResource, pages)}
}

func (s *SessionService) List(ctx context.Context, owner string, req crud.PageRequest) (crud.Listing[models.Session], error) {
	return s.engine.List(ctx, owner, req)
}

func (s *SessionService) Get(ctx context.Context, owner, id string) (models.Session, error) {
	return s.engine.Get(ctx, owner, id)
}

func (s *SessionService) Delete(ctx context.Context, owner, id string) error {
	return s.engine.Delete(ctx, owner, id)
}
