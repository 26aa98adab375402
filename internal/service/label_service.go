package service

import (
	"context"

	"toast/api/internal/apierr"
	"toast/api/internal/crud"
	"toast/api/internal/dbx"
	"toast/api/internal/models"
	"toast/api/internal/patch"
	"toast/api/internal/repository"
	"toast/api/internal/sqlbuild"
)

type LabelCreate struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Color       string  `json:"color" binding:"required"`
}

type LabelPatch struct {
	Title       patch.Value[string] `json:"title,omitzero"`
	Description patch.Value[string] `json:"description,omitzero"`
	Color       patch.Value[string] `json:"color,omitzero"`
}

type LabelService struct {
	db     crud.DB
	engine *crud.Engine[models.Label]
	tasks  *crud.Engine[models.Task]
}

func NewLabelService(db crud.DB, tasks *crud.Engine[models.Task], pages crud.Pagination) *LabelService {
	return &LabelService{
		db:     db,
		engine: crud.New(db, labelResource, pages),
		tasks:  tasks,
	}
}

func (s *LabelService) List(ctx context.Context, owner string, req crud.PageRequest) (crud.Listing[models.Label], error) {
	return s.engine.List(ctx, owner, req)
}

func (s *LabelService) Get(ctx context.Context, owner, id string) (models.Label, error) {
	return s.engine.Get(ctx, owner, id)
}

func (s *LabelService) Create(ctx context.Context, owner string, in LabelCreate) (string, error) {
	if err := validateColor(in.Color); err != nil {
		return "", err
	}
	return s.engine.Create(ctx, owner, []sqlbuild.Field{
		sqlbuild.Set("title", in.Title),
		sqlbuild.Optional("description", in.Description),
		sqlbuild.Set("color", in.Color),
	})
}

func (s *LabelService) Patch(ctx context.Context, owner, id string, in LabelPatch) (crud.Outcome, error) {
	if err := notNull("Title", in.Title); err != nil {
		return crud.NoChanges, err
	}
	if err := validatePatchColor(in.Color); err != nil {
		return crud.NoChanges, err
	}
	return s.engine.Patch(ctx, owner, id, []sqlbuild.Field{
		sqlbuild.Patched("title", in.Title),
		sqlbuild.Patched("description", in.Description),
		sqlbuild.Patched("color", in.Color),
	})
}

func (s *LabelService) Delete(ctx context.Context, owner, id string) error {
	return s.engine.Delete(ctx, owner, id)
}

// Attach links an owned label to an owned task. Attaching twice is a no-op.
func (s *LabelService) Attach(ctx context.Context, owner, taskID, labelID string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ok, err := s.tasks.With(tx).Exists(ctx, owner, taskID)
		if err != nil {
			return err
		}
		if !ok {
			return apierr.NotFound("Task not found.")
		}

		ok, err = s.engine.With(tx).Exists(ctx, owner, labelID)
		if err != nil {
			return err
		}
		if !ok {
			return apierr.BadRequest("Invalid label.")
		}

		return repository.NewTaskLabelRepository(tx).Attach(ctx, taskID, labelID)
	})
	return apierr.FromStorage(err, "Failed to attach label in database.")
}

func (s *LabelService) Detach(ctx context.Context, owner, taskID, labelID string) error {
	ok, err := repository.NewTaskLabelRepository(s.db).Detach(ctx, owner, taskID, labelID)
	if err != nil {
		return apierr.Internal("Failed to detach label in database.", err)
	}
	if !ok {
		return apierr.NotFound("Label not attached.")
	}
	return nil
}
