package service

import (
	"context"

	"github.com/google/uuid"

	"toast/api/internal/crud"
	"toast/api/internal/models"
	"toast/api/internal/patch"
	"toast/api/internal/sqlbuild"
	"toast/api/internal/tree"
)

type ListCreate struct {
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
	Color       string     `json:"color" binding:"required"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

type ListPatch struct {
	Title       patch.Value[string]    `json:"title,omitzero"`
	Description patch.Value[string]    `json:"description,omitzero"`
	Color       patch.Value[string]    `json:"color,omitzero"`
	ParentID    patch.Value[uuid.UUID] `json:"parent_id,omitzero"`
}

type ListService struct {
	tree *tree.Tree[models.List]
}

func NewListService(db crud.DB, pages crud.Pagination) *ListService {
	return &ListService{
		tree: tree.New(crud.New(db, listResource, pages), "parent_id"),
	}
}

func (s *ListService) Engine() *crud.Engine[models.List] { return s.tree.Engine() }

func (s *ListService) List(ctx context.Context, owner string, req crud.PageRequest) (crud.Listing[models.List], error) {
	listing, err := s.tree.Engine().List(ctx, owner, req)
	if err != nil {
		return listing, err
	}
	err = s.children(ctx, owner, listing.Items)
	return listing, err
}

func (s *ListService) Get(ctx context.Context, owner, id string) (models.List, error) {
	list, err := s.tree.Engine().Get(ctx, owner, id)
	if err != nil {
		return list, err
	}
	items := []models.List{list}
	if err := s.children(ctx, owner, items); err != nil {
		return list, err
	}
	return items[0], nil
}

func (s *ListService) children(ctx context.Context, owner string, items []models.List) error {
	return attachChildren(ctx, s.tree, owner, items,
		func(l *models.List) string { return l.ID },
		func(l *models.List, ids []string) { l.ChildIDs = ids })
}

func (s *ListService) Create(ctx context.Context, owner string, in ListCreate) (string, error) {
	if err := validateColor(in.Color); err != nil {
		return "", err
	}

	return s.tree.Create(ctx, owner, uuidPtrString(in.ParentID), []sqlbuild.Field{
		sqlbuild.Set("title", in.Title),
		sqlbuild.Optional("description", in.Description),
		sqlbuild.Set("color", in.Color),
	})
}

func (s *ListService) Patch(ctx context.Context, owner, id string, in ListPatch) (crud.Outcome, error) {
	if err := notNull("Title", in.Title); err != nil {
		return crud.NoChanges, err
	}
	if err := validatePatchColor(in.Color); err != nil {
		return crud.NoChanges, err
	}

	return s.tree.Patch(ctx, owner, id, []sqlbuild.Field{
		sqlbuild.Patched("title", in.Title),
		sqlbuild.Patched("description", in.Description),
		sqlbuild.Patched("color", in.Color),
	}, patch.Map(in.ParentID, uuidString))
}

func (s *ListService) Delete(ctx context.Context, owner, id string) error {
	return s.tree.Engine().Delete(ctx, owner, id)
}
