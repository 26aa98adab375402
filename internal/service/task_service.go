package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"toast/api/internal/apierr"
	"toast/api/internal/crud"
	"toast/api/internal/dbx"
	"toast/api/internal/models"
	"toast/api/internal/patch"
	"toast/api/internal/repository"
	"toast/api/internal/sqlbuild"
	"toast/api/internal/tree"
)

type TaskCreate struct {
	ListID      uuid.UUID  `json:"list_id" binding:"required"`
	ParentID    *uuid.UUID `json:"parent_id"`
	DueAt       time.Time  `json:"due_at" binding:"required"`
	DueText     string     `json:"due_text"`
	Completed   *bool      `json:"completed"`
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
}

type TaskPatch struct {
	ListID      patch.Value[uuid.UUID] `json:"list_id,omitzero"`
	ParentID    patch.Value[uuid.UUID] `json:"parent_id,omitzero"`
	DueAt       patch.Value[time.Time] `json:"due_at,omitzero"`
	DueText     patch.Value[string]    `json:"due_text,omitzero"`
	Completed   patch.Value[bool]      `json:"completed,omitzero"`
	Title       patch.Value[string]    `json:"title,omitzero"`
	Description patch.Value[string]    `json:"description,omitzero"`
}

type TaskService struct {
	tree   *tree.Tree[models.Task]
	lists  *crud.Engine[models.List]
	labels *repository.TaskLabelRepository
}

func NewTaskService(db crud.DB, lists *crud.Engine[models.List], pages crud.Pagination) *TaskService {
	return &TaskService{
		tree:   tree.New(crud.New(db, taskResource, pages), "parent_id"),
		lists:  lists,
		labels: repository.NewTaskLabelRepository(db),
	}
}

func (s *TaskService) Engine() *crud.Engine[models.Task] { return s.tree.Engine() }

func (s *TaskService) List(ctx context.Context, owner string, req crud.PageRequest) (crud.Listing[models.Task], error) {
	listing, err := s.tree.Engine().List(ctx, owner, req)
	if err != nil {
		return listing, err
	}
	err = s.derived(ctx, owner, listing.Items)
	return listing, err
}

func (s *TaskService) Get(ctx context.Context, owner, id string) (models.Task, error) {
	task, err := s.tree.Engine().Get(ctx, owner, id)
	if err != nil {
		return task, err
	}
	items := []models.Task{task}
	if err := s.derived(ctx, owner, items); err != nil {
		return task, err
	}
	return items[0], nil
}

// derived fills child_ids and label_ids.
func (s *TaskService) derived(ctx context.Context, owner string, items []models.Task) error {
	err := attachChildren(ctx, s.tree, owner, items,
		func(t *models.Task) string { return t.ID },
		func(t *models.Task, ids []string) { t.ChildIDs = ids })
	if err != nil {
		return err
	}

	taskIDs := make([]string, len(items))
	for i := range items {
		taskIDs[i] = items[i].ID
	}
	index, err := s.labels.LabelIDs(ctx, taskIDs...)
	if err != nil {
		return apierr.Internal("Error fetching labels.", err)
	}
	for i := range items {
		labels := index[items[i].ID]
		if labels == nil {
			labels = []string{}
		}
		items[i].LabelIDs = labels
	}
	return nil
}

// ownedList rejects a list the caller does not own.
func (s *TaskService) ownedList(owner, listID string) tree.Check {
	return func(ctx context.Context, q dbx.DBTX) error {
		ok, err := s.lists.With(q).Exists(ctx, owner, listID)
		if err != nil {
			return err
		}
		if !ok {
			return apierr.BadRequest("Invalid list.")
		}
		return nil
	}
}

func (s *TaskService) Create(ctx context.Context, owner string, in TaskCreate) (string, error) {
	listID := in.ListID.String()

	return s.tree.Create(ctx, owner, uuidPtrString(in.ParentID), []sqlbuild.Field{
		sqlbuild.Set("list_id", listID),
		sqlbuild.Set("due_at", in.DueAt.UTC()),
		sqlbuild.Set("due_text", in.DueText),
		sqlbuild.Optional("completed", in.Completed),
		sqlbuild.Set("title", in.Title),
		sqlbuild.Optional("description", in.Description),
	}, s.ownedList(owner, listID))
}

func (s *TaskService) Patch(ctx context.Context, owner, id string, in TaskPatch) (crud.Outcome, error) {
	if err := notNull("List", in.ListID); err != nil {
		return crud.NoChanges, err
	}
	if err := notNull("Due date", in.DueAt); err != nil {
		return crud.NoChanges, err
	}
	if err := notNull("Due text", in.DueText); err != nil {
		return crud.NoChanges, err
	}
	if err := notNull("Completed", in.Completed); err != nil {
		return crud.NoChanges, err
	}
	if err := notNull("Title", in.Title); err != nil {
		return crud.NoChanges, err
	}

	var checks []tree.Check
	listID := patch.Map(in.ListID, uuidString)
	if l, ok := listID.Get(); ok {
		checks = append(checks, s.ownedList(owner, l))
	}

	dueAt := patch.Map(in.DueAt, func(t time.Time) time.Time { return t.UTC() })

	return s.tree.Patch(ctx, owner, id, []sqlbuild.Field{
		sqlbuild.Patched("list_id", listID),
		sqlbuild.Patched("due_at", dueAt),
		sqlbuild.Patched("due_text", in.DueText),
		sqlbuild.Patched("completed", in.Completed),
		sqlbuild.Patched("title", in.Title),
		sqlbuild.Patched("description", in.Description),
	}, patch.Map(in.ParentID, uuidString), checks...)
}

func (s *TaskService) Delete(ctx context.Context, owner, id string) error {
	return s.tree.Engine().Delete(ctx, owner, id)
}
