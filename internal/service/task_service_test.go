package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toast/api/internal/apierr"
	"toast/api/internal/crud"
	"toast/api/internal/patch"
)

var taskCols = []string{
	"id", "list_id", "parent_id", "created_at", "updated_at",
	"due_at", "due_text", "completed", "title", "description",
}

const listExistsQ = `SELECT EXISTS (SELECT 1 FROM lists WHERE id = $1 AND user_id = $2)`

func newTaskService(t *testing.T) (*TaskService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMock(t)
	lists := NewListService(db, crud.DefaultPagination)
	return NewTaskService(db, lists.Engine(), crud.DefaultPagination), mock
}

func TestTaskService_CreateChecksListOwnership(t *testing.T) {
	svc, mock := newTaskService(t)
	listID := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000001")

	mock.ExpectBegin()
	mock.ExpectQuery(q(listExistsQ)).
		WithArgs(listID.String(), alice).
		WillReturnRows(existsRow(false))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), alice, TaskCreate{
		ListID: listID,
		DueAt:  time.Now(),
		Title:  "Milk",
	})
	assert.Equal(t, apierr.KindBadRequest, apierr.KindOf(err))
	assert.Equal(t, "Invalid list.", apierr.Message(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Create(t *testing.T) {
	svc, mock := newTaskService(t)
	listID := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000001")
	due := time.Date(2026, 10, 20, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	done := true

	mock.ExpectBegin()
	mock.ExpectQuery(q(listExistsQ)).
		WithArgs(listID.String(), alice).
		WillReturnRows(existsRow(true))
	mock.ExpectQuery(q(`INSERT INTO tasks (list_id, due_at, due_text, completed, title) VALUES ($1, $2, $3, $4, $5) RETURNING id`)).
		WithArgs(listID.String(), due.UTC(), "tuesday", true, "Milk").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t1"))
	mock.ExpectCommit()

	id, err := svc.Create(context.Background(), alice, TaskCreate{
		ListID:    listID,
		DueAt:     due,
		DueText:   "tuesday",
		Completed: &done,
		Title:     "Milk",
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_GetFillsDerivedIDs(t *testing.T) {
	svc, mock := newTaskService(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM tasks WHERE id = \$1 AND list_id IN \(SELECT id FROM lists WHERE user_id = \$2\)`).
		WithArgs("t1", alice).
		WillReturnRows(sqlmock.NewRows(taskCols).
			AddRow("t1", "l1", nil, now, now, now, "today", false, "Milk", nil))
	mock.ExpectQuery(q(`SELECT id, parent_id FROM tasks WHERE parent_id IN ($2) AND list_id IN (SELECT id FROM lists WHERE user_id = $1) ORDER BY id`)).
		WithArgs(alice, "t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "parent_id"}).AddRow("t2", "t1"))
	mock.ExpectQuery(q(`SELECT task_id, label_id FROM task_labels WHERE task_id IN ($1) ORDER BY label_id`)).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"task_id", "label_id"}).AddRow("t1", "lb1").AddRow("t1", "lb2"))

	task, err := svc.Get(context.Background(), alice, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, task.ChildIDs)
	assert.Equal(t, []string{"lb1", "lb2"}, task.LabelIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_GetForeignIsNotFound(t *testing.T) {
	svc, mock := newTaskService(t)

	mock.ExpectQuery(`SELECT .+ FROM tasks WHERE id = \$1`).
		WithArgs("t1", bob).
		WillReturnRows(sqlmock.NewRows(taskCols))

	_, err := svc.Get(context.Background(), bob, "t1")
	assert.Equal(t, apierr.KindNotFound, apierr.KindOf(err))
	assert.Equal(t, "Task not found.", apierr.Message(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_PatchRejectsNulls(t *testing.T) {
	cases := map[string]struct {
		in      TaskPatch
		message string
	}{
		"list":      {TaskPatch{ListID: patch.Clear[uuid.UUID]()}, "List cannot be null."},
		"due at":    {TaskPatch{DueAt: patch.Clear[time.Time]()}, "Due date cannot be null."},
		"due text":  {TaskPatch{DueText: patch.Clear[string]()}, "Due text cannot be null."},
		"completed": {TaskPatch{Completed: patch.Clear[bool]()}, "Completed cannot be null."},
		"title":     {TaskPatch{Title: patch.Clear[string]()}, "Title cannot be null."},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc, mock := newTaskService(t)
			_, err := svc.Patch(context.Background(), alice, "t1", tc.in)
			assert.Equal(t, apierr.KindBadRequest, apierr.KindOf(err))
			assert.Equal(t, tc.message, apierr.Message(err))
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTaskService_PatchMovesListAndTouches(t *testing.T) {
	svc, mock := newTaskService(t)
	target := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000002")

	mock.ExpectBegin()
	mock.ExpectQuery(taskExistsQ).
		WithArgs("t1", alice).
		WillReturnRows(existsRow(true))
	mock.ExpectQuery(q(listExistsQ)).
		WithArgs(target.String(), alice).
		WillReturnRows(existsRow(true))
	mock.ExpectExec(q(`UPDATE tasks SET list_id = $3, completed = $4, updated_at = $5 WHERE id = $1 AND list_id IN (SELECT id FROM lists WHERE user_id = $2)`)).
		WithArgs("t1", alice, target.String(), true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := svc.Patch(context.Background(), alice, "t1", TaskPatch{
		ListID:    patch.Set(target),
		Completed: patch.Set(true),
	})
	require.NoError(t, err)
	assert.Equal(t, crud.Updated, out)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_PatchToForeignListRollsBack(t *testing.T) {
	svc, mock := newTaskService(t)
	target := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000003")

	mock.ExpectBegin()
	mock.ExpectQuery(taskExistsQ).
		WithArgs("t1", alice).
		WillReturnRows(existsRow(true))
	mock.ExpectQuery(q(listExistsQ)).
		WithArgs(target.String(), alice).
		WillReturnRows(existsRow(false))
	mock.ExpectRollback()

	_, err := svc.Patch(context.Background(), alice, "t1", TaskPatch{ListID: patch.Set(target)})
	assert.Equal(t, "Invalid list.", apierr.Message(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_PatchNothingIsNoChanges(t *testing.T) {
	svc, mock := newTaskService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM tasks WHERE id = \$1`).
		WithArgs("t1", alice).
		WillReturnRows(existsRow(true))
	mock.ExpectCommit()

	out, err := svc.Patch(context.Background(), alice, "t1", TaskPatch{})
	require.NoError(t, err)
	assert.Equal(t, crud.NoChanges, out)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_PatchForeignTaskIsNotFoundBeforeListCheck(t *testing.T) {
	svc, mock := newTaskService(t)
	target := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000004")

	mock.ExpectBegin()
	mock.ExpectQuery(taskExistsQ).
		WithArgs("t9", alice).
		WillReturnRows(existsRow(false))
	mock.ExpectRollback()

	_, err := svc.Patch(context.Background(), alice, "t9", TaskPatch{ListID: patch.Set(target)})
	assert.Equal(t, apierr.KindNotFound, apierr.KindOf(err))
	assert.Equal(t, "Task not found.", apierr.Message(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
