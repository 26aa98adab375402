package service

import (
	"toast/api/internal/crud"
	"toast/api/internal/models"
	"toast/api/internal/repository"
)

// tasks are owned through their list.
func taskScope(ph string) string {
	return "list_id IN (SELECT id FROM lists WHERE user_id = " + ph + ")"
}

var listResource = crud.Resource[models.List]{
	Name:        "List",
	Table:       "lists",
	Columns:     []string{"id", "user_id", "title", "description", "color", "parent_id"},
	Scope:       crud.OwnedBy("user_id"),
	OwnerColumn: "user_id",
	Scan: func(row crud.Scanner) (models.List, error) {
		var l models.List
		err := row.Scan(&l.ID, &l.UserID, &l.Title, &l.Description, &l.Color, &l.ParentID)
		return l, err
	},
}

var taskResource = crud.Resource[models.Task]{
	Name:  "Task",
	Table: "tasks",
	Columns: []string{
		"id", "list_id", "parent_id", "created_at", "updated_at",
		"due_at", "due_text", "completed", "title", "description",
	},
	Scope:       taskScope,
	TouchColumn: "updated_at",
	Scan: func(row crud.Scanner) (models.Task, error) {
		var t models.Task
		err := row.Scan(&t.ID, &t.ListID, &t.ParentID, &t.CreatedAt, &t.UpdatedAt,
			&t.DueAt, &t.DueText, &t.Completed, &t.Title, &t.Description)
		return t, err
	},
}

var labelResource = crud.Resource[models.Label]{
	Name:        "Label",
	Table:       "labels",
	Columns:     []string{"id", "user_id", "title", "description", "color"},
	Scope:       crud.OwnedBy("user_id"),
	OwnerColumn: "user_id",
	Scan: func(row crud.Scanner) (models.Label, error) {
		var l models.Label
		err := row.Scan(&l.ID, &l.UserID, &l.Title, &l.Description, &l.Color)
		return l, err
	},
}

var sessionResource = crud.Resource[models.Session]{
	Name:        "Session",
	Table:       "sessions",
	Columns:     repository.SessionColumns,
	Scope:       crud.OwnedBy("user_id"),
	OwnerColumn: "user_id",
	Scan: func(row crud.Scanner) (models.Session, error) {
		return repository.ScanSession(row)
	},
}
