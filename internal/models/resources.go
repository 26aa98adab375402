package models

import "time"

type List struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Color       string   `json:"color"`
	ParentID    *string  `json:"parent_id"`
	ChildIDs    []string `json:"child_ids"`
}

type Task struct {
	ID          string    `json:"id"`
	ListID      string    `json:"list_id"`
	ParentID    *string   `json:"parent_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	DueAt       time.Time `json:"due_at"`
	DueText     string    `json:"due_text"`
	Completed   bool      `json:"completed"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	ChildIDs    []string  `json:"child_ids"`
	LabelIDs    []string  `json:"label_ids"`
}

type Label struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
}
