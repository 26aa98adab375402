package repository

import (
	"context"
	"fmt"

	"toast/api/internal/dbx"
	"toast/api/internal/sqlbuild"
)

// TaskLabelRepository manages the task to label join rows. Ownership of both
// ends is checked by the caller.
type TaskLabelRepository struct {
	db dbx.DBTX
}

func NewTaskLabelRepository(db dbx.DBTX) *TaskLabelRepository {
	return &TaskLabelRepository{db: db}
}

// Attach is idempotent.
func (r *TaskLabelRepository) Attach(ctx context.Context, taskID, labelID string) error {
	const query = `
		INSERT INTO task_labels (task_id, label_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, taskID, labelID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Detach removes the association only when the task belongs to owner.
func (r *TaskLabelRepository) Detach(ctx context.Context, owner, taskID, labelID string) (bool, error) {
	const query = `
		DELETE FROM task_labels
		WHERE task_id = $1 AND label_id = $2
		AND task_id IN (
			SELECT tasks.id FROM tasks
			INNER JOIN lists ON tasks.list_id = lists.id
			WHERE lists.user_id = $3
		)
	`
	res, err := r.db.ExecContext(ctx, query, taskID, labelID, owner)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

// LabelIDs maps each task id to its label ids.
func (r *TaskLabelRepository) LabelIDs(ctx context.Context, taskIDs ...string) (map[string][]string, error) {
	index := make(map[string][]string, len(taskIDs))
	if len(taskIDs) == 0 {
		return index, nil
	}

	query := fmt.Sprintf(`SELECT task_id, label_id FROM task_labels WHERE task_id IN (%s) ORDER BY label_id`,
		sqlbuild.Placeholders(1, len(taskIDs)))

	args := make([]any, len(taskIDs))
	for i, id := range taskIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID, labelID string
		if err := rows.Scan(&taskID, &labelID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		index[taskID] = append(index[taskID], labelID)
	}
	return index, rows.Err()
}
