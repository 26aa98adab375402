// Package tree adds a self-referential parent column to a crud resource.
package tree

import (
	"context"
	"fmt"

	"toast/api/internal/apierr"
	"toast/api/internal/crud"
	"toast/api/internal/dbx"
	"toast/api/internal/patch"
	"toast/api/internal/sqlbuild"
)

// Check runs inside the create/patch transaction before any write.
type Check func(ctx context.Context, q dbx.DBTX) error

type Tree[T any] struct {
	engine *crud.Engine[T]
	column string
}

// New panics when column is not a valid identifier.
func New[T any](engine *crud.Engine[T], column string) *Tree[T] {
	if err := sqlbuild.CheckIdentifier(column); err != nil {
		panic(fmt.Sprintf("tree: %v", err))
	}
	return &Tree[T]{engine: engine, column: column}
}

func (t *Tree[T]) Engine() *crud.Engine[T] { return t.engine }

// Create inserts the item with an optional parent. The parent must resolve
// under the same owner.
func (t *Tree[T]) Create(ctx context.Context, owner string, parent *string, fields []sqlbuild.Field, checks ...Check) (string, error) {
	var id string
	err := dbx.WithTx(ctx, t.engine.DB(), nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, check := range checks {
			if err := check(ctx, tx); err != nil {
				return err
			}
		}

		e := t.engine.With(tx)
		if parent != nil {
			if err := t.validParent(ctx, e, owner, *parent); err != nil {
				return err
			}
		}

		var err error
		id, err = e.Create(ctx, owner, append(fields, sqlbuild.Optional(t.column, parent)))
		return err
	})
	if err != nil {
		return "", apierr.FromStorage(err, "Failed to create in database.")
	}
	return id, nil
}

// Patch applies scalar fields, then the parent change, in one transaction.
// An item the owner cannot see is reported as not found before any parent
// or check is validated.
func (t *Tree[T]) Patch(ctx context.Context, owner, id string, fields []sqlbuild.Field, parent patch.Value[string], checks ...Check) (crud.Outcome, error) {
	outcome := crud.NoChanges
	err := dbx.WithTx(ctx, t.engine.DB(), nil, func(ctx context.Context, tx dbx.DBTX) error {
		e := t.engine.With(tx)
		if !parent.IsAbsent() || len(checks) > 0 {
			ok, err := e.Exists(ctx, owner, id)
			if err != nil {
				return err
			}
			if !ok {
				return apierr.NotFound(t.engine.Resource().Name + " not found.")
			}
		}

		if p, ok := parent.Get(); ok && p == id {
			return apierr.BadRequest("Item cannot be its own parent.")
		}

		for _, check := range checks {
			if err := check(ctx, tx); err != nil {
				return err
			}
		}

		if p, ok := parent.Get(); ok {
			if err := t.validParent(ctx, e, owner, p); err != nil {
				return err
			}
			cycle, err := t.isAncestor(ctx, tx, id, p)
			if err != nil {
				return err
			}
			if cycle {
				return apierr.BadRequest("Parent would create a cycle.")
			}
		}

		if sqlbuild.HasChanges(fields) || parent.IsAbsent() {
			out, err := e.Patch(ctx, owner, id, fields)
			if err != nil {
				return err
			}
			outcome = out
		}

		if !parent.IsAbsent() {
			if _, err := e.Patch(ctx, owner, id, []sqlbuild.Field{sqlbuild.Patched(t.column, parent)}); err != nil {
				return err
			}
			outcome = crud.Updated
		}
		return nil
	})
	if err != nil {
		return crud.Updated, apierr.FromStorage(err, "Failed to patch in database.")
	}
	return outcome, nil
}

func (t *Tree[T]) validParent(ctx context.Context, e *crud.Engine[T], owner, parent string) error {
	ok, err := e.Exists(ctx, owner, parent)
	if err != nil {
		return err
	}
	if !ok {
		return apierr.BadRequest("Invalid parent.")
	}
	return nil
}

// isAncestor reports whether ancestor is node itself or lies on node's
// parent chain.
func (t *Tree[T]) isAncestor(ctx context.Context, q dbx.DBTX, ancestor, node string) (bool, error) {
	table := t.engine.Resource().Table
	query := fmt.Sprintf(`WITH RECURSIVE chain (id, parent) AS (
	SELECT id, %[2]s FROM %[1]s WHERE id = $1
	UNION
	SELECT t.id, t.%[2]s FROM %[1]s t JOIN chain c ON t.id = c.parent
)
SELECT EXISTS (SELECT 1 FROM chain WHERE id = $2)`, table, t.column)

	var found bool
	if err := q.QueryRowContext(ctx, query, node, ancestor).Scan(&found); err != nil {
		return false, apierr.Internal("Failed to check parent chain.", err)
	}
	return found, nil
}

// Children returns the child ids of each of ids, restricted to owner.
func (t *Tree[T]) Children(ctx context.Context, owner string, ids ...string) (map[string][]string, error) {
	index := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return index, nil
	}

	res := t.engine.Resource()
	query := fmt.Sprintf("SELECT id, %s FROM %s WHERE %s IN (%s) AND %s ORDER BY id",
		t.column, res.Table, t.column, sqlbuild.Placeholders(2, len(ids)), res.Scope("$1"))

	args := make([]any, 0, len(ids)+1)
	args = append(args, owner)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := t.engine.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apierr.Internal("Error fetching children.", err)
	}
	defer rows.Close()

	for rows.Next() {
		var child, parent string
		if err := rows.Scan(&child, &parent); err != nil {
			return nil, apierr.Internal("Error fetching children.", err)
		}
		index[parent] = append(index[parent], child)
	}
	if err := rows.Err(); err != nil {
		return nil, apierr.Internal("Error fetching children.", err)
	}
	return index, nil
}
