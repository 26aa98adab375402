// Package crud implements list/get/create/patch/delete over a resource table
// with every statement filtered by the owning user.
package crud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"toast/api/internal/apierr"
	"toast/api/internal/dbx"
	"toast/api/internal/sqlbuild"
)

// DB is satisfied by *sql.DB.
type DB interface {
	dbx.DBTX
	dbx.TxBeginner
}

type Scanner interface {
	Scan(dest ...any) error
}

// Resource describes one owner-scoped table.
type Resource[T any] struct {
	// Name is used in client-facing messages, e.g. "List".
	Name  string
	Table string
	// Columns are selected in this order and handed to Scan.
	Columns []string
	// Scope renders the ownership predicate for the given owner placeholder.
	Scope func(ownerPlaceholder string) string
	// OwnerColumn is stamped with the owner id on create. Empty when
	// ownership is derived through another table.
	OwnerColumn string
	// TouchColumn is set to the current time on every effective patch.
	TouchColumn string
	Scan        func(row Scanner) (T, error)
}

// OwnedBy is the Scope for tables with a direct owner column.
func OwnedBy(column string) func(string) string {
	return func(ph string) string { return column + " = " + ph }
}

type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

var DefaultPagination = Pagination{DefaultLimit: 1000, MaxLimit: 1000}

type PageRequest struct {
	Limit *int
	Page  *int
}

type Listing[T any] struct {
	Items []T
	Limit int
	Page  int
}

type Outcome int

const (
	Updated Outcome = iota
	NoChanges
)

type Engine[T any] struct {
	db    DB
	q     dbx.DBTX
	res   Resource[T]
	pages Pagination
	now   func() time.Time
}

// New panics when the resource names an invalid identifier.
func New[T any](db DB, res Resource[T], pages Pagination) *Engine[T] {
	for _, ident := range append([]string{res.Table}, res.Columns...) {
		if err := sqlbuild.CheckIdentifier(ident); err != nil {
			panic(fmt.Sprintf("crud: resource %s: %v", res.Name, err))
		}
	}
	if pages.DefaultLimit <= 0 {
		pages.DefaultLimit = DefaultPagination.DefaultLimit
	}
	if pages.MaxLimit <= 0 {
		pages.MaxLimit = DefaultPagination.MaxLimit
	}
	if pages.DefaultLimit > pages.MaxLimit {
		pages.DefaultLimit = pages.MaxLimit
	}
	return &Engine[T]{db: db, q: db, res: res, pages: pages, now: time.Now}
}

// With returns a copy running its statements on q, typically a transaction.
func (e *Engine[T]) With(q dbx.DBTX) *Engine[T] {
	cp := *e
	cp.q = q
	return &cp
}

func (e *Engine[T]) DB() DB                 { return e.db }
func (e *Engine[T]) Resource() Resource[T] { return e.res }

func (e *Engine[T]) notFound() error {
	return apierr.NotFound(e.res.Name + " not found.")
}

// Normalize applies the default limit and clamps to the configured ceiling.
func (e *Engine[T]) Normalize(req PageRequest) (limit, page int) {
	limit = e.pages.DefaultLimit
	if req.Limit != nil && *req.Limit > 0 {
		limit = *req.Limit
	}
	if limit > e.pages.MaxLimit {
		limit = e.pages.MaxLimit
	}
	if req.Page != nil && *req.Page > 0 {
		page = *req.Page
	}
	return limit, page
}

func (e *Engine[T]) List(ctx context.Context, owner string, req PageRequest) (Listing[T], error) {
	limit, page := e.Normalize(req)
	// Pages past the largest representable offset are empty.
	if int64(page) > math.MaxInt64/int64(limit) {
		return Listing[T]{Items: make([]T, 0), Limit: limit, Page: page}, nil
	}
	offset := int64(limit) * int64(page)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY id LIMIT $2 OFFSET $3",
		strings.Join(e.res.Columns, ", "), e.res.Table, e.res.Scope("$1"))

	rows, err := e.q.QueryContext(ctx, query, owner, limit, offset)
	if err != nil {
		return Listing[T]{}, apierr.Internal("Error fetching items.", err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := e.res.Scan(rows)
		if err != nil {
			return Listing[T]{}, apierr.Internal("Error fetching items.", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return Listing[T]{}, apierr.Internal("Error fetching items.", err)
	}

	return Listing[T]{Items: items, Limit: limit, Page: page}, nil
}

func (e *Engine[T]) Get(ctx context.Context, owner, id string) (T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 AND %s",
		strings.Join(e.res.Columns, ", "), e.res.Table, e.res.Scope("$2"))

	item, err := e.res.Scan(e.q.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, e.notFound()
		}
		return zero, apierr.Internal("Error fetching item.", err)
	}
	return item, nil
}

// Exists reports whether id resolves under owner.
func (e *Engine[T]) Exists(ctx context.Context, owner, id string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1 AND %s)",
		e.res.Table, e.res.Scope("$2"))

	var ok bool
	if err := e.q.QueryRowContext(ctx, query, id, owner).Scan(&ok); err != nil {
		return false, apierr.Internal("Error fetching item.", err)
	}
	return ok, nil
}

// Create inserts the present fields plus the owner column and returns the
// new id.
func (e *Engine[T]) Create(ctx context.Context, owner string, fields []sqlbuild.Field) (string, error) {
	if e.res.OwnerColumn != "" {
		fields = append([]sqlbuild.Field{sqlbuild.Set(e.res.OwnerColumn, owner)}, fields...)
	}

	stmt, err := sqlbuild.Insert(e.res.Table, fields, "RETURNING id")
	if err != nil {
		return "", apierr.Internal("Failed to create in database.", err)
	}

	var id string
	if err := e.q.QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&id); err != nil {
		return "", apierr.FromStorage(err, "Failed to create in database.")
	}
	return id, nil
}

// Patch applies the non-absent fields to (id, owner). An all-absent field set
// yields NoChanges once the row is confirmed to exist.
func (e *Engine[T]) Patch(ctx context.Context, owner, id string, fields []sqlbuild.Field) (Outcome, error) {
	if !sqlbuild.HasChanges(fields) {
		ok, err := e.Exists(ctx, owner, id)
		if err != nil {
			return NoChanges, err
		}
		if !ok {
			return NoChanges, e.notFound()
		}
		return NoChanges, nil
	}

	if e.res.TouchColumn != "" {
		fields = append(fields, sqlbuild.Set(e.res.TouchColumn, e.now().UTC()))
	}

	stmt, err := sqlbuild.Update(e.res.Table, fields, "WHERE id = $1 AND "+e.res.Scope("$2"), id, owner)
	if err != nil {
		return Updated, apierr.Internal("Failed to patch in database.", err)
	}

	res, err := e.q.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return Updated, apierr.FromStorage(err, "Invalid patch request.")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Updated, apierr.Internal("Failed to patch in database.", err)
	}
	if n == 0 {
		return Updated, e.notFound()
	}
	return Updated, nil
}

func (e *Engine[T]) Delete(ctx context.Context, owner, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND %s", e.res.Table, e.res.Scope("$2"))

	res, err := e.q.ExecContext(ctx, query, id, owner)
	if err != nil {
		return apierr.FromStorage(err, "Failed to delete in database.")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apierr.Internal("Failed to delete in database.", err)
	}
	if n == 0 {
		return e.notFound()
	}
	return nil
}
