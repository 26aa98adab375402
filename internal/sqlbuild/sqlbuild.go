// Package sqlbuild turns sets of patch fields into parameterized INSERT and
// UPDATE statements for PostgreSQL.
//
// Values are never written into statement text. Every present value becomes
// a $n placeholder with the value appended to Statement.Args, so quoting and
// escaping are left to the driver. Only column and table identifiers reach
// the text, and they are checked against a conservative pattern first.
package sqlbuild

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"toast/api/internal/patch"
)

var (
	// ErrNoChanges is returned by Update when every field is Absent.
	ErrNoChanges         = errors.New("no changes")
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type Field struct {
	Column string
	State  patch.State
	Value  any
}

// Patched builds a field from a tri-state patch value.
func Patched[T any](column string, v patch.Value[T]) Field {
	f := Field{Column: column, State: v.State()}
	if val, ok := v.Get(); ok {
		f.Value = val
	}
	return f
}

// Set builds an always-present field.
func Set(column string, v any) Field {
	return Field{Column: column, State: patch.Present, Value: v}
}

// Optional builds a field for creation payloads: nil is Absent so the column
// is left to its storage default.
func Optional[T any](column string, v *T) Field {
	if v == nil {
		return Field{Column: column, State: patch.Absent}
	}
	return Field{Column: column, State: patch.Present, Value: *v}
}

type Statement struct {
	SQL  string
	Args []any
}

func CheckIdentifier(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// Placeholders renders n consecutive placeholders starting at $start.
func Placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

// HasChanges reports whether at least one field is Null or Present.
func HasChanges(fields []Field) bool {
	for _, f := range fields {
		if f.State != patch.Absent {
			return true
		}
	}
	return false
}

// Update renders "UPDATE table SET ... <where>". The where clause owns
// placeholders $1..$len(whereArgs); SET placeholders are numbered after them
// and whereArgs lead the returned Args. Absent fields are skipped, Null
// fields become "col = NULL".
func Update(table string, fields []Field, where string, whereArgs ...any) (Statement, error) {
	if err := CheckIdentifier(table); err != nil {
		return Statement{}, err
	}

	args := make([]any, 0, len(whereArgs)+len(fields))
	args = append(args, whereArgs...)
	sets := make([]string, 0, len(fields))

	for _, f := range fields {
		if f.State == patch.Absent {
			continue
		}
		if err := CheckIdentifier(f.Column); err != nil {
			return Statement{}, err
		}
		if f.State == patch.Null {
			sets = append(sets, f.Column+" = NULL")
			continue
		}
		args = append(args, f.Value)
		sets = append(sets, fmt.Sprintf("%s = $%d", f.Column, len(args)))
	}

	if len(sets) == 0 {
		return Statement{}, ErrNoChanges
	}

	sql := fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(sets, ", "))
	if where != "" {
		sql += " " + where
	}
	return Statement{SQL: sql, Args: args}, nil
}

// Insert renders "INSERT INTO table (...) VALUES (...) <suffix>" from the
// Present fields only. With nothing present it falls back to DEFAULT VALUES.
func Insert(table string, fields []Field, suffix string) (Statement, error) {
	if err := CheckIdentifier(table); err != nil {
		return Statement{}, err
	}

	cols := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		if f.State != patch.Present {
			continue
		}
		if err := CheckIdentifier(f.Column); err != nil {
			return Statement{}, err
		}
		cols = append(cols, f.Column)
		args = append(args, f.Value)
	}

	var sql string
	if len(cols) == 0 {
		sql = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", table)
	} else {
		sql = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			table, strings.Join(cols, ", "), Placeholders(1, len(cols)))
	}
	if suffix != "" {
		sql += " " + suffix
	}
	return Statement{SQL: sql, Args: args}, nil
}
