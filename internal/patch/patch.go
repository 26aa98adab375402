// Package patch provides a three-state field wrapper for partial updates.
//
// A request body decoded into a struct of patch.Value fields keeps the
// difference between a key that was never sent (Absent), a key sent as
// JSON null (Null) and a key sent with a value (Present).
package patch

import (
	"bytes"
	"encoding/json"
)

type State uint8

const (
	Absent State = iota
	Null
	Present
)

func (s State) String() string {
	switch s {
	case Null:
		return "null"
	case Present:
		return "present"
	default:
		return "absent"
	}
}

// Value is the zero-value-Absent tri-state wrapper. Use the omitzero json
// tag on Value fields so Absent fields are dropped on encode.
type Value[T any] struct {
	state State
	value T
}

func Set[T any](v T) Value[T] {
	return Value[T]{state: Present, value: v}
}

func Clear[T any]() Value[T] {
	return Value[T]{state: Null}
}

func (p Value[T]) State() State    { return p.state }
func (p Value[T]) IsAbsent() bool  { return p.state == Absent }
func (p Value[T]) IsNull() bool    { return p.state == Null }
func (p Value[T]) IsPresent() bool { return p.state == Present }

// IsZero reports Absent. encoding/json consults it for omitzero.
func (p Value[T]) IsZero() bool { return p.state == Absent }

// Get returns the wrapped value and true only when Present.
func (p Value[T]) Get() (T, bool) {
	if p.state != Present {
		var zero T
		return zero, false
	}
	return p.value, true
}

func (p *Value[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		p.state = Null
		p.value = zero
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p.state = Present
	p.value = v
	return nil
}

// MarshalJSON encodes Absent and Null alike as null; callers that need the
// key dropped for Absent must tag the field with omitzero.
func (p Value[T]) MarshalJSON() ([]byte, error) {
	if p.state != Present {
		return []byte("null"), nil
	}
	return json.Marshal(p.value)
}

// Map converts a Present value with f. Absent and Null carry over unchanged.
func Map[T, U any](v Value[T], f func(T) U) Value[U] {
	switch v.state {
	case Present:
		return Set(f(v.value))
	case Null:
		return Clear[U]()
	default:
		return Value[U]{}
	}
}
