package service

import (
	"regexp"

	"github.com/google/uuid"

	"toast/api/internal/apierr"
	"toast/api/internal/patch"
)

var colorPattern = regexp.MustCompile(`^#[A-Fa-f0-9]{6}$`)

const colorMessage = "Color must follow the 6 digit hex format (#ffffff)."

func validateColor(color string) error {
	if !colorPattern.MatchString(color) {
		return apierr.BadRequest(colorMessage)
	}
	return nil
}

func validatePatchColor(color patch.Value[string]) error {
	if err := notNull("Color", color); err != nil {
		return err
	}
	if c, ok := color.Get(); ok {
		return validateColor(c)
	}
	return nil
}

// notNull rejects an explicit null for a column that cannot be cleared.
func notNull[T any](field string, v patch.Value[T]) error {
	if v.IsNull() {
		return apierr.BadRequest(field + " cannot be null.")
	}
	return nil
}

func uuidString(id uuid.UUID) string { return id.String() }

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
