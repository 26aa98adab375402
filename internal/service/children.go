package service

import (
	"context"

	"toast/api/internal/tree"
)

// attachChildren fills the derived child id list of every item.
func attachChildren[T any](ctx context.Context, tr *tree.Tree[T], owner string, items []T, id func(*T) string, set func(*T, []string)) error {
	keys := make([]string, len(items))
	for i := range items {
		keys[i] = id(&items[i])
	}

	index, err := tr.Children(ctx, owner, keys...)
	if err != nil {
		return err
	}

	for i := range items {
		children := index[keys[i]]
		if children == nil {
			children = []string{}
		}
		set(&items[i], children)
	}
	return nil
}
