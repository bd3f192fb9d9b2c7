package store

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/lineimport/internal/core"
	"github.com/jackc/pgx/v5"
)

var wishlistItemColumns = []string{"wishlist_id", "category_id", "item_name", "bought"}

// WishlistWriter replaces wishlists and their items on each import.
// Gift categories are shared across imports.
type WishlistWriter struct {
	txScope
}

// NewWishlistWriter returns a writer that opens transactions on db.
func NewWishlistWriter(db core.TxBeginner) *WishlistWriter {
	return &WishlistWriter{txScope{db: db}}
}

func (w *WishlistWriter) ClearAll(ctx context.Context) error {
	tx, err := w.current()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM wishlist_items"); err != nil {
		return fmt.Errorf("clear wishlist items: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM wishlists"); err != nil {
		return fmt.Errorf("clear wishlists: %w", err)
	}
	return nil
}

func (w *WishlistWriter) LoadReferences(ctx context.Context) (core.References, error) {
	tx, err := w.current()
	if err != nil {
		return core.References{}, err
	}

	categories, err := listGiftCategories(ctx, tx)
	if err != nil {
		return core.References{}, err
	}
	return core.References{Categories: categories}, nil
}

func (w *WishlistWriter) WriteRecords(ctx context.Context, items []*core.WishlistItem) error {
	tx, err := w.current()
	if err != nil {
		return err
	}

	wishlists := make([]*core.Wishlist, len(items))
	categories := make([]*core.GiftCategory, len(items))
	for i, it := range items {
		wishlists[i] = it.Wishlist
		categories[i] = it.Category
	}

	err = insertReturningIDs(ctx, tx, unsaved(wishlists, func(wl *core.Wishlist) int64 { return wl.ID }),
		"INSERT INTO wishlists (name, parent_pin, child_pin) VALUES ($1, $2, $3) RETURNING id",
		func(wl *core.Wishlist) []any { return []any{wl.Name, wl.ParentPin, wl.ChildPin} },
		func(wl *core.Wishlist, id int64) { wl.ID = id })
	if err != nil {
		return fmt.Errorf("insert wishlists: %w", err)
	}

	err = insertReturningIDs(ctx, tx, unsaved(categories, func(c *core.GiftCategory) int64 { return c.ID }),
		"INSERT INTO gift_categories (name) VALUES ($1) RETURNING id",
		func(c *core.GiftCategory) []any { return []any{c.Name} },
		func(c *core.GiftCategory, id int64) { c.ID = id })
	if err != nil {
		return fmt.Errorf("insert gift categories: %w", err)
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"wishlist_items"}, wishlistItemColumns,
		pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
			it := items[i]
			return []any{it.Wishlist.ID, it.Category.ID, it.ItemName, it.Bought}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy wishlist items: %w", err)
	}
	return nil
}
