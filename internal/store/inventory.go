package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/dukerupert/larder/internal/model"
)

type InventoryStore struct {
	db *sql.DB
}

func NewInventoryStore(db *sql.DB) *InventoryStore {
	return &InventoryStore{db: db}
}

func scanInventoryItem(s scanner) (*model.InventoryItem, error) {
	var item model.InventoryItem
	var expiresAt, purchasedAt, thawAt sql.NullInt64
	var frozen int
	err := s.Scan(
		&item.ID, &item.UserID, &item.IngredientID, &item.Quantity, &item.Unit, &item.Location,
		&expiresAt, &purchasedAt, &frozen, &thawAt, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.ExpiresAt = fromMillis(expiresAt)
	item.PurchasedAt = fromMillis(purchasedAt)
	item.ThawAt = fromMillis(thawAt)
	item.IsFrozen = frozen != 0
	return &item, nil
}

const inventoryCols = `id, user_id, ingredient_id, quantity, unit, location, expires_at, purchased_at, is_frozen, thaw_at, created_at, updated_at`

// Predicates, one per index on inventory_items.

func byUser(userID string) sq.Eq {
	return sq.Eq{"user_id": userID}
}

func byUserLocation(userID string, loc model.Location) sq.Eq {
	return sq.Eq{"user_id": userID, "location": string(loc)}
}

func expiringBefore(userID string, before time.Time) sq.And {
	return sq.And{
		byUser(userID),
		sq.NotEq{"expires_at": nil},
		sq.LtOrEq{"expires_at": before.UnixMilli()},
	}
}

func (s *InventoryStore) list(ctx context.Context, where sq.Sqlizer, op string) ([]model.InventoryItem, error) {
	b := sq.Select(inventoryCols).From("inventory_items").Where(where).OrderBy("rowid ASC")
	rows, err := query(ctx, s.db, b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := []model.InventoryItem{}
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *InventoryStore) ListByUser(ctx context.Context, userID string) ([]model.InventoryItem, error) {
	return s.list(ctx, byUser(userID), "list inventory")
}

func (s *InventoryStore) ListByUserLocation(ctx context.Context, userID string, loc model.Location) ([]model.InventoryItem, error) {
	return s.list(ctx, byUserLocation(userID, loc), "list inventory by location")
}

// ListExpiringBefore returns the user's dated items expiring at or before the cutoff.
func (s *InventoryStore) ListExpiringBefore(ctx context.Context, userID string, before time.Time) ([]model.InventoryItem, error) {
	return s.list(ctx, expiringBefore(userID, before), "list expiring inventory")
}

func (s *InventoryStore) GetByID(ctx context.Context, id string) (*model.InventoryItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+inventoryCols+` FROM inventory_items WHERE id = ?`, id)
	item, err := scanInventoryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return item, nil
}

// Upsert inserts item, or adds its quantity to the existing row for the same
// (user, ingredient, location). On a merge every other field of item is
// ignored. It reports whether an existing row was merged into.
func (s *InventoryStore) Upsert(ctx context.Context, item model.InventoryItem, now time.Time) (*model.InventoryItem, bool, error) {
	now = now.UTC()
	id := newID()
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO inventory_items (`+inventoryCols+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, ingredient_id, location) DO UPDATE SET
		   quantity = quantity + excluded.quantity,
		   updated_at = excluded.updated_at
		 RETURNING id`,
		id, item.UserID, item.IngredientID, item.Quantity, item.Unit, string(item.Location),
		toMillis(item.ExpiresAt), toMillis(item.PurchasedAt), boolInt(item.IsFrozen), toMillis(item.ThawAt),
		now, now,
	)
	var storedID string
	if err := row.Scan(&storedID); err != nil {
		return nil, false, fmt.Errorf("upsert inventory item: %w", err)
	}
	stored, err := s.GetByID(ctx, storedID)
	if err != nil {
		return nil, false, err
	}
	return stored, storedID != id, nil
}

// Patch applies the non-nil fields of p to the item and stamps updated_at.
// Moving an item to a location that already holds the same ingredient merges
// it into that row: the moved quantity, after any quantity patch, is added to
// the existing row, the moved row is deleted and the surviving row returned.
// The other patched fields are dropped on a merge, as they are for Upsert.
func (s *InventoryStore) Patch(ctx context.Context, id string, p model.InventoryPatch, now time.Time) (*model.InventoryItem, error) {
	now = now.UTC()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := scanInventoryItem(tx.QueryRowContext(ctx,
		`SELECT `+inventoryCols+` FROM inventory_items WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}

	resultID := id
	if p.Location != nil && *p.Location != current.Location {
		var targetID string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM inventory_items WHERE user_id = ? AND ingredient_id = ? AND location = ?`,
			current.UserID, current.IngredientID, string(*p.Location),
		).Scan(&targetID)
		switch {
		case err == sql.ErrNoRows:
		case err != nil:
			return nil, fmt.Errorf("find relocation target: %w", err)
		default:
			if err := mergeInto(ctx, tx, *current, targetID, p, now); err != nil {
				return nil, err
			}
			resultID = targetID
		}
	}

	if resultID == id {
		if err := patchRow(ctx, tx, id, p, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetByID(ctx, resultID)
}

func mergeInto(ctx context.Context, tx *sql.Tx, moved model.InventoryItem, targetID string, p model.InventoryPatch, now time.Time) error {
	qty := moved.Quantity
	if p.Quantity != nil {
		qty = *p.Quantity
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE inventory_items SET quantity = quantity + ?, updated_at = ? WHERE id = ?`,
		qty, now, targetID,
	); err != nil {
		return fmt.Errorf("merge inventory item: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ?`, moved.ID); err != nil {
		return fmt.Errorf("delete merged inventory item: %w", err)
	}
	return nil
}

func patchRow(ctx context.Context, tx *sql.Tx, id string, p model.InventoryPatch, now time.Time) error {
	b := sq.Update("inventory_items").Set("updated_at", now).Where(sq.Eq{"id": id})
	if p.Quantity != nil {
		b = b.Set("quantity", *p.Quantity)
	}
	if p.Unit != nil {
		b = b.Set("unit", *p.Unit)
	}
	if p.Location != nil {
		b = b.Set("location", string(*p.Location))
	}
	if p.ExpiresAt != nil {
		b = b.Set("expires_at", p.ExpiresAt.UnixMilli())
	}
	if p.IsFrozen != nil {
		b = b.Set("is_frozen", boolInt(*p.IsFrozen))
	}
	if p.ThawAt != nil {
		b = b.Set("thaw_at", p.ThawAt.UnixMilli())
	}

	q, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build inventory patch: %w", err)
	}
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("patch inventory item: %w", err)
	}
	return nil
}

func (s *InventoryStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
