package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/larder/internal/model"
)

type ShoppingListStore struct {
	db *sql.DB
}

func NewShoppingListStore(db *sql.DB) *ShoppingListStore {
	return &ShoppingListStore{db: db}
}

// --- List methods ---

func scanList(s scanner) (*model.ShoppingList, error) {
	var l model.ShoppingList
	err := s.Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

const listCols = `id, user_id, name, created_at, updated_at`

func (s *ShoppingListStore) CreateList(ctx context.Context, userID, name string, now time.Time) (*model.ShoppingList, error) {
	id := newID()
	now = now.UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (`+listCols+`) VALUES (?, ?, ?, ?, ?)`,
		id, userID, name, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert shopping list: %w", err)
	}
	return s.GetList(ctx, id)
}

func (s *ShoppingListStore) GetList(ctx context.Context, id string) (*model.ShoppingList, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+listCols+` FROM shopping_lists WHERE id = ?`, id)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping list: %w", err)
	}
	return l, nil
}

func (s *ShoppingListStore) ListByUser(ctx context.Context, userID string) ([]model.ShoppingList, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+listCols+` FROM shopping_lists WHERE user_id = ? ORDER BY created_at ASC, rowid ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list shopping lists: %w", err)
	}
	defer rows.Close()

	lists := []model.ShoppingList{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

// DeleteList removes the list and, by cascade, its items.
func (s *ShoppingListStore) DeleteList(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM shopping_lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shopping list: %w", err)
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

func (s *ShoppingListStore) touch(ctx context.Context, listID string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE shopping_lists SET updated_at = ? WHERE id = ?`, now.UTC(), listID)
	if err != nil {
		return fmt.Errorf("touch shopping list: %w", err)
	}
	return nil
}

// --- Item methods ---

func scanListItem(s scanner) (*model.ShoppingListItem, error) {
	var item model.ShoppingListItem
	var purchased int
	err := s.Scan(
		&item.ID, &item.ListID, &item.IngredientID, &item.Quantity, &item.Unit,
		&purchased, &item.Notes, &item.SortOrder, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.IsPurchased = purchased != 0
	return &item, nil
}

const listItemCols = `id, list_id, ingredient_id, quantity, unit, is_purchased, notes, sort_order, created_at`

func (s *ShoppingListStore) GetItem(ctx context.Context, id string) (*model.ShoppingListItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+listItemCols+` FROM shopping_list_items WHERE id = ?`, id)
	item, err := scanListItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping list item: %w", err)
	}
	return item, nil
}

// AddItem appends an item to the end of the list.
func (s *ShoppingListStore) AddItem(ctx context.Context, item model.ShoppingListItem, now time.Time) (*model.ShoppingListItem, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shopping_list_items (`+listItemCols+`)
		 SELECT ?, ?, ?, ?, ?, 0, ?, COALESCE(MAX(sort_order), -1) + 1, ?
		 FROM shopping_list_items WHERE list_id = ?`,
		id, item.ListID, item.IngredientID, item.Quantity, item.Unit, item.Notes, now.UTC(), item.ListID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert shopping list item: %w", err)
	}
	if err := s.touch(ctx, item.ListID, now); err != nil {
		return nil, err
	}
	return s.GetItem(ctx, id)
}

func (s *ShoppingListStore) ListItems(ctx context.Context, listID string) ([]model.ShoppingListItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+listItemCols+` FROM shopping_list_items WHERE list_id = ? ORDER BY is_purchased ASC, sort_order ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shopping list items: %w", err)
	}
	defer rows.Close()

	items := []model.ShoppingListItem{}
	for rows.Next() {
		item, err := scanListItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping list item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *ShoppingListStore) TogglePurchased(ctx context.Context, id string, now time.Time) (*model.ShoppingListItem, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE shopping_list_items SET is_purchased = ? WHERE id = ?`,
		boolInt(!item.IsPurchased), id,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle purchased: %w", err)
	}
	if err := s.touch(ctx, item.ListID, now); err != nil {
		return nil, err
	}
	return s.GetItem(ctx, id)
}

func (s *ShoppingListStore) DeleteItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM shopping_list_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shopping list item: %w", err)
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

func (s *ShoppingListStore) ClearPurchased(ctx context.Context, listID string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM shopping_list_items WHERE list_id = ? AND is_purchased = 1`, listID)
	if err != nil {
		return 0, fmt.Errorf("clear purchased: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

// CountOpenItems counts unpurchased items across all of the user's lists.
func (s *ShoppingListStore) CountOpenItems(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM shopping_list_items i
		 JOIN shopping_lists l ON l.id = i.list_id
		 WHERE l.user_id = ? AND i.is_purchased = 0`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count open items: %w", err)
	}
	return count, nil
}
