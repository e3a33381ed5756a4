package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const listCategories = `
SELECT id, name, description
FROM categories
ORDER BY name
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

const createCategory = `
INSERT INTO categories (name, description)
VALUES ($1, $2)
RETURNING id, name, description
`

type CreateCategoryParams struct {
	Name        string
	Description pgtype.Text
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, createCategory, arg.Name, arg.Description)
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Description)
	return c, err
}

const updateCategory = `
UPDATE categories
SET name = $1, description = $2
WHERE id = $3
RETURNING id, name, description
`

type UpdateCategoryParams struct {
	Name        string
	Description pgtype.Text
	ID          uuid.UUID
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, updateCategory, arg.Name, arg.Description, arg.ID)
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Description)
	return c, err
}

const deleteCategory = `
DELETE FROM categories
WHERE id = $1
RETURNING id
`

// DeleteCategory cascades to the category's menu items at the schema level.
// It fails with a foreign key violation if any of those items appears in
// order history (order_items restricts item deletion).
func (q *Queries) DeleteCategory(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, deleteCategory, id).Scan(&out)
	return out, err
}

const listMenuItems = `
SELECT id, name, description, price, category_id, image_path, current_stock, is_available
FROM menu_items
ORDER BY name
`

func (q *Queries) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMenuItems(rows)
}

const listMenuItemsByCategory = `
SELECT id, name, description, price, category_id, image_path, current_stock, is_available
FROM menu_items
WHERE category_id = $1
ORDER BY name
`

func (q *Queries) ListMenuItemsByCategory(ctx context.Context, categoryID uuid.UUID) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItemsByCategory, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMenuItems(rows)
}

const getMenuItem = `
SELECT id, name, description, price, category_id, image_path, current_stock, is_available
FROM menu_items
WHERE id = $1
`

func (q *Queries) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	return q.scanOneMenuItem(ctx, getMenuItem, id)
}

const getMenuItemForUpdate = `
SELECT id, name, description, price, category_id, image_path, current_stock, is_available
FROM menu_items
WHERE id = $1
FOR UPDATE
`

// GetMenuItemForUpdate locks the item row for the rest of the transaction,
// serializing concurrent stock mutations on the same item.
func (q *Queries) GetMenuItemForUpdate(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	return q.scanOneMenuItem(ctx, getMenuItemForUpdate, id)
}

const createMenuItem = `
INSERT INTO menu_items (name, description, price, category_id, image_path, is_available)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, name, description, price, category_id, image_path, current_stock, is_available
`

type CreateMenuItemParams struct {
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	CategoryID  uuid.UUID
	ImagePath   pgtype.Text
	IsAvailable bool
}

// CreateMenuItem inserts an item with zero stock. Stock is established
// afterwards through the inventory ledger, never directly.
func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	return q.scanOneMenuItem(ctx, createMenuItem,
		arg.Name, arg.Description, arg.Price, arg.CategoryID, arg.ImagePath, arg.IsAvailable)
}

const updateMenuItem = `
UPDATE menu_items
SET name = $1, description = $2, price = $3, category_id = $4, image_path = $5, is_available = $6
WHERE id = $7
RETURNING id, name, description, price, category_id, image_path, current_stock, is_available
`

type UpdateMenuItemParams struct {
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	CategoryID  uuid.UUID
	ImagePath   pgtype.Text
	IsAvailable bool
	ID          uuid.UUID
}

// UpdateMenuItem deliberately excludes current_stock; see UpdateMenuItemStock.
func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	return q.scanOneMenuItem(ctx, updateMenuItem,
		arg.Name, arg.Description, arg.Price, arg.CategoryID, arg.ImagePath, arg.IsAvailable, arg.ID)
}

const updateMenuItemStock = `
UPDATE menu_items
SET current_stock = $1
WHERE id = $2
`

type UpdateMenuItemStockParams struct {
	CurrentStock int32
	ID           uuid.UUID
}

// UpdateMenuItemStock is only called alongside an inventory_log insert, in
// the same transaction, so the ledger stays the source of truth.
func (q *Queries) UpdateMenuItemStock(ctx context.Context, arg UpdateMenuItemStockParams) error {
	_, err := q.db.Exec(ctx, updateMenuItemStock, arg.CurrentStock, arg.ID)
	return err
}

const deleteMenuItem = `
DELETE FROM menu_items
WHERE id = $1
RETURNING id
`

// DeleteMenuItem fails with a foreign key violation when the item is
// referenced by any order item (ON DELETE RESTRICT).
func (q *Queries) DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, deleteMenuItem, id).Scan(&out)
	return out, err
}

func (q *Queries) scanOneMenuItem(ctx context.Context, sql string, args ...any) (MenuItem, error) {
	row := q.db.QueryRow(ctx, sql, args...)
	var m MenuItem
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.CategoryID, &m.ImagePath, &m.CurrentStock, &m.IsAvailable)
	return m, err
}

func scanMenuItems(rows pgx.Rows) ([]MenuItem, error) {
	var items []MenuItem
	for rows.Next() {
		var m MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.CategoryID, &m.ImagePath, &m.CurrentStock, &m.IsAvailable); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
