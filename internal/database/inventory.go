package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createInventoryLogEntry = `
INSERT INTO inventory_log (item_id, change_quantity, new_stock_level, reason, order_item_id, admin_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, item_id, change_quantity, new_stock_level, reason, order_item_id, admin_id, log_time
`

type CreateInventoryLogEntryParams struct {
	ItemID         uuid.UUID
	ChangeQuantity int32
	NewStockLevel  int32
	Reason         string
	OrderItemID    pgtype.UUID
	AdminID        pgtype.UUID
}

// CreateInventoryLogEntry appends to the ledger. Entries are never updated
// or deleted afterwards.
func (q *Queries) CreateInventoryLogEntry(ctx context.Context, arg CreateInventoryLogEntryParams) (InventoryLogEntry, error) {
	row := q.db.QueryRow(ctx, createInventoryLogEntry,
		arg.ItemID, arg.ChangeQuantity, arg.NewStockLevel, arg.Reason, arg.OrderItemID, arg.AdminID)
	var e InventoryLogEntry
	err := row.Scan(&e.ID, &e.ItemID, &e.ChangeQuantity, &e.NewStockLevel, &e.Reason, &e.OrderItemID, &e.AdminID, &e.LogTime)
	return e, err
}

const listInventoryLogByItem = `
SELECT id, item_id, change_quantity, new_stock_level, reason, order_item_id, admin_id, log_time
FROM inventory_log
WHERE item_id = $1
ORDER BY log_time, id
`

func (q *Queries) ListInventoryLogByItem(ctx context.Context, itemID uuid.UUID) ([]InventoryLogEntry, error) {
	rows, err := q.db.Query(ctx, listInventoryLogByItem, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []InventoryLogEntry
	for rows.Next() {
		var e InventoryLogEntry
		if err := rows.Scan(&e.ID, &e.ItemID, &e.ChangeQuantity, &e.NewStockLevel, &e.Reason, &e.OrderItemID, &e.AdminID, &e.LogTime); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
