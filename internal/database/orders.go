package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createOrder = `
INSERT INTO orders (table_id, waiter_id, status, total_amount)
VALUES ($1, $2, 'Active', 0)
RETURNING id, table_id, waiter_id, cashier_id, order_time, status, total_amount, payment_time, payment_method
`

type CreateOrderParams struct {
	TableID  uuid.UUID
	WaiterID uuid.UUID
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return q.scanOneOrder(ctx, createOrder, arg.TableID, arg.WaiterID)
}

const getOrder = `
SELECT id, table_id, waiter_id, cashier_id, order_time, status, total_amount, payment_time, payment_method
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return q.scanOneOrder(ctx, getOrder, id)
}

const getOrderForUpdate = `
SELECT id, table_id, waiter_id, cashier_id, order_time, status, total_amount, payment_time, payment_method
FROM orders
WHERE id = $1
FOR UPDATE
`

// GetOrderForUpdate locks the order row for the rest of the transaction so
// state transitions and line-item mutations serialize per order.
func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	return q.scanOneOrder(ctx, getOrderForUpdate, id)
}

const listOpenOrders = `
SELECT id, table_id, waiter_id, cashier_id, order_time, status, total_amount, payment_time, payment_method
FROM orders
WHERE status IN ('Active', 'Completed')
ORDER BY order_time
`

// ListOpenOrders returns orders still awaiting payment, oldest first.
func (q *Queries) ListOpenOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOpenOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.TableID, &o.WaiterID, &o.CashierID, &o.OrderTime, &o.Status, &o.TotalAmount, &o.PaymentTime, &o.PaymentMethod); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const hasActiveOrderForTable = `
SELECT EXISTS (
    SELECT 1 FROM orders WHERE table_id = $1 AND status = 'Active'
)
`

func (q *Queries) HasActiveOrderForTable(ctx context.Context, tableID uuid.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, hasActiveOrderForTable, tableID).Scan(&exists)
	return exists, err
}

const updateOrderStatus = `
UPDATE orders
SET status = $1
WHERE id = $2
RETURNING id, table_id, waiter_id, cashier_id, order_time, status, total_amount, payment_time, payment_method
`

type UpdateOrderStatusParams struct {
	Status string
	ID     uuid.UUID
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return q.scanOneOrder(ctx, updateOrderStatus, arg.Status, arg.ID)
}

const updateOrderTotal = `
UPDATE orders
SET total_amount = $1
WHERE id = $2
RETURNING id, table_id, waiter_id, cashier_id, order_time, status, total_amount, payment_time, payment_method
`

type UpdateOrderTotalParams struct {
	TotalAmount pgtype.Numeric
	ID          uuid.UUID
}

func (q *Queries) UpdateOrderTotal(ctx context.Context, arg UpdateOrderTotalParams) (Order, error) {
	return q.scanOneOrder(ctx, updateOrderTotal, arg.TotalAmount, arg.ID)
}

const markOrderPaid = `
UPDATE orders
SET status = 'Paid', cashier_id = $1, payment_method = $2, payment_time = NOW()
WHERE id = $3
RETURNING id, table_id, waiter_id, cashier_id, order_time, status, total_amount, payment_time, payment_method
`

type MarkOrderPaidParams struct {
	CashierID     uuid.UUID
	PaymentMethod string
	ID            uuid.UUID
}

func (q *Queries) MarkOrderPaid(ctx context.Context, arg MarkOrderPaidParams) (Order, error) {
	return q.scanOneOrder(ctx, markOrderPaid, arg.CashierID, arg.PaymentMethod, arg.ID)
}

const createOrderItem = `
INSERT INTO order_items (order_id, item_id, quantity, price_at_order, subtotal)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_id, item_id, quantity, price_at_order, subtotal
`

type CreateOrderItemParams struct {
	OrderID      uuid.UUID
	ItemID       uuid.UUID
	Quantity     int32
	PriceAtOrder pgtype.Numeric
	Subtotal     pgtype.Numeric
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem, arg.OrderID, arg.ItemID, arg.Quantity, arg.PriceAtOrder, arg.Subtotal)
	var oi OrderItem
	err := row.Scan(&oi.ID, &oi.OrderID, &oi.ItemID, &oi.Quantity, &oi.PriceAtOrder, &oi.Subtotal)
	return oi, err
}

const getOrderItem = `
SELECT id, order_id, item_id, quantity, price_at_order, subtotal
FROM order_items
WHERE id = $1
`

func (q *Queries) GetOrderItem(ctx context.Context, id uuid.UUID) (OrderItem, error) {
	row := q.db.QueryRow(ctx, getOrderItem, id)
	var oi OrderItem
	err := row.Scan(&oi.ID, &oi.OrderID, &oi.ItemID, &oi.Quantity, &oi.PriceAtOrder, &oi.Subtotal)
	return oi, err
}

const listOrderItems = `
SELECT id, order_id, item_id, quantity, price_at_order, subtotal
FROM order_items
WHERE order_id = $1
ORDER BY id
`

func (q *Queries) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var oi OrderItem
		if err := rows.Scan(&oi.ID, &oi.OrderID, &oi.ItemID, &oi.Quantity, &oi.PriceAtOrder, &oi.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, oi)
	}
	return items, rows.Err()
}

const countOrderItems = `SELECT COUNT(*) FROM order_items WHERE order_id = $1`

func (q *Queries) CountOrderItems(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countOrderItems, orderID).Scan(&n)
	return n, err
}

const sumOrderItemSubtotals = `
SELECT COALESCE(SUM(subtotal), 0)
FROM order_items
WHERE order_id = $1
`

func (q *Queries) SumOrderItemSubtotals(ctx context.Context, orderID uuid.UUID) (pgtype.Numeric, error) {
	var sum pgtype.Numeric
	err := q.db.QueryRow(ctx, sumOrderItemSubtotals, orderID).Scan(&sum)
	return sum, err
}

const deleteOrderItem = `
DELETE FROM order_items
WHERE id = $1
`

// DeleteOrderItem removes a line item. The ledger's Sale entry for it is
// kept with its order_item_id nulled by the FK (ON DELETE SET NULL).
func (q *Queries) DeleteOrderItem(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteOrderItem, id)
	return err
}

func (q *Queries) scanOneOrder(ctx context.Context, sql string, args ...any) (Order, error) {
	row := q.db.QueryRow(ctx, sql, args...)
	var o Order
	err := row.Scan(&o.ID, &o.TableID, &o.WaiterID, &o.CashierID, &o.OrderTime, &o.Status, &o.TotalAmount, &o.PaymentTime, &o.PaymentMethod)
	return o, err
}
