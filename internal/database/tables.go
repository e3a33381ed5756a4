package database

import (
	"context"

	"github.com/google/uuid"
)

const listTables = `
SELECT id, table_number, capacity, status
FROM tables
ORDER BY table_number
`

func (q *Queries) ListTables(ctx context.Context) ([]DiningTable, error) {
	rows, err := q.db.Query(ctx, listTables)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tables []DiningTable
	for rows.Next() {
		var t DiningTable
		if err := rows.Scan(&t.ID, &t.TableNumber, &t.Capacity, &t.Status); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

const getTable = `
SELECT id, table_number, capacity, status
FROM tables
WHERE id = $1
`

func (q *Queries) GetTable(ctx context.Context, id uuid.UUID) (DiningTable, error) {
	row := q.db.QueryRow(ctx, getTable, id)
	var t DiningTable
	err := row.Scan(&t.ID, &t.TableNumber, &t.Capacity, &t.Status)
	return t, err
}

const getTableForUpdate = `
SELECT id, table_number, capacity, status
FROM tables
WHERE id = $1
FOR UPDATE
`

// GetTableForUpdate locks the table row so concurrent order creation against
// the same table serializes on the active-order check.
func (q *Queries) GetTableForUpdate(ctx context.Context, id uuid.UUID) (DiningTable, error) {
	row := q.db.QueryRow(ctx, getTableForUpdate, id)
	var t DiningTable
	err := row.Scan(&t.ID, &t.TableNumber, &t.Capacity, &t.Status)
	return t, err
}

const createTable = `
INSERT INTO tables (table_number, capacity, status)
VALUES ($1, $2, $3)
RETURNING id, table_number, capacity, status
`

type CreateTableParams struct {
	TableNumber string
	Capacity    int32
	Status      string
}

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (DiningTable, error) {
	row := q.db.QueryRow(ctx, createTable, arg.TableNumber, arg.Capacity, arg.Status)
	var t DiningTable
	err := row.Scan(&t.ID, &t.TableNumber, &t.Capacity, &t.Status)
	return t, err
}

const updateTableStatus = `
UPDATE tables
SET status = $1
WHERE id = $2
RETURNING id, table_number, capacity, status
`

type UpdateTableStatusParams struct {
	Status string
	ID     uuid.UUID
}

func (q *Queries) UpdateTableStatus(ctx context.Context, arg UpdateTableStatusParams) (DiningTable, error) {
	row := q.db.QueryRow(ctx, updateTableStatus, arg.Status, arg.ID)
	var t DiningTable
	err := row.Scan(&t.ID, &t.TableNumber, &t.Capacity, &t.Status)
	return t, err
}
