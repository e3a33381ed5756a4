package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID             uuid.UUID
	Username       string
	HashedPassword string
	Role           string
	FullName       string
	IsActive       bool
	CreatedAt      time.Time
}

type Category struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
}

type MenuItem struct {
	ID           uuid.UUID
	Name         string
	Description  pgtype.Text
	Price        pgtype.Numeric
	CategoryID   uuid.UUID
	ImagePath    pgtype.Text
	CurrentStock int32
	IsAvailable  bool
}

type DiningTable struct {
	ID          uuid.UUID
	TableNumber string
	Capacity    int32
	Status      string
}

type Order struct {
	ID            uuid.UUID
	TableID       uuid.UUID
	WaiterID      uuid.UUID
	CashierID     pgtype.UUID
	OrderTime     time.Time
	Status        string
	TotalAmount   pgtype.Numeric
	PaymentTime   pgtype.Timestamptz
	PaymentMethod pgtype.Text
}

type OrderItem struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	ItemID       uuid.UUID
	Quantity     int32
	PriceAtOrder pgtype.Numeric
	Subtotal     pgtype.Numeric
}

type InventoryLogEntry struct {
	ID             uuid.UUID
	ItemID         uuid.UUID
	ChangeQuantity int32
	NewStockLevel  int32
	Reason         string
	OrderItemID    pgtype.UUID
	AdminID        pgtype.UUID
	LogTime        time.Time
}
