package enum

// Values below mirror the CHECK constraints in the schema exactly;
// changing one requires a migration.

const (
	RoleAdmin   = "Admin"
	RoleWaiter  = "Waiter"
	RoleCashier = "Cashier"
)

const (
	OrderStatusActive    = "Active"
	OrderStatusCompleted = "Completed"
	OrderStatusPaid      = "Paid"
	OrderStatusCancelled = "Cancelled"
)

const (
	TableStatusAvailable     = "Available"
	TableStatusOccupied      = "Occupied"
	TableStatusReserved      = "Reserved"
	TableStatusNeedsCleaning = "Needs Cleaning"
)

const (
	ReasonSale         = "Sale"
	ReasonManualEntry  = "Manual Stock Entry"
	ReasonSpoilage     = "Spoilage"
	ReasonCorrection   = "Correction"
	ReasonInitialStock = "Initial Stock"
)

// Payment methods are free text in the store; these are the labels the
// terminal offers.
const (
	PaymentMethodCash = "Cash"
	PaymentMethodCard = "Card"
)

// ValidRole reports whether s is one of the three user roles.
func ValidRole(s string) bool {
	switch s {
	case RoleAdmin, RoleWaiter, RoleCashier:
		return true
	}
	return false
}

// ValidTableStatus reports whether s is a recognized table status.
func ValidTableStatus(s string) bool {
	switch s {
	case TableStatusAvailable, TableStatusOccupied, TableStatusReserved, TableStatusNeedsCleaning:
		return true
	}
	return false
}

// ValidManualReason reports whether s is a ledger reason an admin may use
// for a manual stock change. Sale entries are written only by the order
// engine.
func ValidManualReason(s string) bool {
	switch s {
	case ReasonManualEntry, ReasonSpoilage, ReasonCorrection, ReasonInitialStock:
		return true
	}
	return false
}
