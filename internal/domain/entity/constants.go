package entity

// Status constants for Bill
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRefused  = "refused"
)

// DefaultPct is the VAT percentage applied when the form leaves it empty or invalid
const DefaultPct = 20

// Expense type constants offered by the new bill form.
// Bill.Type is free text; these are suggestions, not a closed set.
const (
	ExpenseTypeTransport     = "Transports"
	ExpenseTypeRestaurant    = "Restaurants et bars"
	ExpenseTypeHotel         = "Hôtel et logement"
	ExpenseTypeOnlineService = "Services en ligne"
	ExpenseTypeIT            = "IT et électronique"
	ExpenseTypeEquipment     = "Equipement et matériel"
	ExpenseTypeOffice        = "Fournitures de bureau"
)

// ExpenseTypes lists expense types in form display order
var ExpenseTypes = []string{
	ExpenseTypeTransport,
	ExpenseTypeRestaurant,
	ExpenseTypeHotel,
	ExpenseTypeOnlineService,
	ExpenseTypeIT,
	ExpenseTypeEquipment,
	ExpenseTypeOffice,
}

// User type constants carried by the session
const (
	UserTypeEmployee = "Employee"
	UserTypeAdmin    = "Admin"
)

// IsKnownStatus reports whether status is one of the enumerated bill statuses
func IsKnownStatus(status string) bool {
	switch status {
	case StatusPending, StatusAccepted, StatusRefused:
		return true
	}
	return false
}
