package entity

import "time"

// Bill is an expense report as stored by the bill store.
// Date is ISO 8601 (YYYY-MM-DD) and is the only value used for ordering.
type Bill struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Type         string    `json:"type"`
	Name         string    `json:"name"`
	Amount       int       `json:"amount"`
	Date         string    `json:"date"`
	VAT          string    `json:"vat"`
	Pct          int       `json:"pct"`
	Commentary   string    `json:"commentary"`
	CommentAdmin string    `json:"commentAdmin,omitempty"`
	FileURL      string    `json:"fileUrl"`
	FileName     string    `json:"fileName"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// HasProof returns true if an uploaded proof is attached to the bill
func (b *Bill) HasProof() bool {
	return b.FileURL != ""
}

// BillView is a bill ready for display.
// Bill is never modified; the display fields are derived at render time.
type BillView struct {
	Bill
	DisplayDate   string `json:"displayDate"`
	DisplayStatus string `json:"displayStatus"`
	StatusClass   string `json:"statusClass"`
}

// ProofModal is the state of the modal showing a bill's proof image
type ProofModal struct {
	Visible    bool   `json:"visible"`
	BillID     string `json:"billId"`
	ImageURL   string `json:"imageUrl"`
	ImageWidth int    `json:"imageWidth"`
	Alt        string `json:"alt"`
}
