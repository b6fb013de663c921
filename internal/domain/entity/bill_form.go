package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// BillForm holds the fields of the new bill form as submitted.
// Binding tags are validated once at the HTTP boundary.
type BillForm struct {
	Type       string `form:"expense-type" json:"type"`
	Name       string `form:"expense-name" json:"name"`
	Date       string `form:"datepicker" json:"date" binding:"required,datetime=2006-01-02"`
	Amount     string `form:"amount" json:"amount" binding:"required"`
	VAT        string `form:"vat" json:"vat"`
	Pct        string `form:"pct" json:"pct"`
	Commentary string `form:"commentary" json:"commentary"`
}

// ToBill converts the form into a pending bill for user.
// The file reference comes from pending, which may be nil.
func (f BillForm) ToBill(user User, pending *PendingFile) *Bill {
	amount, ok := ParseIntPrefix(f.Amount)
	if !ok {
		amount = 0
	}
	pct, ok := ParseIntPrefix(f.Pct)
	if !ok {
		pct = DefaultPct
	}

	bill := &Bill{
		Email:      user.Email,
		Type:       f.Type,
		Name:       f.Name,
		Amount:     amount,
		Date:       f.Date,
		VAT:        f.VAT,
		Pct:        pct,
		Commentary: f.Commentary,
		Status:     StatusPending,
	}
	if pending != nil {
		bill.ID = pending.Key
		bill.FileURL = pending.FileURL
		bill.FileName = pending.FileName
	}
	return bill
}

// ValidateNumbers rejects an amount or pct whose leading digits do not fit
// an int. Values without leading digits fall back in ToBill.
func (f BillForm) ValidateNumbers() error {
	fields := []struct{ name, value string }{{"amount", f.Amount}, {"pct", f.Pct}}
	for _, field := range fields {
		if _, ok := ParseIntPrefix(field.value); !ok && hasIntPrefix(field.value) {
			return fmt.Errorf("%w: %s %q", ErrNumberOutOfRange, field.name, field.value)
		}
	}
	return nil
}

func hasIntPrefix(s string) bool {
	s = strings.TrimSpace(s)
	if s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

// ParseIntPrefix parses the leading base-10 integer of s, ignoring
// surrounding whitespace and any trailing characters ("12.5" -> 12).
// ok is false when s has no leading digits.
func ParseIntPrefix(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
