package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntPrefix(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   int
		wantOK bool
	}{
		{name: "plain integer", input: "120", want: 120, wantOK: true},
		{name: "surrounding spaces", input: "  42 ", want: 42, wantOK: true},
		{name: "decimal truncated", input: "12.5", want: 12, wantOK: true},
		{name: "trailing letters", input: "10abc", want: 10, wantOK: true},
		{name: "negative", input: "-3", want: -3, wantOK: true},
		{name: "empty", input: "", wantOK: false},
		{name: "sign only", input: "-", wantOK: false},
		{name: "letters", input: "abc", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseIntPrefix(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestBillForm_ToBill(t *testing.T) {
	user := User{Email: "employee@test.tld", Type: UserTypeEmployee}

	t.Run("uses pending file reference", func(t *testing.T) {
		form := BillForm{
			Type:   ExpenseTypeHotel,
			Name:   "Hôtel du centre ville",
			Date:   "2022-12-30",
			Amount: "120",
			VAT:    "10",
			Pct:    "10",
		}
		pending := &PendingFile{FileURL: "/files/k1/facture.png", FileName: "facture.png", Key: "k1"}

		bill := form.ToBill(user, pending)

		assert.Equal(t, "k1", bill.ID)
		assert.Equal(t, "employee@test.tld", bill.Email)
		assert.Equal(t, 120, bill.Amount)
		assert.Equal(t, 10, bill.Pct)
		assert.Equal(t, "10", bill.VAT)
		assert.Equal(t, "/files/k1/facture.png", bill.FileURL)
		assert.Equal(t, "facture.png", bill.FileName)
		assert.Equal(t, StatusPending, bill.Status)
	})

	t.Run("empty pct defaults to 20", func(t *testing.T) {
		bill := BillForm{Date: "2022-12-30", Amount: "50"}.ToBill(user, nil)
		assert.Equal(t, DefaultPct, bill.Pct)
	})

	t.Run("invalid pct defaults to 20", func(t *testing.T) {
		bill := BillForm{Date: "2022-12-30", Amount: "50", Pct: "abc"}.ToBill(user, nil)
		assert.Equal(t, DefaultPct, bill.Pct)
	})

	t.Run("missing upload leaves file fields empty", func(t *testing.T) {
		bill := BillForm{Date: "2022-12-30", Amount: "50"}.ToBill(User{}, nil)
		assert.Empty(t, bill.ID)
		assert.Empty(t, bill.FileURL)
		assert.Empty(t, bill.FileName)
		assert.Empty(t, bill.Email)
	})
}

func TestFileUpload_Extension(t *testing.T) {
	assert.Equal(t, "png", (&FileUpload{Name: "facture.PNG"}).Extension())
	assert.Equal(t, "jpeg", (&FileUpload{Name: "scan.final.jpeg"}).Extension())
	assert.Equal(t, "", (&FileUpload{Name: "noextension"}).Extension())
}

func TestStatusCodeOf(t *testing.T) {
	err := fmt.Errorf("list bills: %w", &StatusError{StatusCode: 404})
	assert.Equal(t, 404, StatusCodeOf(err))
	assert.Equal(t, "Erreur 404", (&StatusError{StatusCode: 404}).Error())
	assert.Equal(t, 0, StatusCodeOf(errors.New("Erreur 500")))
}

func TestBillForm_ValidateNumbers(t *testing.T) {
	tests := []struct {
		name   string
		form   BillForm
		reject bool
	}{
		{"plain", BillForm{Amount: "348", Pct: "20"}, false},
		{"fallbacks", BillForm{Amount: "abc", Pct: ""}, false},
		{"decimal", BillForm{Amount: "12.5", Pct: " 7 "}, false},
		{"amount overflow", BillForm{Amount: "99999999999999999999"}, true},
		{"negative overflow", BillForm{Amount: "-99999999999999999999"}, true},
		{"pct overflow", BillForm{Amount: "1", Pct: "123456789012345678901234"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.ValidateNumbers()
			if tt.reject {
				assert.ErrorIs(t, err, ErrNumberOutOfRange)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
