// Package format derives display strings for bills.
package format

import (
	"fmt"
	"time"

	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/i18n"
)

// ISODate is the layout of Bill.Date
const ISODate = "2006-01-02"

// StatusClassUnknown is the CSS class of statuses outside the enumerated set
const StatusClassUnknown = "unknown"

// Formatter formats bill dates and statuses for one language
type Formatter struct {
	lang string
}

// NewFormatter creates a Formatter for lang, falling back to the default language
func NewFormatter(lang string) *Formatter {
	if !i18n.Supported(lang) {
		lang = i18n.DefaultLang
	}
	return &Formatter{lang: lang}
}

// Lang returns the formatter language
func (f *Formatter) Lang() string {
	return f.lang
}

// Date renders an ISO date as "<day> <Mon>. <yy>", e.g. "4 Avr. 04"
func (f *Formatter) Date(iso string) (string, error) {
	t, err := time.Parse(ISODate, iso)
	if err != nil {
		return "", fmt.Errorf("invalid bill date %q: %w", iso, err)
	}
	month := i18n.Months(f.lang)[t.Month()-1]
	return fmt.Sprintf("%d %s. %02d", t.Day(), month, t.Year()%100), nil
}

// Status returns the localized label of status, or status itself when unknown
func (f *Formatter) Status(status string) string {
	if !entity.IsKnownStatus(status) {
		return status
	}
	return i18n.T(f.lang, "status_"+status)
}

// StatusClass returns the display-only CSS class of status
func (f *Formatter) StatusClass(status string) string {
	if !entity.IsKnownStatus(status) {
		return StatusClassUnknown
	}
	return status
}
