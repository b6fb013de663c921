// Package i18n holds the UI translations of the employee pages.
// French is the default language; unknown languages fall back to it.
package i18n

import (
	"fmt"
	"strings"
)

// DefaultLang is used when no supported language is requested
const DefaultLang = "fr"

var translations = map[string]map[string]string{
	"fr": {
		"bills_title":        "Mes notes de frais",
		"new_bill":           "Nouvelle note de frais",
		"send_bill":          "Envoyer une note de frais",
		"export":             "Exporter",
		"col_type":           "Type",
		"col_name":           "Nom",
		"col_date":           "Date",
		"col_amount":         "Montant",
		"col_status":         "Statut",
		"col_actions":        "Actions",
		"field_type":         "Type de dépense",
		"field_name":         "Nom de la dépense",
		"field_date":         "Date",
		"field_amount":       "Montant TTC",
		"field_vat":          "TVA",
		"field_pct":          "%",
		"field_commentary":   "Commentaire",
		"field_file":         "Justificatif",
		"submit":             "Envoyer",
		"status_pending":     "En attente",
		"status_accepted":    "Accepté",
		"status_refused":     "Refusé",
		"file_type_invalid":  "Seuls les fichiers jpg, jpeg et png sont acceptés",
		"file_too_large":     "Le fichier est trop volumineux",
		"file_upload_failed": "Le justificatif n'a pas pu être envoyé",
		"form_invalid":       "Veuillez renseigner la date et le montant",
		"error":              "Erreur",
		"error_status":       "Erreur %d",
		"no_bills":           "Aucune note de frais",
		"proof":              "Justificatif",
	},
	"en": {
		"bills_title":        "My expense reports",
		"new_bill":           "New expense report",
		"send_bill":          "Send an expense report",
		"export":             "Export",
		"col_type":           "Type",
		"col_name":           "Name",
		"col_date":           "Date",
		"col_amount":         "Amount",
		"col_status":         "Status",
		"col_actions":        "Actions",
		"field_type":         "Expense type",
		"field_name":         "Expense name",
		"field_date":         "Date",
		"field_amount":       "Amount incl. tax",
		"field_vat":          "VAT",
		"field_pct":          "%",
		"field_commentary":   "Comment",
		"field_file":         "Proof",
		"submit":             "Send",
		"status_pending":     "Pending",
		"status_accepted":    "Accepted",
		"status_refused":     "Refused",
		"file_type_invalid":  "Only jpg, jpeg and png files are accepted",
		"file_too_large":     "The file is too large",
		"file_upload_failed": "The proof could not be uploaded",
		"form_invalid":       "Please fill in the date and the amount",
		"error":              "Error",
		"error_status":       "Error %d",
		"no_bills":           "No expense reports",
		"proof":              "Proof",
	},
}

var months = map[string][12]string{
	"fr": {"Jan", "Fév", "Mar", "Avr", "Mai", "Jui", "Jui", "Aoû", "Sep", "Oct", "Nov", "Déc"},
	"en": {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

// Supported reports whether lang has a translation table
func Supported(lang string) bool {
	_, ok := translations[lang]
	return ok
}

// T returns the translation of code in lang.
// Unknown languages use French; unknown codes return the code itself.
func T(lang, code string) string {
	table, ok := translations[lang]
	if !ok {
		table = translations[DefaultLang]
	}
	if s, ok := table[code]; ok {
		return s
	}
	if s, ok := translations[DefaultLang][code]; ok {
		return s
	}
	return code
}

// Tf formats the translation of code with args
func Tf(lang, code string, args ...any) string {
	return fmt.Sprintf(T(lang, code), args...)
}

// Months returns the three-letter capitalized month abbreviations for lang
func Months(lang string) [12]string {
	if m, ok := months[lang]; ok {
		return m
	}
	return months[DefaultLang]
}

// DetectLanguage picks the first supported language of an Accept-Language header
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		base := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if Supported(base) {
			return base
		}
	}
	return DefaultLang
}
