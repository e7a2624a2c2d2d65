// Package importer parses free-text invoice batches: one record per line,
// comma-separated fields in a fixed positional order. Parsing never hits
// the network or the database; callers preview the per-line reports before
// posting valid records individually.
package importer

import (
	"fmt"
	"strings"
	"time"
)

// Field order within a line. Only the first three are mandatory.
const (
	fieldCustomerName = iota
	fieldInvoiceDate
	fieldAmountDue
	fieldServiceDescription
	fieldPaymentTerms
	fieldReferenceNumber
	fieldCategory
)

// minFieldsError is the exact message surfaced for short lines.
const minFieldsError = "Minimum 3 fields required: Customer Name, Invoice Date, Amount Due"

// InvoiceRecord is one parsed line.
type InvoiceRecord struct {
	CustomerName       string    `json:"customer_name"`
	InvoiceDate        time.Time `json:"invoice_date"`
	AmountDue          string    `json:"amount_due"`
	ServiceDescription string    `json:"service_description,omitempty"`
	PaymentTerms       string    `json:"payment_terms,omitempty"`
	ReferenceNumber    string    `json:"reference_number,omitempty"`
	Category           string    `json:"category,omitempty"`
}

// LineReport is the validity report for one input line.
type LineReport struct {
	Line    int           `json:"line"`
	Raw     string        `json:"raw"`
	Record  InvoiceRecord `json:"record"`
	IsValid bool          `json:"is_valid"`
	Errors  []string      `json:"errors"`
}

// dateLayouts are accepted invoice date formats, tried in order.
var dateLayouts = []string{"2006-01-02", "01/02/2006", "2006/01/02"}

// ParseLines parses the whole text block. Blank lines are skipped; line
// numbers refer to the original input, starting at 1.
func ParseLines(text string) []LineReport {
	var reports []LineReport
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" {
			continue
		}
		reports = append(reports, ParseLine(i+1, line))
	}
	return reports
}

// ParseLine parses a single non-empty line into a LineReport.
func ParseLine(lineNo int, line string) LineReport {
	report := LineReport{Line: lineNo, Raw: line, Errors: []string{}}

	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	if len(fields) < 3 {
		report.Errors = append(report.Errors, minFieldsError)
		return report
	}

	rec := InvoiceRecord{
		CustomerName: fields[fieldCustomerName],
		AmountDue:    fields[fieldAmountDue],
	}
	if len(fields) > fieldServiceDescription {
		rec.ServiceDescription = fields[fieldServiceDescription]
	}
	if len(fields) > fieldPaymentTerms {
		rec.PaymentTerms = fields[fieldPaymentTerms]
	}
	if len(fields) > fieldReferenceNumber {
		rec.ReferenceNumber = fields[fieldReferenceNumber]
	}
	if len(fields) > fieldCategory {
		rec.Category = fields[fieldCategory]
	}

	if rec.CustomerName == "" {
		report.Errors = append(report.Errors, "Customer Name is required")
	}

	if date, ok := parseDate(fields[fieldInvoiceDate]); ok {
		rec.InvoiceDate = date
	} else {
		report.Errors = append(report.Errors, "Invalid Invoice Date: "+fields[fieldInvoiceDate])
	}

	if !validAmount(rec.AmountDue) {
		report.Errors = append(report.Errors, "Invalid Amount Due: "+rec.AmountDue)
	}

	report.Record = rec
	report.IsValid = len(report.Errors) == 0
	return report
}

// ParseDate parses a date in any accepted layout. Handlers use it so
// manual entry and bulk import accept the same formats.
func ParseDate(s string) (time.Time, error) {
	t, ok := parseDate(strings.TrimSpace(s))
	if !ok {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}
	return t, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// validAmount accepts plain decimal amounts: digits with at most one dot.
func validAmount(s string) bool {
	if s == "" {
		return false
	}
	dots := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return s != "."
}
