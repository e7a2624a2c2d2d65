package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLineFullRecord(t *testing.T) {
	report := ParseLine(1, "Client A, 2024-07-01, 1500.00, Web Design, Net 30, REF123, Marketing")

	require.True(t, report.IsValid, "errors: %v", report.Errors)
	assert.Empty(t, report.Errors)
	assert.Equal(t, "Client A", report.Record.CustomerName)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), report.Record.InvoiceDate)
	assert.Equal(t, "1500.00", report.Record.AmountDue)
	assert.Equal(t, "Web Design", report.Record.ServiceDescription)
	assert.Equal(t, "Net 30", report.Record.PaymentTerms)
	assert.Equal(t, "REF123", report.Record.ReferenceNumber)
	assert.Equal(t, "Marketing", report.Record.Category)
}

func TestParseLineTooFewFields(t *testing.T) {
	report := ParseLine(1, "Client A, 2024-07-01")

	assert.False(t, report.IsValid)
	assert.Contains(t, report.Errors,
		"Minimum 3 fields required: Customer Name, Invoice Date, Amount Due")
}

func TestParseLineMinimalRecord(t *testing.T) {
	report := ParseLine(1, "Client B, 2024-01-15, 200")

	require.True(t, report.IsValid, "errors: %v", report.Errors)
	assert.Equal(t, "Client B", report.Record.CustomerName)
	assert.Empty(t, report.Record.ReferenceNumber)
}

func TestParseLineBadDateAndAmount(t *testing.T) {
	report := ParseLine(3, "Client C, someday, lots")

	assert.False(t, report.IsValid)
	assert.Len(t, report.Errors, 2)
	assert.Contains(t, report.Errors[0], "Invalid Invoice Date")
	assert.Contains(t, report.Errors[1], "Invalid Amount Due")
}

func TestParseLineMissingCustomer(t *testing.T) {
	report := ParseLine(1, " , 2024-07-01, 10.00")

	assert.False(t, report.IsValid)
	assert.Contains(t, report.Errors, "Customer Name is required")
}

func TestParseLinesSkipsBlankAndKeepsLineNumbers(t *testing.T) {
	text := "Client A, 2024-07-01, 1500.00\n\nClient B, 2024-07-02, 10\r\n"
	reports := ParseLines(text)

	require.Len(t, reports, 2)
	assert.Equal(t, 1, reports[0].Line)
	assert.Equal(t, 3, reports[1].Line)
	assert.True(t, reports[0].IsValid)
	assert.True(t, reports[1].IsValid)
}

func TestParseLineSlashDate(t *testing.T) {
	report := ParseLine(1, "Client D, 07/01/2024, 99.95")
	require.True(t, report.IsValid, "errors: %v", report.Errors)
	assert.Equal(t, time.July, report.Record.InvoiceDate.Month())
}
