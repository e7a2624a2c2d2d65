package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, SeverityAdvisory, Classify("Warning: another contact uses this email"))
	assert.Equal(t, SeverityBlocking, Classify("Name is required"))
	// Substring match anywhere in the message, matching the legacy rule.
	assert.Equal(t, SeverityAdvisory, Classify("duplicate email Warning"))
}

func TestBlockingFiltersAdvisory(t *testing.T) {
	errs := []FieldError{
		{Field: "email", Message: "Warning: another contact uses this email"},
	}
	assert.Empty(t, Blocking(errs), "a lone advisory error must not block a save")

	errs = append(errs, FieldError{Field: "name", Message: "Name is required"})
	blocking := Blocking(errs)
	assert.Len(t, blocking, 1)
	assert.Equal(t, "name", blocking[0].Field)
}

func TestBlockingHonorsExplicitSeverity(t *testing.T) {
	// Typed severity wins over message content.
	errs := []FieldError{
		{Field: "note", Message: "Warning in content", Severity: SeverityBlocking},
	}
	assert.Len(t, Blocking(errs), 1)
}

func TestRequired(t *testing.T) {
	assert.Nil(t, Required("name", "Name", "Ada"))
	err := Required("name", "Name", "   ")
	if assert.NotNil(t, err) {
		assert.Equal(t, "Name is required", err.Message)
		assert.Equal(t, SeverityBlocking, err.Severity)
	}
}

func TestUniqueExactIsCaseSensitive(t *testing.T) {
	existing := []string{"C-001", "C-002"}
	assert.NotNil(t, UniqueExact("contact_number", "Contact number", "C-001", existing))
	assert.Nil(t, UniqueExact("contact_number", "Contact number", "c-001", existing))
}

func TestDuplicateEmailWarningIgnoresCase(t *testing.T) {
	existing := []string{"Ada@Example.com"}
	err := DuplicateEmailWarning("email", "ada@example.com", existing)
	if assert.NotNil(t, err) {
		assert.Equal(t, SeverityAdvisory, err.Severity)
		assert.Contains(t, err.Message, "Warning")
	}
	assert.Nil(t, DuplicateEmailWarning("email", "grace@example.com", existing))
	assert.Nil(t, DuplicateEmailWarning("email", "  ", existing))
}

func TestAppendSkipsNil(t *testing.T) {
	var errs []FieldError
	errs = Append(errs, nil)
	assert.Empty(t, errs)

	errs = Append(errs, Required("name", "Name", ""))
	errs = Append(errs, Required("name", "Name", "Ada"))
	assert.Len(t, errs, 1)
}

func TestDecimalAmount(t *testing.T) {
	assert.Nil(t, DecimalAmount("amount_due", "Amount due", "1200.50"))
	assert.Nil(t, DecimalAmount("amount_due", "Amount due", "0"))
	assert.NotNil(t, DecimalAmount("amount_due", "Amount due", "$1200"))
	assert.NotNil(t, DecimalAmount("amount_due", "Amount due", "1.200,50"))
	assert.NotNil(t, DecimalAmount("amount_due", "Amount due", "1.2.3"))
	assert.NotNil(t, DecimalAmount("amount_due", "Amount due", ""))
}
