package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"invoicedesk/pkg/models"
)

func withNumbers(numbers ...string) []models.Invoice {
	out := make([]models.Invoice, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, models.Invoice{InvoiceNumber: n})
	}
	return out
}

func TestNextNumber(t *testing.T) {
	tests := []struct {
		name     string
		existing []models.Invoice
		want     string
	}{
		{"empty collection", nil, "00001"},
		{"gap is not filled", withNumbers("00001", "00003"), "00004"},
		{"order does not matter", withNumbers("00007", "00002"), "00008"},
		{"unparsable numbers count as zero", withNumbers("draft", ""), "00001"},
		{"trailing text is ignored", withNumbers("00012-A"), "00013"},
		{"wider than padding", withNumbers("99999"), "100000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextNumber(tt.existing))
		})
	}
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 42, ParseNumber("00042"))
	assert.Equal(t, 0, ParseNumber("00000"))
	assert.Equal(t, 0, ParseNumber("INV-1"))
	assert.Equal(t, 7, ParseNumber(" 7 "))
	assert.Equal(t, 0, ParseNumber("-5"))
	assert.Equal(t, 0, ParseNumber("99999999999999999999999"))
}
