package reportservice_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"stockdesk/internal/service/reportservice"
)

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "0.00 Bath", reportservice.FormatCurrency(decimal.Zero))
	assert.Equal(t, "12.50 Bath", reportservice.FormatCurrency(decimal.RequireFromString("12.5")))
	assert.Equal(t, "3.33 Bath", reportservice.FormatCurrency(decimal.NewFromInt(10).Div(decimal.NewFromInt(3))))
}

func TestFormatCompanyName(t *testing.T) {
	tests := map[string]string{
		"บริษัท FMC สาขาใหญ่": "Company FMC Main Branch",
		"บริษัท FMC สาขา 1":   "Company FMC Branch 1",
		"บริษัท FMC สาขา 4":   "Company FMC Branch 4",
		"Warehouse A":         "Warehouse A",
	}
	for in, want := range tests {
		assert.Equal(t, want, reportservice.FormatCompanyName(in), in)
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "May 1, 2024", reportservice.FormatDate(time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "December 31, 2023", reportservice.FormatDate(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestTransliterate(t *testing.T) {
	tests := []struct{ in, want string }{
		{"สมชาย", "smchay"},
		{"ก้อง", "kang"},
		{"ไม้", "aim"},
		{"John ดี", "John di"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reportservice.Transliterate(tt.in), tt.in)
	}
}
