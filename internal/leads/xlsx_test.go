package leads

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	require.NoError(t, err)

	for _, row := range rows {
		r := sheet.AddRow()
		for _, value := range row {
			r.AddCell().Value = value
		}
	}

	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	path := writeTestXLSX(t, [][]string{
		{"Company Name", "Website", "Full Name", "Title"},
		{"Lux Capital Management, LLC", "twitter.com/luxcapital", "JOSH WOLFE", "Managing Partner"},
		{"Stripe", "stripe.com", "Patrick Collison", "CEO"},
	})

	records, err := ReadXLSX(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "luxcapital.com", records[0].Domain)
	assert.Equal(t, "Josh Wolfe", records[0].FullName)
	assert.Equal(t, "stripe.com", records[1].Domain)
}

func TestReadXLSX_MissingFile(t *testing.T) {
	_, err := ReadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
}

func TestReadXLSX_NoRecognizedColumns(t *testing.T) {
	path := writeTestXLSX(t, [][]string{
		{"Phone", "Notes"},
		{"555-0100", "call later"},
	})

	_, err := ReadXLSX(path)
	require.Error(t, err)
}
