package leads

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/outreach-cli/internal/model"
)

// ReadXLSX parses the first sheet of a lead spreadsheet into normalized
// records, using the same header mapping as the CSV path.
func ReadXLSX(path string) ([]model.Record, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "leads: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("leads: xlsx file has no sheets")
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.New("leads: xlsx sheet is empty")
	}

	fields := make(map[int]string)
	for i, cell := range sheet.Rows[0].Cells {
		if field, ok := columnAliases[normalizeHeader(cell.String())]; ok {
			fields[i] = field
		}
	}
	if len(fields) == 0 {
		return nil, eris.New("leads: xlsx header has no recognized columns")
	}

	var records []model.Record
	for _, row := range sheet.Rows[1:] {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}

		rec := rowToRecord(cells, fields)
		if rec == (model.Record{}) {
			continue
		}
		Normalize(&rec)
		records = append(records, rec)
	}

	return records, nil
}
