package leads

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// columnAliases maps normalized header names to record fields. Lead lists
// arrive with either spreadsheet-style ("Company Name") or snake_case
// ("company_name") headers.
var columnAliases = map[string]string{
	"company":      "company",
	"company name": "company",
	"domain":       "domain",
	"website":      "domain",
	"email":        "email",
	"full name":    "full_name",
	"name":         "full_name",
	"first name":   "first_name",
	"last name":    "last_name",
	"title":        "title",
	"id":           "id",
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "_", " ")
	return h
}

// ReadCSV parses a lead CSV into normalized records. The first row must be
// a header; unrecognized columns are ignored.
func ReadCSV(r io.Reader) ([]model.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "leads: read csv header")
	}

	fields := make(map[int]string, len(header))
	for i, h := range header {
		if field, ok := columnAliases[normalizeHeader(h)]; ok {
			fields[i] = field
		}
	}
	if len(fields) == 0 {
		return nil, eris.New("leads: csv header has no recognized columns")
	}

	var records []model.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "leads: read csv row")
		}

		rec := rowToRecord(row, fields)
		if rec == (model.Record{}) {
			continue
		}
		Normalize(&rec)
		records = append(records, rec)
	}

	return records, nil
}

func rowToRecord(row []string, fields map[int]string) model.Record {
	var rec model.Record
	for i, field := range fields {
		if i >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[i])
		switch field {
		case "id":
			rec.ID = value
		case "company":
			rec.Company = value
		case "domain":
			rec.Domain = value
		case "email":
			rec.Email = value
		case "full_name":
			rec.FullName = value
		case "first_name":
			rec.FirstName = value
		case "last_name":
			rec.LastName = value
		case "title":
			rec.Title = value
		}
	}
	return rec
}
