package leads

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// exportHeader lists the enriched CSV columns: the lead fields first, then
// the resolution columns appended.
var exportHeader = []string{
	"Company Name", "Domain", "Full Name", "First Name", "Last Name", "Title",
	"Email", "Source", "Outcome", "Verified",
}

// WriteEnrichedCSV writes records with their resolution results appended.
// records and results must be parallel slices in input order.
func WriteEnrichedCSV(w io.Writer, records []model.Record, results []model.Result) error {
	if len(records) != len(results) {
		return eris.Errorf("leads: record/result length mismatch (%d vs %d)", len(records), len(results))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return eris.Wrap(err, "leads: write csv header")
	}

	for i, rec := range records {
		res := results[i]

		email := rec.Email
		firstName := rec.FirstName
		lastName := rec.LastName
		title := rec.Title
		if res.Email != "" {
			email = res.Email
		}
		if res.FirstName != "" {
			firstName = res.FirstName
		}
		if res.LastName != "" {
			lastName = res.LastName
		}
		if res.Title != "" {
			title = res.Title
		}

		row := []string{
			rec.Company, rec.Domain, rec.FullName, firstName, lastName, title,
			email, res.Source, string(res.Outcome), strconv.FormatBool(res.Verified),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "leads: write csv row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "leads: flush csv")
}
