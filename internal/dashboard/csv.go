package dashboard

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pavelanni/mockinterview/internal/model"
	"github.com/pavelanni/mockinterview/internal/scoring"
)

// DateLayout formats completion dates in lists and exports.
const DateLayout = "Jan 2, 2006, 03:04 PM"

// CSVHeader is the first row of the export.
var CSVHeader = []string{"Name", "Email", "Phone", "Score", "Date", "Status"}

// FormatDate renders t with DateLayout in the process time zone.
func FormatDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// WriteCSV writes one row per candidate. The status column is the score
// category.
func WriteCSV(w io.Writer, list []model.CompletedCandidate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, c := range list {
		row := []string{
			c.Name,
			c.Email,
			c.Phone,
			strconv.Itoa(c.Interview.FinalScore),
			FormatDate(c.CompletedAt),
			scoring.Category(c.Interview.FinalScore),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", c.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename names the CSV download for the given day.
func ExportFilename(now time.Time) string {
	return "interview-results-" + now.Format(time.DateOnly) + ".csv"
}
