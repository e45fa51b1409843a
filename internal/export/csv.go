// Package export writes reconciliation results to local files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"tracksync/internal/domain"
	"tracksync/internal/errors"
)

// WriteTimeEntriesCSV writes the given Tracker time entries as CSV.
func WriteTimeEntriesCSV(w io.Writer, entries []domain.TrackerTimeEntry) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"ID", "Issue ID", "Project ID", "Spent On", "Hours", "Comments"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, entry := range entries {
		row := []string{
			strconv.Itoa(entry.ID),
			strconv.Itoa(entry.IssueID),
			strconv.Itoa(entry.ProjectID),
			entry.SpentOn.Format("2006-01-02"),
			fmt.Sprintf("%.2f", entry.Hours),
			entry.Comments,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteTimeEntriesFile writes the entries to the given path, creating or
// truncating the file.
func WriteTimeEntriesFile(path string, entries []domain.TrackerTimeEntry) error {
	if path == "" {
		return errors.NewValidationError("export path must not be empty", nil)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeValidation, "cannot open export file "+path)
	}
	defer file.Close()

	if err := WriteTimeEntriesCSV(file, entries); err != nil {
		return err
	}
	return file.Close()
}
