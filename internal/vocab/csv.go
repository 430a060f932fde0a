package vocab

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// csvColumns is the column order of a word list file. The two cloze
// columns are optional.
var csvColumns = []string{"de", "en", "grade", "unit", "station", "cloze_de", "cloze_en"}

// RowError reports a rejected line of a word list.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ReadCSV parses a word list. A first row naming the columns is skipped.
// Rows that fail validation are reported in the returned error (joined
// *RowError values) while the valid rows are still returned.
func ReadCSV(r io.Reader) ([]WordEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		entries []WordEntry
		errs    []error
		line    int
	)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return entries, fmt.Errorf("read csv: %w", err)
		}
		if line == 1 && isHeader(record) {
			continue
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		entry, err := parseRecord(record)
		if err != nil {
			errs = append(errs, &RowError{Line: line, Err: err})
			continue
		}
		entries = append(entries, entry)
	}
	return entries, errors.Join(errs...)
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), csvColumns[0])
}

func parseRecord(record []string) (WordEntry, error) {
	if len(record) < 5 {
		return WordEntry{}, fmt.Errorf("want at least 5 columns (%s), got %d",
			strings.Join(csvColumns[:5], ","), len(record))
	}
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	var nums [3]int
	for i := range nums {
		n, err := strconv.Atoi(field(2 + i))
		if err != nil {
			return WordEntry{}, fmt.Errorf("column %s: %w", csvColumns[2+i], err)
		}
		nums[i] = n
	}

	entry := WordEntry{
		Source:      field(0),
		Target:      field(1),
		Course:      Course{Grade: nums[0], Unit: nums[1], Station: nums[2]},
		ClozeSource: field(5),
		ClozeTarget: field(6),
	}
	if err := Validate(entry); err != nil {
		return WordEntry{}, err
	}
	return entry, nil
}

// Validate checks the struct rules of a word entry.
func Validate(entry WordEntry) error {
	if err := validate.Struct(entry); err != nil {
		return fmt.Errorf("invalid word %q: %w", entry.Source, err)
	}
	if !entry.Usable() {
		return fmt.Errorf("invalid word %q: blank term", entry.Source)
	}
	return nil
}
