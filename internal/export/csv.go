package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes records to w as CSV rows. When header is true the first
// row carries the field names of the first record. Separator and quoting
// rules are encoding/csv's concern.
func WriteCSV(w io.Writer, records []Record, header bool) error {
	cw := csv.NewWriter(w)

	if header && len(records) > 0 {
		if err := cw.Write(records[0].Names()); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	for i, rec := range records {
		if err := cw.Write(rec.Values()); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
