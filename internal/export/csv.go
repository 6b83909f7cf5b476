package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/zoria/nautiljon-planner/internal/release"
)

// WriteCSV writes a header row followed by one row per record.
// Nil optional fields become empty cells.
func WriteCSV(w io.Writer, records []*release.Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(release.Fields); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		if err := writer.Write(rec.Values()); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}
