package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/zoria/nautiljon-planner/internal/release"
)

// WriteJSON writes records as an indented JSON array. Nil optional fields are
// written as explicit nulls and non-ASCII text is kept as is.
func WriteJSON(w io.Writer, records []*release.Record) error {
	if records == nil {
		records = []*release.Record{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("encode json records: %w", err)
	}
	return nil
}

// ReadJSON decodes a document produced by WriteJSON.
func ReadJSON(r io.Reader) ([]*release.Record, error) {
	var records []*release.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode json records: %w", err)
	}
	if records == nil {
		records = []*release.Record{}
	}
	return records, nil
}
