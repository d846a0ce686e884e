package frame

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ErrEmpty is returned by ReadCSV when the input has no header row.
var ErrEmpty = errors.New("no columns to parse from file")

// ReadCSV parses a comma separated file with a header row.
// A row with more cells than the header is an error; shorter rows are padded.
func ReadCSV(r io.Reader) (*Frame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	header := records[0]
	rows := records[1:]
	for i, row := range rows {
		if len(row) > len(header) {
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", i+2, len(header), len(row))
		}
	}
	return FromStrings(header, rows), nil
}
