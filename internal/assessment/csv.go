package assessment

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrMissingColumn = errors.New("missing column")

var idAliases = []string{"studentid", "student_id", "student id"}

// ParseCSV reads a header row followed by data rows. Short rows leave their
// trailing columns absent. Syntax errors abort the whole file.
func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	hdr, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file")
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, len(hdr))
	idCol := -1
	for i, h := range hdr {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		names[i] = h
		low := strings.ToLower(h)
		for _, a := range idAliases {
			if low == a && idCol < 0 {
				idCol = i
			}
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColStudentID)
	}
	names[idCol] = ColStudentID

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(Row, len(names))
		for i, v := range rec {
			if i >= len(names) || names[i] == "" {
				continue
			}
			row[names[i]] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
