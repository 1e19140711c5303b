package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ruslano69/launchdash/pkg/launch"
)

// Decode maps raw rows onto launch records using the column mapping.
// Columns are matched by exact name first, then case-insensitively.
// Extra columns are ignored. Row numbers in errors are 1-based data rows.
func Decode(header []string, rows [][]string, cols Columns) ([]launch.Record, error) {
	cols = cols.withDefaults()

	idx := make([]int, 4)
	for i, name := range cols.Header() {
		j := columnIndex(header, name)
		if j < 0 {
			return nil, fmt.Errorf("%w: %q (have %s)", ErrMissingColumn, name, strings.Join(header, ", "))
		}
		idx[i] = j
	}

	records := make([]launch.Record, 0, len(rows))
	for n, row := range rows {
		rec, err := decodeRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeRow(row []string, idx []int) (launch.Record, error) {
	get := func(i int) string {
		if idx[i] >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx[i]])
	}

	class, err := parseClass(get(1))
	if err != nil {
		return launch.Record{}, err
	}
	payload, err := parsePayload(get(2))
	if err != nil {
		return launch.Record{}, err
	}

	return launch.Record{
		Site:           get(0),
		Class:          class,
		PayloadMass:    payload,
		BoosterVersion: get(3),
	}, nil
}

// parseClass accepts 0/1 in integer or float spelling ("1", "1.0"), as well
// as boolean spellings produced by SQL drivers.
func parseClass(s string) (launch.Outcome, error) {
	switch strings.ToLower(s) {
	case "1", "true", "t":
		return launch.Success, nil
	case "0", "false", "f":
		return launch.Failure, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("class %q is not a number", s)
	}
	switch f {
	case 0:
		return launch.Failure, nil
	case 1:
		return launch.Success, nil
	}
	return 0, fmt.Errorf("class %q is not 0 or 1", s)
}

func parsePayload(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("payload mass is empty")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("payload mass %q is not a number", s)
	}
	return f, nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}
