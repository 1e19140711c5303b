package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/ruslano69/launchdash/pkg/launch"
	"github.com/xuri/excelize/v2"
)

// ReadSheet - read a worksheet into a header row and data rows
//
// The first row is the header. Headers written in the "field_name (TYPE)" or
// "field_name (TYPE) *" form are reduced to field_name so that workbooks
// exported by tdtpcli load without remapping. Short rows are padded with "".
// An empty sheetName selects the first sheet.
//
// Example:
//
//	header, rows, err := xlsx.ReadSheet(f, "launches")
func ReadSheet(r io.Reader, sheetName string) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheetName)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = parseHeader(h)
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		values := make([]string, len(header))
		copy(values, row)
		data = append(data, values)
	}

	return header, data, nil
}

// WriteRecords - write launch records as a formatted workbook
//
// Columns are named after the given header (site, class, payload mass,
// booster version category, in that order). Numbers are written as numbers so
// the sheet can be charted in Excel directly.
func WriteRecords(w io.Writer, sheetName string, header [4]string, records []launch.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheetName == "" {
		sheetName = "launches"
	}
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to drop default sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, name := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for i, rec := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{rec.Site, int(rec.Class), rec.PayloadMass, rec.BoosterVersion}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "D", 22); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// parseHeader - strip the "(TYPE)" and key marker decorations from a header cell
func parseHeader(header string) string {
	name := strings.TrimSpace(header)
	name = strings.TrimSuffix(name, " *")

	if idx := strings.LastIndex(name, "("); idx > 0 {
		if endIdx := strings.LastIndex(name, ")"); endIdx == len(name)-1 && isTypeName(name[idx+1:endIdx]) {
			name = strings.TrimSpace(name[:idx])
		}
	}
	return name
}

// isTypeName reports whether s looks like a TDTP type tag (upper-case letters only).
// "Payload Mass (kg)" must keep its unit suffix.
func isTypeName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
