// Package metadata reads the truck-details workbook the fleet team
// maintains alongside the raw exports. It is the source of the truck
// dimension's display names.
package metadata

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/qrafiq/truck-etl/internal/domain"
)

// ParseTruckWorkbook reads trucks from the first sheet of an xlsx workbook.
// The sheet must have a header row naming a truck_id and a truck_name column
// (extra columns are ignored). Blank rows are skipped.
func ParseTruckWorkbook(r io.Reader) ([]domain.Truck, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("metadata: open workbook: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("metadata: workbook has no sheets")
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("metadata: read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("metadata: sheet %q is empty", sheets[0])
	}

	idCol, nameCol := -1, -1
	for i, name := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "truck_id", "truck id", "id":
			idCol = i
		case "truck_name", "truck name", "name":
			nameCol = i
		}
	}
	if idCol < 0 || nameCol < 0 {
		return nil, fmt.Errorf("metadata: sheet %q is missing truck_id/truck_name columns", sheets[0])
	}

	var trucks []domain.Truck
	for rowNo, row := range rows[1:] {
		id := cell(row, idCol)
		name := cell(row, nameCol)
		if id == "" && name == "" {
			continue
		}

		truckID, err := strconv.Atoi(id)
		if err != nil {
			return nil, fmt.Errorf("metadata: row %d: truck_id %q is not an integer", rowNo+2, id)
		}
		if truckID < 1 {
			return nil, fmt.Errorf("metadata: row %d: truck_id %d out of range", rowNo+2, truckID)
		}
		if name == "" {
			return nil, fmt.Errorf("metadata: row %d: truck %d has no name", rowNo+2, truckID)
		}

		trucks = append(trucks, domain.Truck{ID: truckID, Name: name})
	}
	return trucks, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
