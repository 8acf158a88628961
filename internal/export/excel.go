// Package export renders booking reports as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"shareit/internal/service"
)

const sheetName = "Bookings"

const timeLayout = "02.01.2006 15:04"

// WriteOwnerBookings writes an xlsx report of the given bookings to w, one
// row per booking, newest start first (the order the slice arrives in).
func WriteOwnerBookings(w io.Writer, bookings []*service.BookingDetail) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"ID", "Item", "Booker", "Start", "End", "Status"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, b := range bookings {
		row := i + 2
		itemName := ""
		if b.Item != nil {
			itemName = b.Item.Name
		}
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), b.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), itemName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), b.Booker.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), b.Start.Format(timeLayout))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), b.End.Format(timeLayout))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), b.Status)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "B", 30)
	_ = f.SetColWidth(sheetName, "C", "C", 10)
	_ = f.SetColWidth(sheetName, "D", "E", 18)
	_ = f.SetColWidth(sheetName, "F", "F", 12)

	_ = f.DeleteSheet("Sheet1")

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %v", err)
	}
	return nil
}
