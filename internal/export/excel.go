package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"ivyresort/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Reservations"

var headers = []string{
	"ID", "Confirmation", "Guest", "Email", "Phone", "Room",
	"Check-in", "Check-out", "Guests", "Amount", "Currency",
	"Status", "Email sent", "Updated",
}

// BuildWorkbook renders the reservation list into an xlsx workbook.
func BuildWorkbook(reservations []*models.Reservation) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, res := range reservations {
		row := i + 2
		values := []interface{}{
			res.ID,
			res.ConfirmationID,
			res.GuestName,
			res.Email,
			res.Phone,
			res.RoomName,
			res.CheckIn,
			res.CheckOut,
			res.Guests,
			res.TotalAmount,
			res.Currency,
			res.Status,
			boolToYesNo(res.EmailSent),
			res.UpdatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "B", 22)
	_ = f.SetColWidth(sheetName, "C", "F", 20)
	_ = f.SetColWidth(sheetName, "G", "H", 12)
	_ = f.SetColWidth(sheetName, "I", "M", 10)
	_ = f.SetColWidth(sheetName, "N", "N", 18)

	_ = f.DeleteSheet("Sheet1")
	return f, nil
}

// WriteTo streams the workbook, usually into an HTTP response.
func WriteTo(w io.Writer, reservations []*models.Reservation) error {
	f, err := BuildWorkbook(reservations)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

// SaveToDir writes the workbook into the exports directory and returns the
// file path.
func SaveToDir(dir string, reservations []*models.Reservation) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	f, err := BuildWorkbook(reservations)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fileName := fmt.Sprintf("reservations_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(dir, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("save export: %w", err)
	}
	return filePath, nil
}

func boolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
