package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"driveshare/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

// Exporter writes owner booking reports as XLSX files.
type Exporter struct {
	path   string
	logger *zerolog.Logger
}

func NewExporter(path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{path: path, logger: logger}
}

// OwnerBookings writes the owner's bookings to an XLSX file and returns
// its path.
func (e *Exporter) OwnerBookings(owner string, bookings []models.Booking) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Bookings for %s", owner))
	_ = f.MergeCell(sheetName, "A1", "H1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headers := []string{"ID", "Vehicle", "License Plate", "Renter", "Booking Date", "Status", "Confirmation Code", "Created At"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, booking := range bookings {
		row := i + 3
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), booking.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), booking.VehicleName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), booking.LicensePlate)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), booking.Renter)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), booking.BookingDate)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), booking.Status)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), booking.ConfirmationCode)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), booking.CreatedAt.Format("02.01.2006 15:04"))

		if styleID, err := statusStyle(f, booking.Status); err == nil {
			cell := fmt.Sprintf("F%d", row)
			_ = f.SetCellStyle(sheetName, cell, cell, styleID)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 30)
	_ = f.SetColWidth(sheetName, "B", "B", 25)
	_ = f.SetColWidth(sheetName, "C", "E", 18)
	_ = f.SetColWidth(sheetName, "F", "H", 16)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Str("owner", owner).Msg("bookings export created")
	return filePath, nil
}

func statusStyle(f *excelize.File, status string) (int, error) {
	var color string
	switch status {
	case models.StatusApproved:
		color = "#C6EFCE"
	case models.StatusPending:
		color = "#FFEB9C"
	case models.StatusDeclined:
		color = "#FFC7CE"
	default:
		color = "#FFFFFF"
	}
	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
}
