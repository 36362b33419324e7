package services

import (
	"bytes"
	"fmt"
	"time"

	"redapi/internal/domain/models"
	"redapi/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders the admin bookings report as a PDF.
type DocsService struct {
	Bookings  BookingStore
	RequestID string
	Loader    func(status string) ([]models.Booking, error)
}

// GenerateBookingsReport builds a PDF listing bookings, optionally filtered
// by status. Returns the document bytes and a suggested filename.
func (s DocsService) GenerateBookingsReport(status string) ([]byte, string, error) {
	bookings, err := s.loadBookings(status)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "bookings_report", fmt.Sprintf("status=%s count=%d", status, len(bookings)))
	return buildBookingsReportPDF(bookings, status)
}

func (s DocsService) loadBookings(status string) ([]models.Booking, error) {
	if s.Loader != nil {
		return s.Loader(status)
	}
	if parsed, ok := models.ParseBookingStatus(status); ok {
		return s.Bookings.ListByStatus(parsed)
	}
	return s.Bookings.List()
}

func buildBookingsReportPDF(bookings []models.Booking, status string) ([]byte, string, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("RED Bookings Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "RED Presentation Bookings")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 9)
	subtitle := fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02 15:04"))
	if status != "" {
		subtitle += fmt.Sprintf(" — status: %s", status)
	}
	pdf.Cell(0, 6, subtitle)
	pdf.Ln(10)

	headers := []string{"ID", "School", "Teacher", "Presentation", "Slot", "Status", "Created"}
	widths := []float64{12, 50, 40, 45, 80, 22, 28}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, b := range bookings {
		cells := []string{
			fmt.Sprintf("%d", b.ID),
			b.School,
			b.Name,
			b.PresentationType,
			b.SlotLabel,
			string(b.Status),
			b.CreatedAt.Format("2006-01-02"),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, truncateCell(c, widths[i]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("bookings-report-%s.pdf", time.Now().Format("20060102-150405"))
	return buf.Bytes(), filename, nil
}

// truncateCell keeps long free-text fields from overflowing their column.
func truncateCell(s string, width float64) string {
	max := int(width / 1.8)
	if max < 4 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
