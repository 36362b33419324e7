package services

import (
	"bytes"
	"testing"
	"time"

	"redapi/internal/domain/models"
)

func TestGenerateBookingsReport(t *testing.T) {
	loader := func(status string) ([]models.Booking, error) {
		return []models.Booking{
			{
				ID:               1,
				Name:             "Jordan Lee",
				School:           "Maple Ridge Elementary",
				PresentationType: "Grade 5 program",
				SlotLabel:        "Monday, November 10 at 1:00 PM",
				Status:           models.BookingConfirmed,
				CreatedAt:        time.Now(),
			},
			{
				ID:               2,
				Name:             "Sam Patel",
				School:           "A school with a rather long name that will not fit in its column",
				PresentationType: "Assembly",
				SlotLabel:        "Tuesday, November 11 at 1:00 PM",
				Status:           models.BookingPending,
				CreatedAt:        time.Now(),
			},
		}, nil
	}

	svc := DocsService{Loader: loader}
	pdf, filename, err := svc.GenerateBookingsReport("")
	if err != nil {
		t.Fatalf("GenerateBookingsReport: %v", err)
	}
	if len(pdf) == 0 || filename == "" {
		t.Fatal("empty report")
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatal("output is not a PDF document")
	}
}
