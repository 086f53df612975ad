// Package export renders the visit log as downloadable files.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/stanstork/visitor-kiosk-api/internal/models"
)

// Columns is the header row shared by every export format.
var Columns = []string{
	"visit_id",
	"visitor_name",
	"company",
	"phone",
	"host_name",
	"host_email",
	"purpose",
	"check_in_at",
	"check_out_at",
	"qr_token",
}

const sheetName = "Visits"

func row(rec models.VisitRecord) []string {
	return []string{
		strconv.FormatInt(rec.VisitID, 10),
		rec.VisitorName,
		deref(rec.Company),
		deref(rec.Phone),
		rec.HostName,
		rec.HostEmail,
		rec.Purpose,
		formatTime(&rec.CheckInAt),
		formatTime(rec.CheckOutAt),
		rec.QRToken,
	}
}

// WriteCSV writes a header row followed by one row per record. Fields that
// contain a comma, quote or newline are quoted with embedded quotes doubled.
func WriteCSV(w io.Writer, records []models.VisitRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(row(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same table as WriteCSV into a single-sheet workbook.
func WriteXLSX(w io.Writer, records []models.VisitRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	for i, rec := range records {
		cells := row(rec)
		values := make([]interface{}, len(cells))
		for j, c := range cells {
			values[j] = c
		}
		values[0] = rec.VisitID

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
