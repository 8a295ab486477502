package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"travelagency/internal/domain/models"
	"travelagency/internal/utils"
)

// DocsService renders customer documents as PDF.
type DocsService struct {
	I18n      Translator
	Locale    string
	RequestID string
}

// BookingInvoice returns the invoice PDF and its download filename.
func (s DocsService) BookingInvoice(b models.Booking) ([]byte, string, error) {
	utils.LogEvent(s.RequestID, "docs", "invoice", "booking="+b.Reference)

	label := func(key string) string {
		return translate(s.I18n, s.Locale, "invoice."+key)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	enc := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(enc(label("title")+" "+b.Reference), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, enc(strings.ToUpper(label("title"))))
	pdf.Ln(14)

	unit := b.TotalCents
	if b.Travelers > 0 {
		unit = b.TotalCents / int64(b.Travelers)
	}
	customer := "-"
	if b.Customer != nil {
		customer = safe(b.Customer.FullName, "-") + " <" + safe(b.Customer.Email, "-") + ">"
	}

	rows := [][2]string{
		{label("reference"), b.Reference},
		{label("issued"), utils.FormatDate(utils.NowUTC())},
		{label("tour"), safe(b.TourTitle, "-")},
		{label("travel_date"), utils.FormatDate(b.TravelDate)},
		{label("travelers"), fmt.Sprintf("%d", b.Travelers)},
		{label("unit_price"), utils.FormatMoney(unit, b.Currency)},
		{label("total"), utils.FormatMoney(b.TotalCents, b.Currency)},
		{label("payment_status"), strings.ToUpper(b.PaymentStatus)},
	}

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, enc(customer))
	pdf.Ln(10)
	for _, r := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(55, 8, enc(r[0]), "B", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, enc(r[1]), "B", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("invoice-%s.pdf", utils.SafeFilenamePart(b.Reference))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return strings.TrimSpace(v)
}
