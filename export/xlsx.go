// Package export renders registrations as a spreadsheet for the organisers.
package export

import (
	"fmt"
	"io"
	"time"

	"meal-coupon/registration"

	"github.com/xuri/excelize/v2"
)

const (
	RegistrationsSheet = "Registrations"
	SummarySheet       = "Summary"
)

// WriteWorkbook writes one row per registration followed by a summary sheet.
func WriteWorkbook(w io.Writer, regs []registration.Registration, menu registration.Menu) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RegistrationsSheet); err != nil {
		return err
	}

	cats := menu.Categories()
	header := []interface{}{"Created At", "Team", "Contact", "Phone", "Email", "College"}
	for _, c := range cats {
		header = append(header, string(c))
	}
	header = append(header, "Total Price", "Payment Reference", "Payment Status", "Payment Proof", "Code", "Verified", "Verified At")

	if err := setRow(f, RegistrationsSheet, 1, header); err != nil {
		return err
	}
	if err := f.SetPanes(RegistrationsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	for i, r := range regs {
		row := []interface{}{r.CreatedAt.Format(time.RFC3339), r.TeamName, r.ContactName, r.Phone, r.Email, r.College}
		for _, c := range cats {
			row = append(row, r.MealCounts[c])
		}
		verifiedAt := ""
		if r.VerifiedAt != nil {
			verifiedAt = r.VerifiedAt.Format(time.RFC3339)
		}
		row = append(row, r.TotalPrice, r.PaymentReference, string(r.PaymentStatus), r.PaymentProofRef,
			r.VerificationCode, r.IsVerified, verifiedAt)
		if err := setRow(f, RegistrationsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := writeSummary(f, registration.Tally(regs, menu), cats); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, c registration.Counts, cats []registration.Category) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Registrations", c.Total},
		{"Verified", c.Verified},
		{"Pending", c.Pending},
	}
	for _, cat := range cats {
		rows = append(rows, []interface{}{"Meals: " + string(cat), c.MealTotals[cat]})
	}
	for _, s := range []registration.PaymentStatus{registration.PaymentPending, registration.PaymentConfirmed, registration.PaymentRejected} {
		rows = append(rows, []interface{}{"Payments " + string(s), c.PaymentStatus[s]})
	}
	rows = append(rows, []interface{}{"Revenue", c.Revenue})

	for i, row := range rows {
		if err := setRow(f, SummarySheet, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
