package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

const (
	SheetSummary  = "Summary"
	SheetExpenses = "Expenses by Category"
	SheetPDC      = "Post-dated Cheques"
	SheetMonthly  = "Monthly Trend"
)

// FinanceWorkbook renders the finance dashboard as an xlsx file. Amounts are
// written in major units with two decimals.
func FinanceWorkbook(d *usecase.FinanceDashboard, f entity.DashboardFilter) ([]byte, error) {
	x := excelize.NewFile()
	defer x.Close()

	header, err := x.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	money, err := x.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}

	w := &sheetWriter{f: x, header: header, money: money}

	if err := x.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	w.summary(d.Summary, f)
	w.expenses(d.ExpensesByCategory)
	w.pdc(d.PDC)
	w.monthly(d.MonthlyTrend)
	if w.err != nil {
		return nil, w.err
	}

	var buf bytes.Buffer
	if err := x.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter remembers the first error so the row writers stay flat.
type sheetWriter struct {
	f      *excelize.File
	header int
	money  int
	err    error
}

func (w *sheetWriter) newSheet(name string, widths ...float64) {
	if w.err != nil {
		return
	}
	if name != SheetSummary {
		if _, err := w.f.NewSheet(name); err != nil {
			w.err = err
			return
		}
	}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := w.f.SetColWidth(name, col, col, width); err != nil {
			w.err = err
			return
		}
	}
}

func (w *sheetWriter) row(sheet string, row int, values ...any) {
	if w.err != nil {
		return
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		w.err = fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
}

func (w *sheetWriter) style(sheet, from, to string, style int) {
	if w.err != nil {
		return
	}
	if err := w.f.SetCellStyle(sheet, from, to, style); err != nil {
		w.err = err
	}
}

func (w *sheetWriter) summary(s *usecase.FinanceSummary, f entity.DashboardFilter) {
	w.newSheet(SheetSummary, 28, 18)
	if s == nil {
		s = &usecase.FinanceSummary{}
	}
	w.row(SheetSummary, 1, "Metric", "Value")
	w.style(SheetSummary, "A1", "B1", w.header)
	w.row(SheetSummary, 2, "Period", f.From.Format("2006-01-02")+" to "+f.To.Format("2006-01-02"))
	w.row(SheetSummary, 3, "Expected revenue", major(s.ExpectedRevenueCents))
	w.row(SheetSummary, 4, "Collected revenue", major(s.CollectedRevenueCents))
	w.row(SheetSummary, 5, "Collection rate (%)", s.CollectionRate)
	w.row(SheetSummary, 6, "Total expenses", major(s.TotalExpensesCents))
	w.row(SheetSummary, 7, "Net income", major(s.NetIncomeCents))
	w.row(SheetSummary, 8, "Revenue trend (%)", trendCell(s.RevenueTrend))
	w.row(SheetSummary, 9, "Expense trend (%)", trendCell(s.ExpenseTrend))
	w.row(SheetSummary, 10, "Net income trend (%)", trendCell(s.NetIncomeTrend))
	w.style(SheetSummary, "B3", "B4", w.money)
	w.style(SheetSummary, "B6", "B7", w.money)
}

func (w *sheetWriter) expenses(rows []usecase.CategoryAmount) {
	w.newSheet(SheetExpenses, 24, 10, 16, 14)
	w.row(SheetExpenses, 1, "Category", "Count", "Amount", "Share (%)")
	w.style(SheetExpenses, "A1", "D1", w.header)
	for i, r := range rows {
		w.row(SheetExpenses, i+2, r.Category, r.Count, major(r.AmountCents), r.Percentage)
	}
	if len(rows) > 0 {
		w.style(SheetExpenses, "C2", fmt.Sprintf("C%d", len(rows)+1), w.money)
	}
}

func (w *sheetWriter) pdc(p *usecase.PDCSummary) {
	w.newSheet(SheetPDC, 14, 10, 16)
	if p == nil {
		p = &usecase.PDCSummary{}
	}
	w.row(SheetPDC, 1, "Status", "Count", "Amount")
	w.style(SheetPDC, "A1", "C1", w.header)
	for i, r := range []struct {
		label string
		v     usecase.StatusAmount
	}{
		{"Pending", p.Pending},
		{"Cleared", p.Cleared},
		{"Bounced", p.Bounced},
		{"Total", p.Total},
	} {
		w.row(SheetPDC, i+2, r.label, r.v.Count, major(r.v.AmountCents))
	}
	w.style(SheetPDC, "C2", "C5", w.money)
}

func (w *sheetWriter) monthly(points []usecase.MonthlyPoint) {
	w.newSheet(SheetMonthly, 10, 16, 16, 16)
	w.row(SheetMonthly, 1, "Month", "Revenue", "Expenses", "Net")
	w.style(SheetMonthly, "A1", "D1", w.header)
	for i, p := range points {
		w.row(SheetMonthly, i+2, p.Month, major(p.RevenueCents), major(p.ExpenseCents), major(p.NetCents))
	}
	if len(points) > 0 {
		w.style(SheetMonthly, "B2", fmt.Sprintf("D%d", len(points)+1), w.money)
	}
}

func major(cents int64) float64 {
	return float64(cents) / 100
}

func trendCell(v *float64) any {
	if v == nil {
		return "n/a"
	}
	return *v
}
