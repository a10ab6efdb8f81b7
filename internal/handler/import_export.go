package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"reforco-escolar/internal/models"
	"reforco-escolar/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// exportLimit caps the rows of a single export.
const exportLimit = 10000

var paymentHeaders = []string{"Aluno", "Valor (R$)", "Vencimento", "Pago em", "Status", "Forma", "Descrição"}

func paymentRow(p *models.Payment) []string {
	student := ""
	if p.Student != nil {
		student = p.Student.Name
	}
	paidAt := ""
	if p.PaidAt != nil {
		paidAt = p.PaidAt.Format("2006-01-02")
	}
	return []string{
		student,
		formatCents(p.AmountCents),
		p.DueDate.Format("2006-01-02"),
		paidAt,
		p.Status,
		p.Method,
		p.Description,
	}
}

// loadExport fetches the caller's scoped payments, honoring list filters.
func (h *PaymentHandler) loadExport(c *gin.Context) ([]models.Payment, bool) {
	id, ok := currentIdentity(c)
	if !ok {
		return nil, false
	}
	base, ok := h.scopedQuery(c, id)
	if !ok {
		return nil, false
	}

	var payments []models.Payment
	if err := base.Preload("Student").
		Order("payments.due_date DESC").
		Limit(exportLimit).
		Find(&payments).Error; err != nil {
		fail(c, err)
		return nil, false
	}
	return payments, true
}

func exportName(ext string) string {
	return fmt.Sprintf("attachment; filename=\"pagamentos_%s.%s\"", time.Now().Format("20060102"), ext)
}

// Export writes the scoped payments as XLSX, or CSV with ?format=csv.
func (h *PaymentHandler) Export(c *gin.Context) {
	if c.Query("format") == "csv" {
		h.ExportCSV(c)
		return
	}
	h.ExportXLSX(c)
}

// ExportCSV writes the scoped payments as CSV.
func (h *PaymentHandler) ExportCSV(c *gin.Context) {
	payments, ok := h.loadExport(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", exportName("csv"))
	c.Status(http.StatusOK)

	// UTF-8 BOM so spreadsheet apps keep the accents
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	writer.Comma = ';'
	_ = writer.Write(paymentHeaders)
	for i := range payments {
		_ = writer.Write(paymentRow(&payments[i]))
	}
	writer.Flush()
}

// ExportXLSX writes the scoped payments as a spreadsheet.
func (h *PaymentHandler) ExportXLSX(c *gin.Context) {
	payments, ok := h.loadExport(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Pagamentos"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		fail(c, err)
		return
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, header := range paymentHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
	}
	for r := range payments {
		for col, v := range paymentRow(&payments[r]) {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 30)
	_ = f.SetColWidth(sheetName, "B", "E", 14)
	_ = f.SetColWidth(sheetName, "F", "F", 12)
	_ = f.SetColWidth(sheetName, "G", "G", 40)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", exportName("xlsx"))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, "export failed")
	}
}
