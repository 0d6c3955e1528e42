package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/thiagovferrari/crm2026/internal/domain"

	"github.com/xuri/excelize/v2"
)

// ContactExportHeader 联系人导出表头
var ContactExportHeader = []string{
	"Name",
	"Company",
	"Website",
	"Email",
	"Phone",
	"Status",
	"Commercial Area",
	"Created At",
}

// FinancialExportHeader 财务记录导出表头
var FinancialExportHeader = []string{
	"Contact",
	"Service",
	"Value Charged",
	"Value Paid",
	"Payment Date",
	"Status",
}

// ExportService 导出服务（联系人+财务记录生成 xlsx）
type ExportService struct {
	contacts *ContactService
}

func NewExportService(contacts *ContactService) *ExportService {
	return &ExportService{contacts: contacts}
}

// Export builds the workbook for the user's full collection.
func (s *ExportService) Export(ctx context.Context, userID string) ([]byte, error) {
	contacts, err := s.contacts.List(ctx, userID, "", domain.StatusAll)
	if err != nil {
		return nil, err
	}
	return GenerateWorkbook(contacts)
}

// GenerateWorkbook renders contacts and financials, one sheet each.
func GenerateWorkbook(contacts []domain.ContactWithDetails) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	contactsSheet := "Contacts"
	index, err := f.NewSheet(contactsSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	financialsSheet := "Financials"
	if _, err := f.NewSheet(financialsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	writeRow := func(sheet string, row int, values []any) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		return f.SetSheetRow(sheet, cell, &values)
	}

	headers := make([]any, len(ContactExportHeader))
	for i, h := range ContactExportHeader {
		headers[i] = h
	}
	if err := writeRow(contactsSheet, 1, headers); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(ContactExportHeader), 1)
	_ = f.SetCellStyle(contactsSheet, "A1", lastCol, headerStyle)

	for i, c := range contacts {
		row := []any{
			c.Name,
			c.Company,
			c.Website,
			c.Email,
			c.Phone,
			string(c.Status),
			c.CommercialArea,
			c.CreatedAt.Format("2006-01-02"),
		}
		if err := writeRow(contactsSheet, i+2, row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write contact row: %w", err)
		}
	}

	headers = make([]any, len(FinancialExportHeader))
	for i, h := range FinancialExportHeader {
		headers[i] = h
	}
	if err := writeRow(financialsSheet, 1, headers); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, _ = excelize.CoordinatesToCellName(len(FinancialExportHeader), 1)
	_ = f.SetCellStyle(financialsSheet, "A1", lastCol, headerStyle)

	rowNum := 2
	for _, c := range contacts {
		for _, rec := range c.Financials {
			row := []any{
				c.Name,
				rec.ServiceName,
				rec.ValueCharged,
				rec.ValuePaid,
				rec.PaymentDate.String(),
				string(rec.Status),
			}
			if err := writeRow(financialsSheet, rowNum, row); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write financial row: %w", err)
			}
			rowNum++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}
