// Package export renders the companies report as an Excel workbook.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"placement/api/internal/store"
)

// DataStore defines the interface for data access
type DataStore interface {
	ListCompanies(ctx context.Context) ([]store.Company, error)
}

// Service provides report export functionality
type Service struct {
	store DataStore
	now   func() time.Time
}

// NewService creates a new export service
func NewService(store DataStore) *Service {
	return &Service{store: store, now: time.Now}
}

// CompaniesReport renders every company, newest first.
func (s *Service) CompaniesReport(ctx context.Context) (*Result, error) {
	companies, err := s.store.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteCompanies(&buf, companies); err != nil {
		return nil, err
	}
	return &Result{
		Filename:    fmt.Sprintf("companies-report-%s.xlsx", s.now().UTC().Format("2006-01-02")),
		ContentType: ContentTypeXLSX,
		Data:        buf.Bytes(),
	}, nil
}

// WriteCompanies writes a workbook with one header row and one row per
// company.
func WriteCompanies(w io.Writer, companies []store.Company) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, 0, len(columns))
	for i, col := range columns {
		header = append(header, col.Header)
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, name, name, col.Width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E0E0E0"}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, item := range companies {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := companyRow(item)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func companyRow(item store.Company) []any {
	contacted := "No"
	if item.IsContacted {
		contacted = "Yes"
	}
	officer := item.AssignedOfficerName
	if officer == "" {
		officer = "Unassigned"
	}
	return []any{
		item.ID,
		item.CompanyName,
		item.CompanyAddress,
		item.Drive,
		item.TypeOfDrive,
		item.FollowUp,
		contacted,
		item.Remarks,
		item.ContactDetails,
		item.HR1Details,
		item.HR2Details,
		item.Package,
		officer,
		item.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}
