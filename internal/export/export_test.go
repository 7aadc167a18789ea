package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"placement/api/internal/store"
)

type stubStore struct {
	companies []store.Company
	err       error
}

func (s stubStore) ListCompanies(context.Context) ([]store.Company, error) {
	return s.companies, s.err
}

func sampleCompanies() []store.Company {
	officer := "usr_officer"
	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	return []store.Company{
		{ID: "cmp_1", CompanyName: "TechCorp Inc.", IsContacted: true, Package: "12 LPA", AssignedOfficerID: &officer, AssignedOfficerName: "Mike Officer", CreatedAt: created},
		{ID: "cmp_2", CompanyName: "DataSoft Ltd.", Package: "8 LPA", CreatedAt: created},
	}
}

func TestCompaniesReport(t *testing.T) {
	svc := NewService(stubStore{companies: sampleCompanies()})
	svc.now = func() time.Time { return time.Date(2025, 3, 2, 23, 0, 0, 0, time.UTC) }

	result, err := svc.CompaniesReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "companies-report-2025-03-02.xlsx", result.Filename)
	assert.Equal(t, ContentTypeXLSX, result.ContentType)

	f, err := excelize.OpenReader(bytes.NewReader(result.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Company ID", rows[0][0])
	assert.Equal(t, "Created At", rows[0][13])

	assert.Equal(t, "TechCorp Inc.", rows[1][1])
	assert.Equal(t, "Yes", rows[1][6])
	assert.Equal(t, "Mike Officer", rows[1][12])
	assert.Equal(t, "2025-03-01 09:30:00", rows[1][13])
	assert.Equal(t, "No", rows[2][6])
	assert.Equal(t, "Unassigned", rows[2][12])

	styleID, err := f.GetCellStyle(SheetName, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestCompaniesReportPropagatesStoreErrors(t *testing.T) {
	svc := NewService(stubStore{err: errors.New("db down")})
	_, err := svc.CompaniesReport(context.Background())
	assert.Error(t, err)
}
