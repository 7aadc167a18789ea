package export

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName       = "Companies Report"
)

// Result holds a rendered report
type Result struct {
	Filename    string
	ContentType string
	Data        []byte
}

type column struct {
	Header string
	Width  float64
}

var columns = []column{
	{Header: "Company ID", Width: 10},
	{Header: "Company Name", Width: 30},
	{Header: "Address", Width: 40},
	{Header: "Drive", Width: 25},
	{Header: "Type of Drive", Width: 15},
	{Header: "Follow Up", Width: 15},
	{Header: "Is Contacted", Width: 12},
	{Header: "Remarks", Width: 30},
	{Header: "Contact Details", Width: 30},
	{Header: "HR1 Details", Width: 25},
	{Header: "HR2 Details", Width: 25},
	{Header: "Package", Width: 15},
	{Header: "Assigned Officer", Width: 20},
	{Header: "Created At", Width: 20},
}
