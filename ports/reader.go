package ports

import (
	"gospc/domain/ingestion"
)

// TableReader loads spreadsheet data into row-record tables
type TableReader interface {
	// ListSheets enumerates the worksheets of the source
	ListSheets() ([]ingestion.SheetInfo, error)

	// ReadTable reads one sheet, preserving row order exactly
	ReadTable(sheet string) (*ingestion.Table, error)
}
