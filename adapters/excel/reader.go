package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gospc/domain/core"
	"gospc/domain/ingestion"
)

// DataReader reads Excel and CSV measurement files into row-record tables
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ListSheets returns the worksheets of an Excel workbook. CSV files report a
// single pseudo-sheet named after the file.
func (r *DataReader) ListSheets() ([]ingestion.SheetInfo, error) {
	if r.fileType == "csv" {
		return []ingestion.SheetInfo{{Name: filepath.Base(r.filePath), Index: 0}}, nil
	}

	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	var sheets []ingestion.SheetInfo
	for i, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		sheets = append(sheets, ingestion.SheetInfo{Name: name, Index: i, RowCount: len(rows)})
	}
	return sheets, nil
}

// ReadTable reads the named sheet into a Table. An empty sheet name selects
// the workbook's first sheet. Row order is preserved exactly as stored.
func (r *DataReader) ReadTable(sheet string) (*ingestion.Table, error) {
	log.Printf("[DataReader] Reading %s file: %s (sheet=%q)", r.fileType, r.filePath, sheet)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readExcel(sheet)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

func (r *DataReader) readExcel(sheet string) (*ingestion.Table, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	log.Printf("[DataReader] Sheet %q read in %.2fms (%d rows)",
		sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q must have a header row and at least one data row", sheet)
	}

	return r.buildTable(sheet, rows)
}

func (r *DataReader) readCSV() (*ingestion.Table, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Sparse rows are allowed

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file: %w", err)
		}
		rows = append(rows, record)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have a header row and at least one data row")
	}

	return r.buildTable(filepath.Base(r.filePath), rows)
}

// buildTable converts raw string rows into a fingerprinted Table
func (r *DataReader) buildTable(sheet string, rows [][]string) (*ingestion.Table, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]ingestion.RowRecord, 0, len(rows)-1)
	rawRows := make([]map[string]string, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		rowData := make(ingestion.RowRecord)
		for j, cell := range rows[i] {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
		rawRows = append(rawRows, map[string]string(rowData))
	}

	log.Printf("[DataReader] %s processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &ingestion.Table{
		ID:          core.DatasetID(core.NewID()),
		Source:      r.filePath,
		Sheet:       sheet,
		Headers:     headers,
		Rows:        dataRows,
		Fingerprint: core.NewDatasetHash(headers, rawRows),
	}, nil
}
