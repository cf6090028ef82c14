package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"pulsegrid/domain/core"
	"pulsegrid/domain/series"
)

// DataReader loads indicator workbooks in long format: one row per
// observation with columns country, indicator, year, value. An empty value
// cell becomes a missing point. Handles both Excel and CSV files.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader for the given workbook path.
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadBundle reads the workbook into a country→indicator→series bundle.
// Series come out ordered by year.
func (r *DataReader) ReadBundle() (map[core.CountryCode]map[core.IndicatorKey]series.TimeSeries, error) {
	log.Printf("[DataReader] Reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook must have a header row and at least one data row")
	}

	return r.processRows(rows)
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	// Always use Sheet1
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

// processRows maps the long-format rows onto series. Column positions come
// from the header row, so extra columns are tolerated.
func (r *DataReader) processRows(rows [][]string) (map[core.CountryCode]map[core.IndicatorKey]series.TimeSeries, error) {
	cols, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	bundle := make(map[core.CountryCode]map[core.IndicatorKey]series.TimeSeries)
	skipped := 0
	for i, row := range rows[1:] {
		point, country, indicator, ok := parseRow(row, cols)
		if !ok {
			skipped++
			if skipped <= 5 {
				log.Printf("[DataReader] Skipping malformed row %d: %v", i+2, row)
			}
			continue
		}

		if bundle[country] == nil {
			bundle[country] = make(map[core.IndicatorKey]series.TimeSeries)
		}
		bundle[country][indicator] = append(bundle[country][indicator], point)
	}

	count := 0
	for country, indicators := range bundle {
		for key, ts := range indicators {
			bundle[country][key] = ts.Sorted()
			count++
		}
	}
	log.Printf("[DataReader] Loaded %d series across %d countries (%d rows skipped)", count, len(bundle), skipped)
	return bundle, nil
}

type columnIndex struct {
	country   int
	indicator int
	year      int
	value     int
}

func headerIndex(header []string) (columnIndex, error) {
	cols := columnIndex{country: -1, indicator: -1, year: -1, value: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "country", "country_code":
			cols.country = i
		case "indicator", "indicator_code":
			cols.indicator = i
		case "year":
			cols.year = i
		case "value":
			cols.value = i
		}
	}
	if cols.country < 0 || cols.indicator < 0 || cols.year < 0 || cols.value < 0 {
		return cols, fmt.Errorf("header must contain country, indicator, year and value columns, got %v", header)
	}
	return cols, nil
}

func parseRow(row []string, cols columnIndex) (series.TimePoint, core.CountryCode, core.IndicatorKey, bool) {
	maxCol := cols.country
	for _, c := range []int{cols.indicator, cols.year, cols.value} {
		if c > maxCol {
			maxCol = c
		}
	}
	if len(row) <= maxCol {
		// The value column may simply be absent for a missing observation.
		if len(row) <= cols.year {
			return series.TimePoint{}, "", "", false
		}
	}

	country, err := core.ParseCountryCode(cell(row, cols.country))
	if err != nil {
		return series.TimePoint{}, "", "", false
	}
	indicator, err := core.ParseIndicatorKey(cell(row, cols.indicator))
	if err != nil {
		return series.TimePoint{}, "", "", false
	}
	year, err := strconv.Atoi(strings.TrimSpace(cell(row, cols.year)))
	if err != nil {
		return series.TimePoint{}, "", "", false
	}

	raw := strings.TrimSpace(cell(row, cols.value))
	value := math.NaN()
	if raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			value = v
		}
	}
	return series.TimePoint{Year: year, Value: value}, country, indicator, true
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
