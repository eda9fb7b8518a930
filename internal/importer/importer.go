// Package importer reads tool lists from CSV and Excel files. It supports
// automatic delimiter detection, flexible column mapping, case-insensitive
// header recognition, and fractional-inch diameters.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pwnage101/speeds-and-feeds/internal/model"
	"github.com/pwnage101/speeds-and-feeds/internal/units"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Tools    []model.Tool
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Label    int
	Diameter int
	Teeth    int
	Material int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"label":    {"label", "name", "tool", "tool name", "description", "desc"},
	"diameter": {"diameter", "dia", "diam", "size", "diameter (in)", "diameter_in", "d"},
	"teeth":    {"teeth", "flutes", "flute count", "fl", "fl.", "z"},
	"material": {"material", "mat", "tool material", "type"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1 // Allow variable field counts

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		// Score: count how many rows have the same column count as the first row
		// Only consider delimiters that produce more than 1 column
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column role.
// Returns the mapping and true if a header was detected, or a default positional
// mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Label:    -1,
		Diameter: -1,
		Teeth:    -1,
		Material: -1,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					switch role {
					case "label":
						if mapping.Label == -1 {
							mapping.Label = i
						}
					case "diameter":
						if mapping.Diameter == -1 {
							mapping.Diameter = i
						}
					case "teeth":
						if mapping.Teeth == -1 {
							mapping.Teeth = i
						}
					case "material":
						if mapping.Material == -1 {
							mapping.Material = i
						}
					}
				}
			}
		}
	}

	if !isHeader {
		// Fall back to positional mapping: Label, Diameter, Teeth, Material
		return ColumnMapping{
			Label:    0,
			Diameter: 1,
			Teeth:    2,
			Material: 3,
		}, false
	}

	return mapping, true
}

// ParseDiameter converts a diameter cell to inches. It accepts decimals
// ("0.375"), plain fractions ("3/4"), mixed numbers ("1 1/2"), and a
// trailing inch mark on any of them.
func ParseDiameter(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), `"`))
	if s == "" {
		return 0, fmt.Errorf("empty diameter")
	}

	whole := 0.0
	frac := s
	if parts := strings.Fields(s); len(parts) == 2 {
		w, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid diameter %q", s)
		}
		whole = w
		frac = parts[1]
	}

	if num, den, ok := strings.Cut(frac, "/"); ok {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN != nil || errD != nil || d == 0 {
			return 0, fmt.Errorf("invalid diameter %q", s)
		}
		return whole + n/d, nil
	}

	v, err := strconv.ParseFloat(frac, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid diameter %q", s)
	}
	return whole + v, nil
}

// parseToolMaterial converts a material cell to a model.ToolMaterial.
// It returns the material and a boolean indicating whether the string was
// recognized; unrecognized spellings come back as a custom class that runs
// at the baseline surface speed factor.
func parseToolMaterial(s string) (model.ToolMaterial, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("/", " ", "-", " ", "_", " ").Replace(normalized)
	normalized = strings.Join(strings.Fields(normalized), " ")

	switch normalized {
	case "", "hss", "high speed steel":
		return model.HSS, true
	case "hss cobalt", "hss co", "cobalt", "hsse":
		return model.HSSCobalt, true
	case "carbide", "solid carbide":
		return model.Carbide, true
	default:
		return model.ToolMaterial(strings.ReplaceAll(normalized, " ", "_")), false
	}
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseTool extracts a Tool from a row using the given column mapping.
// Returns the tool, any error message, and any warning message.
func parseTool(row []string, mapping ColumnMapping, rowLabel string) (model.Tool, string, string) {
	diaStr := getCell(row, mapping.Diameter)
	if diaStr == "" {
		return model.Tool{}, fmt.Sprintf("%s: Missing diameter value", rowLabel), ""
	}
	dia, err := ParseDiameter(diaStr)
	if err != nil {
		return model.Tool{}, fmt.Sprintf("%s: Invalid diameter '%s'", rowLabel, diaStr), ""
	}

	teethStr := getCell(row, mapping.Teeth)
	if teethStr == "" {
		return model.Tool{}, fmt.Sprintf("%s: Missing tooth count", rowLabel), ""
	}
	teeth, err := strconv.Atoi(teethStr)
	if err != nil {
		return model.Tool{}, fmt.Sprintf("%s: Invalid tooth count '%s'", rowLabel, teethStr), ""
	}

	if dia <= 0 || teeth <= 0 {
		return model.Tool{}, fmt.Sprintf("%s: Diameter and tooth count must be positive", rowLabel), ""
	}

	// Optional material; unrecognized spellings become a custom class.
	var warning string
	material, ok := parseToolMaterial(getCell(row, mapping.Material))
	if !ok {
		warning = fmt.Sprintf("%s: Unknown tool material '%s', will run at the baseline surface speed",
			rowLabel, getCell(row, mapping.Material))
	}

	diameter := units.New(dia, units.Inch)
	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("%s\" %d fl. %s", model.FractionInches(diameter), teeth, material.Display())
	}

	return model.NewTool(label, diameter, teeth, material), "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports tools from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	result = importFromRows(records, "Line", result.Warnings)
	return result
}

// ImportCSVFromReader imports tools from a CSV reader with a specific delimiter.
// This is useful for testing or when the delimiter is already known.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports tools from an Excel (.xlsx, .xls) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into tools.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	// Detect columns from first row
	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		// Validate that required columns were found
		missing := []string{}
		if mapping.Diameter == -1 {
			missing = append(missing, "Diameter")
		}
		if mapping.Teeth == -1 {
			missing = append(missing, "Teeth")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else {
		// No header: check if the diameter column parses (positional mapping).
		// ParseDiameter rather than ParseFloat so fractional values like
		// "3/4" are not mistaken for a header.
		if len(rows[0]) >= 3 {
			if _, err := ParseDiameter(rows[0][1]); err != nil {
				// Not a diameter - might be an unrecognized header.
				// Skip it as a header but use positional mapping
				startRow = 1
				result.Warnings = append(result.Warnings, "Detected header row, skipping")
			}
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		tool, errMsg, warning := parseTool(row, mapping, rowLabel)

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.Tools = append(result.Tools, tool)
	}

	return result
}
