package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// Read loads a table from path. Files ending in .xlsx are read from their first
// sheet; everything else is parsed as CSV. A missing path yields
// *SourceNotFoundError and any other failure yields *LoadError.
func Read(path string) (Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Table{}, &SourceNotFoundError{Path: path}
		}
		return Table{}, &LoadError{Path: path, Err: err}
	}
	if info.IsDir() {
		return Table{}, &LoadError{Path: path, Err: errors.New("path is a directory")}
	}

	var raw [][]string
	switch formatFor(path) {
	case formatXLSX:
		raw, err = readXLSX(path)
	default:
		raw, err = readCSVFile(path)
	}
	if err != nil {
		return Table{}, &LoadError{Path: path, Err: err}
	}
	if len(raw) == 0 {
		return Table{}, &LoadError{Path: path, Err: errors.New("no header row")}
	}

	header := make([]string, len(raw[0]))
	copy(header, raw[0])
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	return Table{Header: header, Rows: normalizeRows(header, raw[1:])}, nil
}

func readCSVFile(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only input.
			_ = cerr
		}
	}()
	return ReadCSV(file)
}

// ReadCSV parses all records from r. Rows may have differing field counts.
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only input.
			_ = cerr
		}
	}()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}
