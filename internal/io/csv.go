package io

import (
	"encoding/csv"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/gonum/matrix/mat64"
)

// Mat64toCSV saves Mat64 as a csv file. A non-empty header is written as the first row.
func Mat64toCSV(path string, header []string, matrix *mat64.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[Mat64toCSV] failed to create %s: %w", path, err)
	}
	defer f.Close()

	if len(header) > 0 {
		if _, err := fmt.Fprintf(f, "%s\n", strings.Join(header, ",")); err != nil {
			return fmt.Errorf("[Mat64toCSV] failed to write %s: %w", path, err)
		}
	}

	rows, _ := matrix.Dims()

	stride := runtime.NumCPU()
	parsed := make([]string, stride)

	for row := 0; row < rows; row += stride {
		var wg sync.WaitGroup
		jobMark := stride

		if row+stride >= rows {
			jobMark = rows - row
		}

		wg.Add(jobMark)
		for offset := 0; offset < jobMark; offset++ {
			go formatLine(matrix, parsed, offset, row, &wg)
		}
		wg.Wait()

		for i := 0; i < jobMark; i++ {
			if _, err := fmt.Fprintf(f, "%s\n", parsed[i]); err != nil {
				return fmt.Errorf("[Mat64toCSV] failed to write %s: %w", path, err)
			}
		}
	}

	return nil
}

func formatLine(matrix *mat64.Dense, parsed []string, offset int, row int, wg *sync.WaitGroup) {
	defer wg.Done()

	_, cols := matrix.Dims()

	fields := make([]string, cols)
	for i := 0; i < cols; i++ {
		fields[i] = strconv.FormatFloat(matrix.At(row+offset, i), 'g', -1, 64)
	}

	parsed[offset] = strings.Join(fields, ",")
}

// ReadManifest reads an ordered list of names. Both one name per row and all
// names on a single row are accepted; order is row-major either way.
func ReadManifest(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("[ReadManifest] failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("[ReadManifest] failed to parse %s: %w", path, err)
	}

	var names []string
	for _, rec := range records {
		for _, field := range rec {
			if field = strings.TrimSpace(field); field != "" {
				names = append(names, field)
			}
		}
	}

	return names, nil
}

// WriteManifest writes one name per row
func WriteManifest(path string, names []string) error {
	rows := make([][]string, len(names))
	for i, n := range names {
		rows[i] = []string{n}
	}

	return WriteTable(path, nil, rows)
}

// ReadTable reads a csv file with a header row
func ReadTable(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("[ReadTable] failed to open %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("[ReadTable] failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("[ReadTable] %s is empty", path)
	}

	// spreadsheet exports often carry a byte order mark
	records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")

	return records[0], records[1:], nil
}

// Column returns the values of the named column
func Column(header []string, rows [][]string, name string) ([]string, error) {
	idx := -1
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("[Column] no column %q in header %v", name, header)
	}

	values := make([]string, len(rows))
	for i, row := range rows {
		if idx >= len(row) {
			return nil, fmt.Errorf("[Column] row %d has no column %q", i+1, name)
		}
		values[i] = row[idx]
	}

	return values, nil
}

// WriteTable writes rows as csv, preceded by the header when one is given
func WriteTable(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[WriteTable] failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(header) > 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("[WriteTable] failed to write %s: %w", path, err)
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("[WriteTable] failed to write %s: %w", path, err)
	}

	return nil
}
