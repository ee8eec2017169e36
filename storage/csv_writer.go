package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"vehicle-scraper/models"
)

// CSVWriter dumps raw (unnormalized) extractions to a CSV file as a
// debugging aid before the pipeline transforms them.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"id", "detail_url", "title", "price", "first_registration", "mileage",
		"fuel", "transmission", "condition", "images", "equipment",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteRaw appends one row per extraction, capped at 50 rows.
func (c *CSVWriter) WriteRaw(results []models.DetailResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(results) > 50 {
		results = results[:50]
	}

	for _, res := range results {
		row := []string{
			res.Ref.ID,
			res.Ref.DetailURL,
			rawOr(res.Raw, models.FieldTitle),
			rawOr(res.Raw, models.FieldPrice),
			rawOr(res.Raw, models.FieldFirstRegistration),
			rawOr(res.Raw, models.FieldMileage),
			rawOr(res.Raw, models.FieldFuel),
			rawOr(res.Raw, models.FieldTransmission),
			rawOr(res.Raw, models.FieldCondition),
			strconv.Itoa(len(res.Raw.Images)),
			strings.Join(res.Raw.Equipment, "|"),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func rawOr(raw *models.RawExtraction, field string) string {
	v, _ := raw.Get(field)
	return v
}
