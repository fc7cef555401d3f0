// Package importer loads catalog products from CSV.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads header-indexed product CSV and upserts each row. Rows
// with an id update that product; rows without one are inserted.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

var requiredHeaders = []string{"name", "category", "price"}

// Run imports every row and stops at the first invalid one. The returned
// count covers rows written before the failure.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, h := range requiredHeaders {
		if _, ok := index[h]; !ok {
			return 0, fmt.Errorf("missing required column %q", h)
		}
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		p, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if _, err := i.productRepo.Upsert(ctx, p); err != nil {
			return imported, fmt.Errorf("row %d: upsert product %q: %w", line, p.Name, err)
		}
		imported++
	}

	return imported, nil
}

func parseRow(record []string, index map[string]int) (domain.Product, error) {
	p := domain.Product{
		ID:          pick(record, index, "id"),
		Name:        pick(record, index, "name"),
		Category:    strings.ToLower(pick(record, index, "category")),
		Subcategory: pick(record, index, "subcategory"),
		Description: pick(record, index, "description"),
		Colors:      list(pick(record, index, "colors")),
		Sizes:       list(pick(record, index, "sizes")),
		Color:       pick(record, index, "color"),
		Size:        pick(record, index, "size"),
		ImageURL:    pick(record, index, "image_url"),
	}
	if p.Name == "" {
		return p, fmt.Errorf("name is required")
	}
	if p.Category == "" {
		return p, fmt.Errorf("category is required for %q", p.Name)
	}

	priceStr := pick(record, index, "price")
	price, err := strconv.ParseInt(priceStr, 10, 64)
	if err != nil {
		return p, fmt.Errorf("invalid price %q for %q", priceStr, p.Name)
	}
	if price < 0 {
		return p, fmt.Errorf("negative price %d for %q", price, p.Name)
	}
	p.Price = price

	if p.Featured, err = boolField(record, index, "featured", false); err != nil {
		return p, err
	}
	if p.InStock, err = boolField(record, index, "in_stock", true); err != nil {
		return p, err
	}
	if raw := pick(record, index, "sort_order"); raw != "" {
		if p.SortOrder, err = strconv.Atoi(raw); err != nil {
			return p, fmt.Errorf("invalid sort_order %q for %q", raw, p.Name)
		}
	}
	return p, nil
}

func boolField(record []string, index map[string]int, key string, def bool) (bool, error) {
	raw := pick(record, index, key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}

// list splits a ';'-separated cell.
func list(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
