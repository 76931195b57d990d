package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"podcast-storefront/internal/domain"
)

type ItemWriter interface {
	Upsert(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error)
}

var requiredColumns = []string{"id", "kind", "title", "price"}

// CSVImporter reads a catalog export and inserts/updates its items.
//
// Columns: id, kind, title, description, price, discount_percent, stock, image_url.
// Only the first four are required; header order is free.
type CSVImporter struct {
	reader *csv.Reader
	writer ItemWriter
}

func NewCSVImporter(r io.Reader, writer ItemWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{reader: csvr, writer: writer}
}

// Run upserts every non-blank row and returns how many were written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("missing column %q", col)
		}
	}

	imported := 0
	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		if blank(record) {
			continue
		}

		item, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := i.writer.Upsert(ctx, item); err != nil {
			return imported, fmt.Errorf("upsert item %q: %w", item.ID, err)
		}
		imported++
	}
	return imported, nil
}

func parseRow(record []string, index map[string]int) (domain.CatalogItem, error) {
	kind, err := domain.ParseKind(strings.ToLower(pick(record, index, "kind")))
	if err != nil {
		return domain.CatalogItem{}, err
	}
	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("price: %w", err)
	}
	discount, err := optionalInt(pick(record, index, "discount_percent"))
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("discount_percent: %w", err)
	}
	stock, err := optionalInt(pick(record, index, "stock"))
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("stock: %w", err)
	}
	return domain.CatalogItem{
		ID:              pick(record, index, "id"),
		Kind:            kind,
		Title:           pick(record, index, "title"),
		Description:     pick(record, index, "description"),
		Price:           price,
		DiscountPercent: discount,
		Stock:           stock,
		ImageURL:        pick(record, index, "image_url"),
	}, nil
}

func optionalInt(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
