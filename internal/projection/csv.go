package projection

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/roster"
)

var requiredColumns = []string{"name", "is_driver", "is_constructor", "price", "xPts"}

// parseCSV reads a headed table. Column order is free; price_change is
// optional and an empty cell leaves it unset.
func parseCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("projection CSV is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("projection CSV missing column %q", col)
		}
	}
	changeCol, hasChange := index["price_change"]

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		rec := Record{Name: row[index["name"]]}
		if rec.IsDriver, err = parseBool(row[index["is_driver"]]); err != nil {
			return nil, fmt.Errorf("line %d is_driver: %w", line, err)
		}
		if rec.IsConstructor, err = parseBool(row[index["is_constructor"]]); err != nil {
			return nil, fmt.Errorf("line %d is_constructor: %w", line, err)
		}
		if rec.Price, err = parseFloat(row[index["price"]]); err != nil {
			return nil, fmt.Errorf("line %d price: %w", line, err)
		}
		if rec.XPts, err = parseFloat(row[index["xPts"]]); err != nil {
			return nil, fmt.Errorf("line %d xPts: %w", line, err)
		}
		if hasChange && strings.TrimSpace(row[changeCol]) != "" {
			v, err := parseFloat(row[changeCol])
			if err != nil {
				return nil, fmt.Errorf("line %d price_change: %w", line, err)
			}
			rec.PriceChange = &v
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseBool(s string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(s))
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite number", roster.ErrInvalidProjections, strings.TrimSpace(s))
	}
	return v, nil
}
