// Package projection loads the candidate table of drivers and constructors
// with their prices, expected points and projected price changes.
package projection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/roster"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Format names a projection file encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Record is the wire form of one projection row. PriceChange is optional.
type Record struct {
	Name          string   `json:"name" yaml:"name"`
	IsDriver      bool     `json:"is_driver" yaml:"is_driver"`
	IsConstructor bool     `json:"is_constructor" yaml:"is_constructor"`
	Price         float64  `json:"price" yaml:"price"`
	XPts          float64  `json:"xPts" yaml:"xPts"`
	PriceChange   *float64 `json:"price_change,omitempty" yaml:"price_change,omitempty"`
}

// Entry converts the record to a projection entry. Non-finite numbers are
// rejected with roster.ErrInvalidProjections.
func (r Record) Entry() (roster.ProjectionEntry, error) {
	name := strings.TrimSpace(r.Name)
	numbers := []struct {
		field string
		value *float64
	}{{"price", &r.Price}, {"xPts", &r.XPts}, {"price_change", r.PriceChange}}
	for _, n := range numbers {
		if n.value != nil && (math.IsNaN(*n.value) || math.IsInf(*n.value, 0)) {
			return roster.ProjectionEntry{}, fmt.Errorf("%w: %q has non-finite %s", roster.ErrInvalidProjections, name, n.field)
		}
	}

	e := roster.ProjectionEntry{
		Name:          name,
		IsDriver:      r.IsDriver,
		IsConstructor: r.IsConstructor,
		Price:         decimal.NewFromFloat(r.Price),
		XPts:          r.XPts,
	}
	if r.PriceChange != nil {
		e.PriceChange = decimal.NewFromFloat(*r.PriceChange)
		e.HasPriceChange = true
	}
	return e, nil
}

// FromRecords converts and validates a set of records.
func FromRecords(records []Record) ([]roster.ProjectionEntry, error) {
	entries := make([]roster.ProjectionEntry, len(records))
	for i, r := range records {
		e, err := r.Entry()
		if err != nil {
			return nil, err
		}
		entries[i] = e
	}
	if err := roster.ValidateProjections(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("cannot infer projection format from %q", path)
	}
}

// Store serves the projection table from a file.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore returns a store reading path.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

// Load reads and validates the table. Each call rereads the file.
func (s *Store) Load(ctx context.Context) ([]roster.ProjectionEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format, err := FormatFromPath(s.path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open projections: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	drivers, constructors := 0, 0
	for _, e := range entries {
		if e.IsDriver {
			drivers++
		} else {
			constructors++
		}
	}
	s.logger.Debug("projections loaded",
		zap.String("op", "projection.Load"),
		zap.String("path", s.path),
		zap.String("format", string(format)),
		zap.Int("drivers", drivers),
		zap.Int("constructors", constructors),
	)
	return entries, nil
}

// Parse decodes a table in the given format.
func Parse(r io.Reader, format Format) ([]roster.ProjectionEntry, error) {
	switch format {
	case FormatCSV:
		records, err := parseCSV(r)
		if err != nil {
			return nil, err
		}
		return FromRecords(records)
	case FormatJSON:
		var records []Record
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("decode JSON projections: %w", err)
		}
		return FromRecords(records)
	case FormatYAML:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read YAML projections: %w", err)
		}
		var records []Record
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&records); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode YAML projections: %w", err)
		}
		return FromRecords(records)
	default:
		return nil, fmt.Errorf("unsupported projection format %q", format)
	}
}
