package vendors

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/vendor-matcher/internal/sheets"
)

// dateLayouts lists the date formats found in the roster spreadsheets.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006, 15:04:05",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// DecodeVendors converts roster rows into vendors.
func DecodeVendors(rows []sheets.Row) (*Vendors, error) {
	items := make([]*Vendor, 0, len(rows))
	for i, row := range rows {
		var v Vendor
		if err := decodeRow(row, &v); err != nil {
			return nil, fmt.Errorf("decode vendor row %d: %w", i+1, err)
		}
		v.ID = strings.TrimSpace(v.ID)
		v.Status = Status(strings.TrimSpace(string(v.Status)))
		items = append(items, &v)
	}
	return &Vendors{Items: items}, nil
}

// DecodeRatings converts rating rows into ratings.
func DecodeRatings(rows []sheets.Row) ([]*Rating, error) {
	ratings := make([]*Rating, 0, len(rows))
	for i, row := range rows {
		var r Rating
		if err := decodeRow(row, &r); err != nil {
			return nil, fmt.Errorf("decode rating row %d: %w", i+1, err)
		}
		r.VendorID = strings.TrimSpace(r.VendorID)
		ratings = append(ratings, &r)
	}
	return ratings, nil
}

func decodeRow(row sheets.Row, target any) error {
	cfg := &mapstructure.DecoderConfig{
		DecodeHook: lenientCellHook,
		Result:     target,
		TagName:    "mapstructure",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(map[string]string(row))
}

// lenientCellHook turns spreadsheet cells into typed values. Cells that do not
// parse become the zero value instead of failing the whole row.
func lenientCellHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	raw := strings.TrimSpace(data.(string))

	if to == reflect.TypeOf(time.Time{}) {
		return ParseDate(raw), nil
	}

	switch to.Kind() {
	case reflect.Float32, reflect.Float64:
		return parseFloat(raw), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return parseInt(raw), nil
	case reflect.Bool:
		return parseBool(raw), nil
	}

	return data, nil
}

// ParseDate parses a spreadsheet date. The zero time is returned for empty or
// unrecognized values.
func ParseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseFloat treats NaN and infinities like any other unparseable cell.
func parseFloat(raw string) float64 {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseInt(raw string) int {
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	f := parseFloat(raw)
	if f >= math.MaxInt32 || f <= math.MinInt32 {
		return 0
	}
	return int(f)
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "yes", "y", "1", "x":
		return true
	default:
		return false
	}
}
