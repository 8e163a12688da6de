package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Date layouts seen in the planillas, tried in order. Go's non-padded
// patterns also accept zero-padded values, so "05/03/2024" and "5/3/2024"
// both parse with the first layout.
var dateLayouts = []string{
	"2/1/2006",
	"2006-1-2",
	"2-1-2006",
}

// ToDate coerces a cell value to a calendar date. Unparseable values yield
// nil rather than an error: a dirty date cell must not abort a bulk import.
// Cells holding a native Excel date surface as a day serial, handled after
// the string layouts so the canonical formats always win.
func ToDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	// Excel date serial (days since the 1900 epoch)
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < 200000 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &t
		}
	}

	return nil
}

// ToDecimal coerces a cell value to a fixed-point decimal. It disambiguates
// the Latin-American number formats the planillas mix freely:
//
//	1.234,56 -> periods are thousands separators, comma is the decimal point
//	1234,56  -> comma is the decimal point
//	1234.56  -> already period-decimal
//
// Unparseable values yield nil, never an error.
func ToDecimal(raw string) *decimal.Decimal {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if s == "" {
		return nil
	}

	commas := strings.Count(s, ",")
	periods := strings.Count(s, ".")
	switch {
	case commas == 1 && periods >= 1:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case commas == 1 && periods == 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}
