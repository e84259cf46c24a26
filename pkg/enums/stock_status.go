package enums

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// StockStatus is derived from a stock entry's quantity and threshold; it is
// never stored.
type StockStatus string

const (
	StockStatusOutOfStock StockStatus = "Out of Stock"
	StockStatusLow        StockStatus = "Low Stock"
	StockStatusAvailable  StockStatus = "Available"
)

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// DeriveStockStatus classifies quantity against minThreshold.
func DeriveStockStatus(quantity, minThreshold decimal.Decimal) StockStatus {
	switch {
	case quantity.Sign() <= 0:
		return StockStatusOutOfStock
	case quantity.LessThan(minThreshold):
		return StockStatusLow
	default:
		return StockStatusAvailable
	}
}

// ParseStockStatus accepts the display form or a snake_case alias such as
// "low_stock".
func ParseStockStatus(value string) (StockStatus, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(value), "_", " "))
	for _, candidate := range []StockStatus{StockStatusOutOfStock, StockStatusLow, StockStatusAvailable} {
		if strings.ToLower(string(candidate)) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock status %q", value)
}
