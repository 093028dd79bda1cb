package ledger

import (
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testRates() RateTable {
	return NewRateTable(1, map[Currency]decimal.Decimal{
		"EUR": dec("0.92"),
		"SAR": dec("3.75"),
		"PKR": dec("278.50"),
	})
}
