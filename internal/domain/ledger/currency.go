package ledger

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// BaseCurrency is the currency every amount is normalized to for aggregation
const BaseCurrency Currency = "USD"

const (
	// BaseScale is the number of decimals kept for base-currency amounts
	BaseScale int32 = 2
	// RateScale is the number of decimals kept for frozen conversion rates
	RateScale int32 = 10
)

var one = decimal.NewFromInt(1)

// Currency is an upper-cased ISO 4217 code
type Currency string

// ParseCurrency normalizes and validates a currency code
func ParseCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", validationError(CodeInvalidCurrency, "Currency code %q must have three letters", code)
	}
	if _, err := currency.ParseISO(code); err != nil {
		return "", validationError(CodeInvalidCurrency, "Currency code %q is not a recognized ISO currency", code)
	}
	return Currency(code), nil
}

func (c Currency) String() string {
	return string(c)
}

// IsBase reports whether c is the base currency
func (c Currency) IsBase() bool {
	return c == BaseCurrency
}

// RateTable is an immutable snapshot of a tenant's rates, expressed as units
// of a currency per 1 USD. Version identifies the snapshot.
type RateTable struct {
	version int64
	rates   map[Currency]decimal.Decimal
}

// NewRateTable builds a snapshot, copying the given map
func NewRateTable(version int64, rates map[Currency]decimal.Decimal) RateTable {
	cp := make(map[Currency]decimal.Decimal, len(rates))
	for c, r := range rates {
		cp[c] = r
	}
	return RateTable{version: version, rates: cp}
}

// Version returns the snapshot version
func (t RateTable) Version() int64 {
	return t.version
}

// RateToUsd returns the configured rate. USD is implicitly 1.
func (t RateTable) RateToUsd(c Currency) (decimal.Decimal, bool) {
	if c.IsBase() {
		return one, true
	}
	r, ok := t.rates[c]
	if !ok || !r.IsPositive() {
		return decimal.Zero, false
	}
	return r, true
}

// With returns a new snapshot with one rate replaced
func (t RateTable) With(c Currency, rateToUsd decimal.Decimal) RateTable {
	next := NewRateTable(t.version+1, t.rates)
	next.rates[c] = rateToUsd
	return next
}

// Currencies lists configured currencies in sorted order
func (t RateTable) Currencies() []Currency {
	out := make([]Currency, 0, len(t.rates))
	for c := range t.rates {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ToBase converts amount in currency c to USD using the live table. It goes
// through the same frozen rate a new entry would persist, so a preview and the
// entry recorded from it agree to the cent.
func ToBase(amount decimal.Decimal, c Currency, table RateTable) (decimal.Decimal, error) {
	rate, err := FreezeRate(c, table)
	if err != nil {
		return decimal.Zero, err
	}
	return ToBaseFrozen(amount, rate), nil
}

// FreezeRate returns the USD-per-unit multiplier to persist on a new entry
func FreezeRate(c Currency, table RateTable) (decimal.Decimal, error) {
	rate, ok := table.RateToUsd(c)
	if !ok {
		return decimal.Zero, &MissingRateError{Currency: c}
	}
	if rate.Equal(one) {
		return one, nil
	}
	return one.DivRound(rate, RateScale), nil
}

// ConvertFrozen converts amount with a rate previously returned by FreezeRate.
// The result is exact; sums and comparisons are done on these values.
func ConvertFrozen(amount, rateToBase decimal.Decimal) decimal.Decimal {
	if rateToBase.Equal(one) {
		return amount
	}
	return amount.Mul(rateToBase)
}

// ToBaseFrozen is the reported base value of one entry: unchanged when no
// conversion applies, otherwise rounded to cents.
func ToBaseFrozen(amount, rateToBase decimal.Decimal) decimal.Decimal {
	if rateToBase.Equal(one) {
		return amount
	}
	return RoundBase(amount.Mul(rateToBase))
}

// RoundBase rounds a base-currency figure half-even to cents
func RoundBase(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(BaseScale)
}

// settlementResidual is what is still owed in base currency. Both exact
// totals are rounded to cents before subtracting, so residues under half a
// cent left by conversion vanish and an exact settlement lands on zero.
func settlementResidual(expected, received decimal.Decimal) decimal.Decimal {
	return RoundBase(expected).Sub(RoundBase(received))
}
