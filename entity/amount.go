package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// AmountDecimals is the number of fractional digits between the display unit and the
// smallest unit an Amount counts.
const AmountDecimals = 18

// maxUnits bounds a single price or payment to uint256, which also fits NUMERIC(78, 0).
var maxUnits = decimal.NewFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)), 0)

// Amount is a non-negative quantity of funds counted in the smallest currency unit. It has no
// upper bound, so sums of amounts never overflow.
//
// Amounts are kept in canonical form: equal amounts are deeply equal, regardless of how they
// were built. The zero value is zero.
type Amount struct {
	units decimal.Decimal
}

func canonical(units decimal.Decimal) Amount {
	if units.IsZero() {
		return Amount{}
	}

	return Amount{units: decimal.NewFromBigInt(units.BigInt(), 0)}
}

// NewAmount returns units of the smallest currency unit.
func NewAmount(units uint64) Amount {
	return canonical(decimal.NewFromBigInt(new(big.Int).SetUint64(units), 0))
}

// ParseAmount parses a display amount such as "0.1".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}

	a, err := fromUnits(d.Shift(AmountDecimals))
	if err != nil {
		return Amount{}, fmt.Errorf("amount %q: %w", s, err)
	}

	return a, nil
}

// AmountFromUnits parses an integer count of the smallest unit, as stored in NUMERIC columns.
func AmountFromUnits(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parsing units %q: %w", s, err)
	}

	a, err := fromUnits(d)
	if err != nil {
		return Amount{}, fmt.Errorf("units %q: %w", s, err)
	}

	return a, nil
}

func fromUnits(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return Amount{}, errors.New("negative")
	}
	if !d.IsInteger() {
		return Amount{}, fmt.Errorf("more than %d decimal places", AmountDecimals)
	}
	if d.GreaterThan(maxUnits) {
		return Amount{}, errors.New("out of range")
	}

	return canonical(d), nil
}

func (a Amount) Add(b Amount) Amount {
	return canonical(a.units.Add(b.units))
}

func (a Amount) Cmp(b Amount) int {
	return a.units.Cmp(b.units)
}

func (a Amount) LessThan(b Amount) bool {
	return a.Cmp(b) < 0
}

func (a Amount) Equal(b Amount) bool {
	return a.Cmp(b) == 0
}

func (a Amount) IsZero() bool {
	return a.units.IsZero()
}

// Units renders the amount as an integer count of the smallest unit.
func (a Amount) Units() string {
	return a.units.String()
}

// Decimal returns the amount in display units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(a.units.BigInt(), -AmountDecimals)
}

func (a Amount) String() string {
	return a.Decimal().String()
}

// MarshalJSON encodes the display string, e.g. "0.1".
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("amount must be a string: %w", err)
	}

	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed

	return nil
}
