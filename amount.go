package reconcile

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Tolerance is the absolute difference under which a reconciled balance is
// considered equal to the reported one.
var Tolerance = A(0.01)

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// Amount is a signed monetary amount in the ledger currency.
//
// Amounts are exact: sums over tens of thousands of movements never drift.
type Amount struct {
	value decimal.Decimal
}

// A creates an Amount from any number.
func A[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Amount {
	return Amount{value: newDecimal(value)}
}

func (a Amount) Add(b Amount) Amount       { return Amount{value: a.value.Add(b.value)} }
func (a Amount) Sub(b Amount) Amount       { return Amount{value: a.value.Sub(b.value)} }
func (a Amount) Neg() Amount               { return Amount{value: a.value.Neg()} }
func (a Amount) Abs() Amount               { return Amount{value: a.value.Abs()} }
func (a Amount) Cmp(b Amount) int          { return a.value.Cmp(b.value) }
func (a Amount) Equal(b Amount) bool       { return a.value.Equal(b.value) }
func (a Amount) IsZero() bool              { return a.value.IsZero() }
func (a Amount) IsNegative() bool          { return a.value.IsNegative() }
func (a Amount) GreaterThan(b Amount) bool { return a.value.GreaterThan(b.value) }
func (a Amount) LessThan(b Amount) bool    { return a.value.LessThan(b.value) }
func (a Amount) Decimal() decimal.Decimal  { return a.value }
func (a Amount) String() string            { return a.value.String() }

// InexactFloat64 returns the nearest float64, for display purposes only.
func (a Amount) InexactFloat64() float64 { return a.value.InexactFloat64() }

// Format returns the amount formatted in the given ISO currency, e.g. "$1,100.00".
// Unknown currencies are printed with two fixed digits.
func (a Amount) Format(currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return a.value.StringFixed(2)
	}
	return cur.Formatter().Format(a.value.Shift(int32(cur.Fraction)).Round(0).IntPart())
}

// Sum adds all amounts together.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return a.value.MarshalJSON()
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	return a.value.UnmarshalJSON(b)
}

var _ json.Marshaler = Amount{}
var _ json.Unmarshaler = (*Amount)(nil)

// ParseAmount parses an amount the way spreadsheets print them.
//
// Both decimal conventions are accepted: "1234.56", "1,234.56", "1.234,56",
// "1234,56". A leading minus or surrounding parentheses make the amount negative.
// An empty string is zero.
func ParseAmount(s string) (Amount, error) {
	str := strings.TrimSpace(s)
	str = strings.TrimLeft(str, "$€ ")
	if str == "" || str == "-" {
		return Amount{}, nil
	}
	neg := false
	if strings.HasPrefix(str, "(") && strings.HasSuffix(str, ")") {
		neg = true
		str = strings.TrimSpace(str[1 : len(str)-1])
	}
	str = strings.ReplaceAll(str, " ", "")

	dot := strings.LastIndex(str, ".")
	comma := strings.LastIndex(str, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		// 1.234,56
		str = strings.ReplaceAll(str, ".", "")
		str = strings.Replace(str, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		// 1,234.56
		str = strings.ReplaceAll(str, ",", "")
	case comma >= 0 && strings.Count(str, ",") == 1 && len(str)-comma-1 != 3:
		// 1234,56
		str = strings.Replace(str, ",", ".", 1)
	case comma >= 0:
		// 1,234,567
		str = strings.ReplaceAll(str, ",", "")
	case strings.Count(str, ".") > 1:
		// 1.234.567
		str = strings.ReplaceAll(str, ".", "")
	}

	d, err := decimal.NewFromString(str)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if neg {
		d = d.Neg()
	}
	return Amount{value: d}, nil
}
