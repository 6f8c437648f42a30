package quantity

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits every quantity carries on the wire.
const Places = 3

// Quantity is a decimal rounded to Places digits. It marshals as a fixed
// 3-digit string ("10.500").
type Quantity struct {
	decimal.Decimal
}

// New rounds d half away from zero to Places digits.
func New(d decimal.Decimal) Quantity {
	return Quantity{d.Round(Places)}
}

// From coerces a value coming from an upstream payload. Strings must use a
// dot as the decimal separator; anything unparseable becomes zero.
func From(v any) Quantity {
	switch x := v.(type) {
	case nil:
		return Quantity{}
	case Quantity:
		return x
	case *Quantity:
		if x == nil {
			return Quantity{}
		}
		return *x
	case decimal.Decimal:
		return New(x)
	case json.Number:
		return fromString(x.String())
	case string:
		return fromString(x)
	case float64:
		return New(decimal.NewFromFloat(x))
	case float32:
		return New(decimal.NewFromFloat32(x))
	case int:
		return New(decimal.NewFromInt(int64(x)))
	case int64:
		return New(decimal.NewFromInt(x))
	case int32:
		return New(decimal.NewFromInt32(x))
	default:
		return Quantity{}
	}
}

// Decimal coerces like From but keeps every fractional digit (mediaDia has 6).
func Decimal(v any) decimal.Decimal {
	switch x := v.(type) {
	case decimal.Decimal:
		return x
	case json.Number:
		d, err := decimal.NewFromString(strings.TrimSpace(x.String()))
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return From(v).Decimal
	}
}

func fromString(s string) Quantity {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Quantity{}
	}
	return New(d)
}

// Normalize reduces free-typed text to digits and a single dot. The first
// ',' or '.' is the decimal point; later separators and every other
// character are dropped, so "1.234,5" becomes "1.2345".
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	i := strings.IndexAny(s, ".,")
	if i < 0 {
		return s
	}
	rest := strings.NewReplacer(".", "", ",", "").Replace(s[i+1:])
	return s[:i] + "." + rest
}

// Parse turns text typed by the user into a quantity. It never fails:
// empty or unparseable input is zero.
func Parse(raw string) Quantity {
	intPart, frac, _ := strings.Cut(Normalize(raw), ".")
	if intPart == "" && frac == "" {
		return Quantity{}
	}
	if intPart == "" {
		intPart = "0"
	}
	s := intPart
	if frac != "" {
		s += "." + frac
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}
	}
	return New(d)
}

// Sum adds quantities.
func Sum(qs ...Quantity) Quantity {
	total := decimal.Zero
	for _, q := range qs {
		total = total.Add(q.Decimal)
	}
	return New(total)
}

// String formats with exactly Places fractional digits.
func (q Quantity) String() string {
	return q.Decimal.StringFixed(Places)
}

// Number is the shortest decimal form, for bodies that expect a JSON number.
func (q Quantity) Number() json.Number {
	return json.Number(q.Decimal.String())
}

func (q Quantity) Equal(o Quantity) bool {
	return q.Decimal.Equal(o.Decimal)
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(q.String())), nil
}

func (q *Quantity) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*q = Quantity{}
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	*q = fromString(s)
	return nil
}
