package quote

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Fraction is the number of minor-unit digits kept for display and persistence.
const Fraction = 2

const zeroDisplay = "R$ 0,00"

// Limits on what an amount may hold. Rounding rescales the coefficient, so
// anything outside them is rejected on input and shown as zero on output.
const (
	maxIntDigits = 16
	maxScale     = 18
)

var maxCents = decimal.NewFromInt(math.MaxInt64)

// Money is an exact, non-negative BRL amount.
//
// Arithmetic keeps full decimal precision; rounding (half-up) happens only in
// String, InputText and Float64.
type Money struct {
	value decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

func NewMoney(d decimal.Decimal) Money { return Money{value: d} }

// Cents builds an amount from minor units.
func Cents(c int64) Money { return Money{value: decimal.New(c, -Fraction)} }

// ParseMoney parses user input written with "." as thousands separator and ","
// as decimal separator ("1.250,50"). Empty input is zero.
func ParseMoney(text string) (Money, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Zero, nil
	}
	if strings.ContainsAny(s, "eE") {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	cleaned := strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	if d.IsNegative() {
		return Zero, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, text)
	}
	if !bounded(d) {
		return Zero, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, text)
	}
	return Money{value: d}, nil
}

// MoneyFromFloat re-derives an exact amount from a binary float through its
// shortest textual form and re-quantizes it to cents.
func MoneyFromFloat(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, f)
	}
	d, err := decimal.NewFromString(strconv.FormatFloat(f, 'f', -1, 64))
	if err != nil {
		return Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, f)
	}
	d = d.Round(Fraction)
	if !bounded(d) {
		return Zero, fmt.Errorf("%w: %v is out of range", ErrInvalidAmount, f)
	}
	return Money{value: d}, nil
}

// bounded reports whether d can be rounded to cents cheaply and fits an
// int64 count of cents. It looks only at the exponent and digit count.
func bounded(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp < -maxScale || exp > maxIntDigits {
		return false
	}
	return d.NumDigits()+int(exp) <= maxIntDigits
}

func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) }
func (m Money) Cmp(n Money) int          { return m.value.Cmp(n.value) }
func (m Money) LessThan(n Money) bool    { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool { return m.value.GreaterThan(n.value) }
func (m Money) Add(n Money) Money        { return Money{value: m.value.Add(n.value)} }
func (m Money) MulInt(qty int) Money     { return Money{value: m.value.Mul(decimal.NewFromInt(int64(qty)))} }

// Rounded, Float64 and Fixed treat an amount outside the supported range as
// zero.
func (m Money) Rounded() Money {
	if !bounded(m.value) {
		return Zero
	}
	return Money{value: m.value.Round(Fraction)}
}

func (m Money) Float64() float64 {
	if !bounded(m.value) {
		return 0
	}
	return m.value.Round(Fraction).InexactFloat64()
}

func (m Money) Fixed() string {
	if !bounded(m.value) {
		return "0.00"
	}
	return m.value.StringFixed(Fraction)
}

// String renders the amount as "R$ 1.250,50". It never fails: any value that
// cannot be represented falls back to "R$ 0,00".
func (m Money) String() (s string) {
	defer func() {
		if recover() != nil {
			s = zeroDisplay
		}
	}()
	f, ok := m.formatter("$ 1")
	if !ok {
		return zeroDisplay
	}
	cents, ok := m.cents()
	if !ok {
		return zeroDisplay
	}
	return f.Format(cents)
}

// InputText renders the amount the way a user types it ("1.250,50"), so the
// text parses back to the same value.
func (m Money) InputText() string {
	f, ok := m.formatter("1")
	if !ok {
		return "0,00"
	}
	cents, ok := m.cents()
	if !ok {
		return "0,00"
	}
	return f.Format(cents)
}

func (m Money) cents() (int64, bool) {
	if !bounded(m.value) {
		return 0, false
	}
	c := m.value.Round(Fraction).Shift(Fraction)
	if c.IsNegative() || c.GreaterThan(maxCents) {
		return 0, false
	}
	return c.IntPart(), true
}

func (m Money) formatter(template string) (*money.Formatter, bool) {
	cur := money.GetCurrency(money.BRL)
	if cur == nil {
		return nil, false
	}
	return money.NewFormatter(cur.Fraction, cur.Decimal, cur.Thousand, cur.Grapheme, template), true
}
