// Package money holds currency values as integer minor units.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Amount is a signed currency value in hundredths of the currency unit.
type Amount int64

const Zero Amount = 0

var ErrInvalidAmount = errors.New("invalid amount")

// FromUnits converts a whole-unit value, e.g. FromUnits(1200) is 1200.00.
func FromUnits(units int64) Amount {
	return Amount(units * 100)
}

// Parse accepts user input such as "1500", "1 500,50", "1500.5" or "-20.10".
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(" ", "", "\u00a0", "", "_", "").Replace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	s = strings.ReplaceAll(s, ",", ".")
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && (!hasFrac || frac == "") {
		return 0, ErrInvalidAmount
	}
	if hasFrac && (len(frac) > 2 || strings.Contains(frac, ".")) {
		return 0, fmt.Errorf("%w: at most two decimal places", ErrInvalidAmount)
	}

	var units int64
	if whole != "" {
		v, err := strconv.ParseInt(whole, 10, 64)
		if err != nil || v < 0 {
			return 0, ErrInvalidAmount
		}
		units = v
	}

	var cents int64
	if frac != "" {
		for len(frac) < 2 {
			frac += "0"
		}
		v, err := strconv.ParseInt(frac, 10, 64)
		if err != nil || v < 0 {
			return 0, ErrInvalidAmount
		}
		cents = v
	}

	if units > (1<<62)/100 {
		return 0, fmt.Errorf("%w: out of range", ErrInvalidAmount)
	}

	a := Amount(units*100 + cents)
	if neg {
		a = -a
	}
	return a, nil
}

func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String renders the amount as a plain decimal, e.g. "-1200.50".
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

func (a Amount) IsPositive() bool { return a > 0 }

// Float is for display only; never use it in comparisons.
func (a Amount) Float() float64 {
	return float64(a) / 100
}

// MarshalJSON writes the decimal form as a JSON string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.String())), nil
}

// UnmarshalJSON accepts either a JSON number or a decimal string.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Sum adds up amounts.
func Sum(values ...Amount) Amount {
	var total Amount
	for _, v := range values {
		total += v
	}
	return total
}
