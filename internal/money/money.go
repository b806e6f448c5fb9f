// Package money holds XAF amounts. The franc CFA has no minor unit in
// practice, so amounts are whole currency units.
package money

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a number of XAF currency units.
type Amount int64

// Currency is the ISO code appended by Format.
const Currency = "XAF"

// Max returns the larger of a and b.
func Max(a, b Amount) Amount {
	if a > b {
		return a
	}
	return b
}

// Times multiplies the amount by a quantity.
func (a Amount) Times(n int) Amount {
	return a * Amount(n)
}

// MarshalJSON encodes the amount as a plain integer.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(a), 10)), nil
}

// UnmarshalJSON accepts numbers and numeric strings ("2000.00"), rounding to
// the nearest unit. NaN, infinities and values outside int64 are rejected.
// null leaves the amount untouched.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("money: %w", err)
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*a = 0
			return nil
		}
	} else {
		raw = string(data)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("money: invalid amount %q", raw)
	}
	f = math.Round(f)
	// float64(math.MaxInt64) is 2^63, one past the largest int64.
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return fmt.Errorf("money: invalid amount %q", raw)
	}
	*a = Amount(f)
	return nil
}

// Format renders an amount like "6 500 XAF".
func Format(a Amount) string {
	neg := a < 0
	if neg {
		a = -a
	}

	s := strconv.FormatInt(int64(a), 10)

	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + len(Currency) + 2)
	if neg {
		b.WriteByte('-')
	}

	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte(' ')
		b.WriteString(s[i : i+3])
	}

	b.WriteByte(' ')
	b.WriteString(Currency)
	return b.String()
}

// String implements fmt.Stringer.
func (a Amount) String() string {
	return Format(a)
}
