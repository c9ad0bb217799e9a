package models

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Price is a menu price. It decodes from JSON or YAML numbers and from
// numeric text; anything that does not start with a number becomes 0.
type Price float64

var leadingNumberRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParsePrice reads the leading decimal number of s, ignoring surrounding
// whitespace and any trailing text. It returns 0 when s has no leading
// number or the value is not finite.
func ParsePrice(s string) Price {
	m := leadingNumberRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

// Float64 returns p as a float64.
func (p Price) Float64() float64 {
	return float64(p)
}

// String returns the shortest decimal form of p ("5", "4.5").
func (p Price) String() string {
	return strconv.FormatFloat(float64(p), 'f', -1, 64)
}

// MarshalJSON never emits NaN or Inf.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(finite(float64(p)).String()), nil
}

// UnmarshalJSON accepts a number, a string or null.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*p = 0
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ParsePrice(s)
	default:
		*p = ParsePrice(string(data))
	}
	return nil
}

// UnmarshalYAML accepts any scalar.
func (p *Price) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		*p = 0
		return nil //nolint:nilerr // non-scalar prices coerce to zero
	}
	*p = ParsePrice(s)
	return nil
}

func finite(f float64) Price {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return Price(f)
}
