package models

import (
	"math"
	"strconv"
)

// Metric is a computed number that may be undefined for lack of data.
// The zero value is undefined; it encodes to JSON null.
type Metric struct {
	value   float64
	defined bool
}

// Defined wraps v. NaN and infinities are treated as undefined.
func Defined(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{value: v, defined: true}
}

// Undefined is the "no data" metric.
var Undefined = Metric{}

// Ratio returns 100*num/den, undefined when den is zero.
func Ratio(num, den int) Metric {
	if den == 0 {
		return Undefined
	}
	return Defined(100 * float64(num) / float64(den))
}

func (m Metric) Get() (float64, bool) { return m.value, m.defined }

func (m Metric) IsDefined() bool { return m.defined }

// Require returns the value or ErrInsufficientData.
func (m Metric) Require() (float64, error) {
	if !m.defined {
		return 0, ErrInsufficientData
	}
	return m.value, nil
}

// Sub is m - o, undefined if either side is.
func (m Metric) Sub(o Metric) Metric {
	if !m.defined || !o.defined {
		return Undefined
	}
	return Defined(m.value - o.value)
}

// Round returns m rounded to the given number of decimals.
func (m Metric) Round(places int) Metric {
	if !m.defined {
		return m
	}
	return Defined(round(m.value, places))
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.defined {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, m.value, 'f', -1, 64), nil
}

func (m *Metric) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Undefined
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*m = Defined(v)
	return nil
}

func (m Metric) String() string {
	if !m.defined {
		return "n/a"
	}
	return strconv.FormatFloat(m.value, 'f', 2, 64)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
