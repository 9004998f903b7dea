package domain

import (
	"fmt"
	"math"
)

// Money is an amount in minor currency units (paise for INR).
type Money int64

func MoneyFromMajor(major float64) Money {
	return Money(math.Round(major * 100))
}

func (m Money) Major() float64 {
	return float64(m) / 100
}

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}

	return fmt.Sprintf("%s₹%d.%02d", sign, v/100, v%100)
}
