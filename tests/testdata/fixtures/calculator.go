package fixtures

import "errors"

// ErrDivideByZero is returned when the divisor is zero
var ErrDivideByZero = errors.New("divide by zero")

// Calculator accumulates a running total
type Calculator struct {
	total float64
}

// Add adds a value to the running total
func (c *Calculator) Add(v float64) float64 {
	c.total += v
	return c.total
}

// Divide divides the running total by v
func (c *Calculator) Divide(v float64) (float64, error) {
	if v == 0 {
		return 0, ErrDivideByZero
	}
	c.total /= v
	return c.total, nil
}

// Sum returns the sum of a slice of values
func Sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
