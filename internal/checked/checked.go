package checked

import "math"

// Add returns a+b and false if the sum overflows int64.
func Add(a, b int64) (int64, bool) {
	c := a + b
	if (c > a) != (b > 0) {
		return c, false
	}
	return c, true
}

// Sub returns a-b and false if the difference overflows int64.
func Sub(a, b int64) (int64, bool) {
	c := a - b
	if (c < a) != (b > 0) {
		return c, false
	}
	return c, true
}

// Mul returns a*b and false if the product overflows int64.
func Mul(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return c, false
	}
	if c/b != a {
		return c, false
	}
	return c, true
}

// Neg returns -a and false for math.MinInt64.
func Neg(a int64) (int64, bool) {
	if a == math.MinInt64 {
		return a, false
	}
	return -a, true
}

// FloorDiv divides rounding toward negative infinity. b must not be zero.
func FloorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FloorMod is the remainder matching FloorDiv; it has the sign of b.
func FloorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}
