package services

import "math"

// ToMinorUnits converts a rupee amount to paise, rounding half away from zero.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
