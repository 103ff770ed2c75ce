// Package numfmt holds the numeric formatting helpers shared by table
// generation and report narratives.
package numfmt

import (
	"fmt"
	"math"
)

// NC is reported wherever a statistic cannot be calculated.
const NC = "NC"

// MeanCV formats values as "<mean> (<cv>)" where CV% is derived from the
// population standard deviation (divide by N). Returns NC for empty input.
func MeanCV(values []float64) string {
	if len(values) == 0 {
		return NC
	}
	m := mean(values)
	sd := math.Sqrt(sumSquares(values, m) / float64(len(values)))
	cv := 0.0
	if m != 0 {
		cv = sd / m * 100
	}
	return fmt.Sprintf("%.2f (%.1f)", m, cv)
}

// MeanSD formats values as "<mean> ± <sd>" using the sample standard
// deviation (divide by N-1). Returns NC for empty input.
func MeanSD(values []float64) string {
	if len(values) == 0 {
		return NC
	}
	m := mean(values)
	sd := 0.0
	if len(values) > 1 {
		sd = math.Sqrt(sumSquares(values, m) / float64(len(values)-1))
	}
	return fmt.Sprintf("%.2f ± %.2f", m, sd)
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sumSquares(values []float64, m float64) float64 {
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum
}
