package math

import (
	"errors"
	"math"
)

var (
	errZeroValue        = errors.New("cannot calculate with zero value")
	errMismatchedLength = errors.New("series lengths do not match")
	errNotEnoughPoints  = errors.New("not enough points to calculate")
)

// RoundFloat rounds your floating point number to the desired decimal place
func RoundFloat(x float64, prec int) float64 {
	pow := math.Pow(10, float64(prec))
	return math.Round(x*pow) / pow
}

// PercentageChange returns the relative movement from then to now, eg 0.02
// for a 2% rise
func PercentageChange(then, now float64) (float64, error) {
	if then == 0 {
		return 0, errZeroValue
	}
	return (now - then) / then, nil
}

// CompoundAnnualGrowthRate calculates CAGR as a ratio.
// Using days, intervals per year would be 365 and number of intervals would be the number of days
func CompoundAnnualGrowthRate(openValue, closeValue, intervalsPerYear, numberOfIntervals float64) (float64, error) {
	if openValue <= 0 || numberOfIntervals == 0 {
		return 0, errZeroValue
	}
	return math.Pow(closeValue/openValue, intervalsPerYear/numberOfIntervals) - 1, nil
}

// CalmarRatio compares the average return against the maximum drawdown
func CalmarRatio(highestPrice, lowestPrice, average float64) float64 {
	if highestPrice == 0 {
		return 0
	}
	drawdown := (highestPrice - lowestPrice) / highestPrice
	if drawdown == 0 {
		return 0
	}
	return average / drawdown
}

// ArithmeticAverage is the basic form of calculating an average.
// Divide the sum of all values by the length of values
func ArithmeticAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for x := range values {
		sum += values[x]
	}
	return sum / float64(len(values))
}

// PopulationStandardDeviation calculates standard deviation using population based calculation
func PopulationStandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	avg := ArithmeticAverage(values)
	var sumSquares float64
	for x := range values {
		d := values[x] - avg
		sumSquares += d * d
	}
	return math.Sqrt(sumSquares / float64(len(values)))
}

// SampleStandardDeviation measures the dispersion of a dataset relative to
// its mean using Bessel's correction
func SampleStandardDeviation(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	avg := ArithmeticAverage(values)
	var sumSquares float64
	for x := range values {
		d := values[x] - avg
		sumSquares += d * d
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}

// SharpeRatio returns the sharpe ratio of per-period returns against a
// per-period risk-free rate
func SharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) <= 1 {
		return 0
	}
	excess := make([]float64, len(returns))
	for i := range returns {
		excess[i] = returns[i] - riskFreeRate
	}
	sd := SampleStandardDeviation(excess)
	if sd == 0 {
		return 0
	}
	return ArithmeticAverage(excess) / sd
}

// SortinoRatio returns the sortino ratio of per-period returns, only
// penalising downside deviation
func SortinoRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var downside float64
	for x := range returns {
		if d := returns[x] - riskFreeRate; d < 0 {
			downside += d * d
		}
	}
	dd := math.Sqrt(downside / float64(len(returns)))
	if dd == 0 {
		return 0
	}
	return (ArithmeticAverage(returns) - riskFreeRate) / dd
}

// RMSE returns the root mean squared difference between two equal length series
func RMSE(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, errMismatchedLength
	}
	if len(a) == 0 {
		return 0, errNotEnoughPoints
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(a))), nil
}

// Correlation returns the Pearson correlation coefficient of two equal
// length series. Two identical series without variance are fully correlated,
// otherwise a series without variance has no correlation
func Correlation(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, errMismatchedLength
	}
	if len(a) < 2 {
		return 0, errNotEnoughPoints
	}
	meanA, meanB := ArithmeticAverage(a), ArithmeticAverage(b)
	var cov, varA, varB float64
	for i := range a {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		for i := range a {
			if a[i] != b[i] {
				return 0, nil
			}
		}
		return 1, nil
	}
	return cov / math.Sqrt(varA*varB), nil
}
