package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ColumnProfile summarizes one numeric column for the column selector and
// the distribution chart annotations.
type ColumnProfile struct {
	Column       string  `json:"column"`
	SampleSize   int     `json:"sample_size"`
	MissingCount int     `json:"missing_count"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Median       float64 `json:"median"`
	Q25          float64 `json:"q25"`
	Q75          float64 `json:"q75"`
	Skewness     float64 `json:"skewness"`
	Kurtosis     float64 `json:"kurtosis"`
	IsNormal     bool    `json:"is_normal"`
	NormalityP   float64 `json:"normality_p"`
	OutlierCount int     `json:"outlier_count"`
	ZeroVariance bool    `json:"zero_variance"`
}

// Profile computes the summary for a coerced numeric column. missingCount is
// the number of cells the coercion excluded upstream.
func Profile(column string, data []float64, missingCount int) (ColumnProfile, error) {
	profile := ColumnProfile{
		Column:       column,
		SampleSize:   len(data),
		MissingCount: missingCount,
	}
	if len(data) == 0 {
		return profile, nil
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return profile, err
	}
	// A single observation has no sample deviation; the library reports NaN
	// for it without an error, and NaN would poison the JSON encoding.
	stdDev := 0.0
	if len(data) > 1 {
		stdDev, err = stats.StandardDeviationSample(data)
		if err != nil {
			return profile, err
		}
	}
	min, err := stats.Min(data)
	if err != nil {
		return profile, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return profile, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return profile, err
	}

	profile.Mean = mean
	profile.StdDev = stdDev
	profile.Min = min
	profile.Max = max
	profile.Median = median
	profile.ZeroVariance = stdDev < 1e-10

	if q25, err := stats.Percentile(data, 25); err == nil {
		profile.Q25 = q25
	}
	if q75, err := stats.Percentile(data, 75); err == nil {
		profile.Q75 = q75
	}
	profile.OutlierCount = countOutliers(data, profile.Q25, profile.Q75)

	profile.Skewness = sampleSkewness(data, mean, stdDev)
	profile.Kurtosis = sampleKurtosis(data, mean, stdDev)
	profile.IsNormal, profile.NormalityP = testNormality(profile.Skewness, profile.Kurtosis, len(data))

	return profile, nil
}

// sampleSkewness computes the adjusted Fisher-Pearson coefficient
func sampleSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubed := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sumCubed += d * d * d
	}

	skewness := sumCubed / n
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}

// sampleKurtosis computes total (not excess) sample kurtosis
func sampleKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumFourth := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sumFourth += d * d * d * d
	}

	kurtosis := sumFourth / n
	excess := kurtosis - 3
	correction := (n - 1) / ((n - 2) * (n - 3))
	excess = excess*correction + 6/(n+1)
	return excess + 3
}

// testNormality approximates a skewness/kurtosis normality check. A rough
// chi-square p-value is good enough to annotate the comparison curve; this is
// not a substitute for a proper Shapiro-Wilk test.
func testNormality(skewness, kurtosis float64, n int) (isNormal bool, pValue float64) {
	if n < 3 {
		return false, 1.0
	}

	testStat := math.Abs(skewness) + math.Abs(kurtosis-3)/2
	chiDist := distuv.ChiSquared{K: 2}
	pValue = 1 - chiDist.CDF(testStat*testStat)

	return pValue > 0.05, pValue
}

// countOutliers applies the 1.5 IQR rule
func countOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lower := q25 - 1.5*iqr
	upper := q75 + 1.5*iqr

	count := 0
	for _, x := range data {
		if x < lower || x > upper {
			count++
		}
	}
	return count
}
