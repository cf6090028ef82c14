package profile

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"pulsegrid/domain/series"
)

// SeriesProfile summarizes the health and distribution shape of a single
// indicator series before it is fed into the engine proper.
type SeriesProfile struct {
	Count       int     `json:"count"`
	MissingRate float64 `json:"missing_rate"`
	FirstYear   int     `json:"first_year"`
	LastYear    int     `json:"last_year"`

	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`

	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	IsNormal bool    `json:"is_normal"`
	NormalP  float64 `json:"normal_p"`
}

// Analyze profiles an indicator series. Unlike the engine packages this layer
// leans on library summary statistics; only the core algorithms are
// hand-written.
func Analyze(s series.TimeSeries) (SeriesProfile, error) {
	valid := s.Valid()
	profile := SeriesProfile{Count: len(valid)}
	if len(s) > 0 {
		profile.MissingRate = float64(len(s)-len(valid)) / float64(len(s))
	}
	if len(valid) == 0 {
		return profile, nil
	}
	profile.FirstYear = valid[0].Year
	profile.LastYear = valid[len(valid)-1].Year

	data := valid.Values()
	var err error
	if profile.Mean, err = stats.Mean(data); err != nil {
		return profile, err
	}
	if profile.StdDev, err = stats.StandardDeviationSample(data); err != nil {
		profile.StdDev = 0
	}
	if profile.Min, err = stats.Min(data); err != nil {
		return profile, err
	}
	if profile.Max, err = stats.Max(data); err != nil {
		return profile, err
	}
	if profile.Median, err = stats.Median(data); err != nil {
		return profile, err
	}
	if q25, err := stats.Percentile(data, 25); err == nil {
		profile.Q25 = q25
	}
	if q75, err := stats.Percentile(data, 75); err == nil {
		profile.Q75 = q75
	}

	profile.Skewness = moment(data, profile.Mean, profile.StdDev, 3)
	profile.Kurtosis = moment(data, profile.Mean, profile.StdDev, 4) - 3

	profile.IsNormal, profile.NormalP = jarqueBera(data, profile.Skewness, profile.Kurtosis)
	return profile, nil
}

// moment computes the k-th standardized moment.
func moment(data []float64, mean, std float64, k int) float64 {
	if std == 0 || len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += math.Pow((v-mean)/std, float64(k))
	}
	return sum / float64(len(data))
}

// jarqueBera tests normality from skewness and excess kurtosis. The JB
// statistic is asymptotically chi-squared with 2 degrees of freedom.
func jarqueBera(data []float64, skewness, excessKurtosis float64) (bool, float64) {
	n := float64(len(data))
	if n < 8 {
		// The asymptotics are meaningless on tiny samples.
		return true, 1
	}
	jb := n / 6 * (skewness*skewness + excessKurtosis*excessKurtosis/4)
	chi2 := distuv.ChiSquared{K: 2}
	p := 1 - chi2.CDF(jb)
	return p > 0.05, p
}
