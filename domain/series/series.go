package series

import (
	"encoding/json"
	"math"
	"sort"
)

// TimePoint is a single annual observation. A missing value is carried as NaN
// internally and serialized as JSON null, so a fetched-but-empty year survives
// the wire without inventing a zero.
type TimePoint struct {
	Year  int
	Value float64
}

// Missing reports whether the point carries no usable value (null or non-finite).
func (p TimePoint) Missing() bool {
	return math.IsNaN(p.Value) || math.IsInf(p.Value, 0)
}

// MissingPoint builds a placeholder observation for a year with no data.
func MissingPoint(year int) TimePoint {
	return TimePoint{Year: year, Value: math.NaN()}
}

type timePointJSON struct {
	Year  int      `json:"year"`
	Value *float64 `json:"value"`
}

// MarshalJSON emits {"year": y, "value": v|null}.
func (p TimePoint) MarshalJSON() ([]byte, error) {
	out := timePointJSON{Year: p.Year}
	if !p.Missing() {
		v := p.Value
		out.Value = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts null values and maps them to missing points.
func (p *TimePoint) UnmarshalJSON(data []byte) error {
	var in timePointJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	p.Year = in.Year
	if in.Value == nil {
		p.Value = math.NaN()
	} else {
		p.Value = *in.Value
	}
	return nil
}

// TimeSeries is an ordered sequence of annual points, strictly increasing by
// year. The upstream pipeline interpolates interior gaps before handing a
// series to the engine, but every consumer still filters defensively.
type TimeSeries []TimePoint

// Valid returns the observed points only, dropping missing and non-finite
// values while preserving chronological order.
func (s TimeSeries) Valid() TimeSeries {
	out := make(TimeSeries, 0, len(s))
	for _, p := range s {
		if !p.Missing() {
			out = append(out, p)
		}
	}
	return out
}

// Values extracts the raw values of the series (missing points included).
func (s TimeSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Years extracts the year axis of the series.
func (s TimeSeries) Years() []int {
	out := make([]int, len(s))
	for i, p := range s {
		out[i] = p.Year
	}
	return out
}

// ValueAt looks up the observed value for a year. The second return is false
// when the year is absent or missing.
func (s TimeSeries) ValueAt(year int) (float64, bool) {
	for _, p := range s {
		if p.Year == year {
			if p.Missing() {
				return 0, false
			}
			return p.Value, true
		}
	}
	return 0, false
}

// Sorted returns a copy ordered by ascending year. Input series are expected
// to arrive ordered; this is the defensive path for ad hoc callers.
func (s TimeSeries) Sorted() TimeSeries {
	out := make(TimeSeries, len(s))
	copy(out, s)
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// FromPairs builds a series from parallel year/value slices.
func FromPairs(years []int, values []float64) TimeSeries {
	n := len(years)
	if len(values) < n {
		n = len(values)
	}
	out := make(TimeSeries, n)
	for i := 0; i < n; i++ {
		out[i] = TimePoint{Year: years[i], Value: values[i]}
	}
	return out
}

// AlignedPair holds two series intersected on the years where both carry an
// observed value. Lag-based analysis indexes into Xs/Ys positionally.
type AlignedPair struct {
	Years []int
	Xs    []float64
	Ys    []float64
}

// Len returns the number of aligned observations.
func (a AlignedPair) Len() int { return len(a.Years) }

// Align intersects two series on shared years where both values are present
// and finite. The result is ordered by ascending year.
func Align(x, y TimeSeries) AlignedPair {
	byYear := make(map[int]float64, len(y))
	for _, p := range y.Valid() {
		byYear[p.Year] = p.Value
	}

	pair := AlignedPair{}
	for _, p := range x.Valid().Sorted() {
		yv, ok := byYear[p.Year]
		if !ok {
			continue
		}
		pair.Years = append(pair.Years, p.Year)
		pair.Xs = append(pair.Xs, p.Value)
		pair.Ys = append(pair.Ys, yv)
	}
	return pair
}

// Named couples a series with the label it is charted under.
type Named struct {
	Label  string     `json:"label"`
	Series TimeSeries `json:"series"`
}

// UnionYears returns the sorted union of observed years across several series.
func UnionYears(all ...TimeSeries) []int {
	seen := make(map[int]struct{})
	for _, s := range all {
		for _, p := range s.Valid() {
			seen[p.Year] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
