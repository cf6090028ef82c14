package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pulsegrid/domain/core"
	"pulsegrid/domain/series"
	"pulsegrid/engine/risk"
	"pulsegrid/ports"
)

// seriesRepository is the in-memory SeriesRepository used when the server
// runs without a database. Safe for concurrent handlers.
type seriesRepository struct {
	mu        sync.RWMutex
	bundles   map[core.CountryCode]map[core.IndicatorKey]series.TimeSeries
	timelines []*risk.Timeline
}

// NewSeriesRepository creates an empty in-memory repository.
func NewSeriesRepository() ports.SeriesRepository {
	return &seriesRepository{
		bundles: make(map[core.CountryCode]map[core.IndicatorKey]series.TimeSeries),
	}
}

// NewSeriesRepositoryFromBundle seeds the repository from an imported bundle.
func NewSeriesRepositoryFromBundle(bundle map[core.CountryCode]map[core.IndicatorKey]series.TimeSeries) ports.SeriesRepository {
	repo := &seriesRepository{bundles: make(map[core.CountryCode]map[core.IndicatorKey]series.TimeSeries)}
	for country, indicators := range bundle {
		repo.bundles[country] = make(map[core.IndicatorKey]series.TimeSeries, len(indicators))
		for key, ts := range indicators {
			repo.bundles[country][key] = ts
		}
	}
	return repo
}

func (r *seriesRepository) SaveSeries(_ context.Context, country core.CountryCode, indicator core.IndicatorKey, s series.TimeSeries) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bundles[country] == nil {
		r.bundles[country] = make(map[core.IndicatorKey]series.TimeSeries)
	}
	stored := make(series.TimeSeries, len(s))
	copy(stored, s)
	r.bundles[country][indicator] = stored.Sorted()
	return nil
}

func (r *seriesRepository) GetSeries(_ context.Context, country core.CountryCode, indicator core.IndicatorKey) (series.TimeSeries, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ts, ok := r.bundles[country][indicator]
	if !ok {
		return nil, core.NewNotFoundError("series", fmt.Sprintf("%s/%s", country, indicator))
	}
	out := make(series.TimeSeries, len(ts))
	copy(out, ts)
	return out, nil
}

func (r *seriesRepository) ListIndicators(_ context.Context, country core.CountryCode) ([]core.IndicatorKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]core.IndicatorKey, 0, len(r.bundles[country]))
	for k := range r.bundles[country] {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, nil
}

func (r *seriesRepository) ListCountries(_ context.Context) ([]core.CountryCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]core.CountryCode, 0, len(r.bundles))
	for c := range r.bundles {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes, nil
}

func (r *seriesRepository) SaveRiskTimeline(_ context.Context, timeline *risk.Timeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timelines = append(r.timelines, timeline)
	return nil
}
