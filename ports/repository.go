package ports

import (
	"context"

	"pulsegrid/domain/core"
	"pulsegrid/domain/series"
	"pulsegrid/engine/risk"
)

// SeriesRepository persists imported indicator series and computed risk
// timelines. Implementations: postgres, and an in-memory store for servers
// running without a database.
type SeriesRepository interface {
	SaveSeries(ctx context.Context, country core.CountryCode, indicator core.IndicatorKey, s series.TimeSeries) error
	GetSeries(ctx context.Context, country core.CountryCode, indicator core.IndicatorKey) (series.TimeSeries, error)
	ListIndicators(ctx context.Context, country core.CountryCode) ([]core.IndicatorKey, error)
	ListCountries(ctx context.Context) ([]core.CountryCode, error)
	SaveRiskTimeline(ctx context.Context, timeline *risk.Timeline) error
}

// BundleReader loads a full country→indicator→series bundle from an external
// source (Excel/CSV workbook, database dump).
type BundleReader interface {
	ReadBundle() (map[core.CountryCode]map[core.IndicatorKey]series.TimeSeries, error)
}
