package causality

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"pulsegrid/domain/series"
	"pulsegrid/internal/metrics"
)

const maxMatrixInsights = 8

// Cell is one directed entry of the causality matrix: row label as candidate
// cause, column label as candidate effect. A nil cell means the pair did not
// have enough aligned observations. The matrix is not symmetric.
type Cell struct {
	Causal  bool    `json:"causal"`
	BestLag int     `json:"best_lag"`
	FStat   float64 `json:"f_stat"`
	PValue  float64 `json:"p_value"`
}

// MatrixInsight is one ranked causal finding surfaced to the dashboard.
type MatrixInsight struct {
	Cause       string  `json:"cause"`
	Effect      string  `json:"effect"`
	Lag         int     `json:"lag"`
	PValue      float64 `json:"p_value"`
	Severity    string  `json:"severity"` // "strong" (p<0.01) | "significant" (p<0.05)
	Description string  `json:"description"`
}

// MatrixResult is the full pairwise causality matrix plus its insight list.
type MatrixResult struct {
	Labels   []string        `json:"labels"`
	Cells    [][]*Cell       `json:"cells"`
	Insights []MatrixInsight `json:"insights"`
}

// BuildMatrix runs the directed Granger test for every ordered pair (i→j).
// Each pairwise test only reads its two input series, so the cells are fanned
// out across workers. Diagonal cells are marked non-causal by convention.
func (t *Tester) BuildMatrix(ctx context.Context, datasets []series.Named, cfg Config) *MatrixResult {
	cfg = cfg.Normalize()
	n := len(datasets)
	m := &MatrixResult{
		Labels: make([]string, n),
		Cells:  make([][]*Cell, n),
	}
	for i, d := range datasets {
		m.Labels[i] = d.Label
		m.Cells[i] = make([]*Cell, n)
		m.Cells[i][i] = &Cell{Causal: false, PValue: 1}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			i, j := i, j
			g.Go(func() error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				res, err := t.Test(datasets[i].Series, datasets[j].Series, cfg)
				if err != nil {
					// Too little overlap for this pair: leave the cell null.
					return nil
				}
				t.rec.Inc(metrics.CounterCausalityCells)
				m.Cells[i][j] = &Cell{
					Causal:  res.Causal,
					BestLag: res.BestLag,
					FStat:   res.FStat,
					PValue:  res.PValue,
				}
				return nil
			})
		}
	}
	// The only error that can surface is context cancellation; a partial
	// matrix is still returned in that case.
	_ = g.Wait()

	m.Insights = rankInsights(m)
	return m
}

// rankInsights collects the significant directed pairs, sorted ascending by
// p-value and truncated to the top findings.
func rankInsights(m *MatrixResult) []MatrixInsight {
	insights := []MatrixInsight{}
	for i, row := range m.Cells {
		for j, cell := range row {
			if i == j || cell == nil || cell.PValue >= significanceLevel {
				continue
			}
			severity := "significant"
			if cell.PValue < 0.01 {
				severity = "strong"
			}
			insights = append(insights, MatrixInsight{
				Cause:    m.Labels[i],
				Effect:   m.Labels[j],
				Lag:      cell.BestLag,
				PValue:   cell.PValue,
				Severity: severity,
				Description: fmt.Sprintf("%s leads %s by %d year(s) (F=%.3f, p=%.4f)",
					m.Labels[i], m.Labels[j], cell.BestLag, cell.FStat, cell.PValue),
			})
		}
	}

	sort.SliceStable(insights, func(a, b int) bool {
		return insights[a].PValue < insights[b].PValue
	})
	if len(insights) > maxMatrixInsights {
		insights = insights[:maxMatrixInsights]
	}
	return insights
}
