// Package brief turns a dashboard report into a markdown intelligence brief.
// The document is plain engine output in prose-adjacent form; no free-text
// generation happens here.
package brief

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"pulsegrid/app"
)

// Build lays the report's summaries and insight lists out as markdown.
func Build(report *app.DashboardReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Economic Intelligence Brief — %s\n\n", report.Country)
	fmt.Fprintf(&b, "Generated %s · %d indicators\n\n", report.GeneratedAt.Format("2006-01-02"), len(report.Indicators))

	b.WriteString("## Indicators\n\n")
	for _, ind := range report.Indicators {
		fmt.Fprintf(&b, "- **%s**: mean %.2f, range [%.2f, %.2f], n=%d", ind.Key, ind.Summary.Mean, ind.Summary.Min, ind.Summary.Max, ind.Summary.Count)
		if ind.CAGR != nil {
			fmt.Fprintf(&b, ", CAGR %.2f%%", *ind.CAGR)
		}
		if ind.Anomalies != nil && len(ind.Anomalies.Anomalies) > 0 {
			fmt.Fprintf(&b, ", %d anomalous year(s)", len(ind.Anomalies.Anomalies))
		}
		b.WriteString("\n")
	}

	if report.Correlation != nil && len(report.Correlation.Insights) > 0 {
		b.WriteString("\n## Key Correlations\n\n")
		for _, ins := range report.Correlation.Insights {
			fmt.Fprintf(&b, "- %s\n", ins.Description)
		}
	}

	if report.Causality != nil && len(report.Causality.Insights) > 0 {
		b.WriteString("\n## Leading Relationships\n\n")
		for _, ins := range report.Causality.Insights {
			fmt.Fprintf(&b, "- %s\n", ins.Description)
		}
	}

	if report.Risk != nil {
		b.WriteString("\n## Recession Risk Outlook\n\n")
		fmt.Fprintf(&b, "Current probability **%.0f%%** (trend %+.0f points, projected %.0f%%).\n\n",
			report.Risk.Latest*100, report.Risk.Trend*100, report.Risk.Projected*100)
		for _, alert := range report.Risk.Alerts {
			fmt.Fprintf(&b, "- %s\n", alert)
		}
	}
	return b.String()
}

// RenderHTML converts the markdown brief for embedding in the dashboard.
func RenderHTML(doc string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(doc), p, renderer)
}
