package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"pulsegrid/adapters/excel"
	"pulsegrid/app"
	"pulsegrid/domain/core"
	"pulsegrid/domain/series"
	"pulsegrid/engine/anomaly"
	"pulsegrid/engine/causality"
	"pulsegrid/engine/forecast"
	"pulsegrid/internal/brief"
	"pulsegrid/internal/metrics"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pulsegrid-cli",
		Short: "PulseGrid CLI for one-shot analysis of indicator workbooks",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newForecastCmd(),
		newRiskCmd(),
		newBriefCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadCountry reads a workbook and pulls out one country's indicator bundle.
func loadCountry(filePath, country string) (core.CountryCode, map[core.IndicatorKey]series.TimeSeries, error) {
	code, err := core.ParseCountryCode(country)
	if err != nil {
		return "", nil, err
	}
	reader := excel.NewDataReader(filePath)
	bundle, err := reader.ReadBundle()
	if err != nil {
		return "", nil, err
	}
	data, ok := bundle[code]
	if !ok {
		countries := make([]string, 0, len(bundle))
		for c := range bundle {
			countries = append(countries, c.String())
		}
		sort.Strings(countries)
		return "", nil, fmt.Errorf("country %s not in workbook (have: %v)", code, countries)
	}
	return code, data, nil
}

func newService() *app.AnalysisService {
	return app.NewAnalysisService(metrics.Nop{}, app.EngineDefaults{
		Forecast:  forecast.DefaultConfig(),
		Anomaly:   anomaly.Config{}.Normalize(),
		Causality: causality.Config{}.Normalize(),
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newAnalyzeCmd() *cobra.Command {
	var country string

	cmd := &cobra.Command{
		Use:   "analyze [workbook]",
		Short: "Run the full dashboard analysis for one country",
		Long: `Run every analysis over a country's indicators and print the report as JSON.

Example: pulsegrid-cli analyze indicators.xlsx --country USA`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, data, err := loadCountry(args[0], country)
			if err != nil {
				return err
			}
			report, err := newService().BuildDashboard(cmd.Context(), code, data)
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "ISO country code (required)")
	_ = cmd.MarkFlagRequired("country")

	return cmd
}

func newForecastCmd() *cobra.Command {
	var country string
	var indicator string
	var horizon int
	var alpha, beta float64
	var confidence int

	cmd := &cobra.Command{
		Use:   "forecast [workbook]",
		Short: "Project one indicator forward with double exponential smoothing",
		Long: `Fit a level-and-trend smoother to one indicator and print the projection.

Example: pulsegrid-cli forecast indicators.xlsx --country USA --indicator NY.GDP.MKTP.KD.ZG --horizon 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, data, err := loadCountry(args[0], country)
			if err != nil {
				return err
			}
			ts, ok := data[core.IndicatorKey(indicator)]
			if !ok {
				return fmt.Errorf("indicator %s not present for %s", indicator, country)
			}
			cfg := forecast.Config{Alpha: alpha, Beta: beta, Horizon: horizon, ConfidenceLevel: confidence}
			result, err := forecast.New(metrics.Nop{}).Run(ts, cfg)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "ISO country code (required)")
	cmd.Flags().StringVar(&indicator, "indicator", core.IndicatorGDPGrowth.String(), "Indicator key")
	cmd.Flags().IntVar(&horizon, "horizon", 5, "Years to project forward")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.3, "Level smoothing factor")
	cmd.Flags().Float64Var(&beta, "beta", 0.1, "Trend smoothing factor")
	cmd.Flags().IntVar(&confidence, "confidence", 95, "Confidence level (90, 95, or 99)")
	_ = cmd.MarkFlagRequired("country")

	return cmd
}

func newRiskCmd() *cobra.Command {
	var country string

	cmd := &cobra.Command{
		Use:   "risk [workbook]",
		Short: "Score the composite recession risk timeline for one country",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, data, err := loadCountry(args[0], country)
			if err != nil {
				return err
			}
			timeline, err := newService().Scorer().Score(code, data)
			if err != nil {
				return err
			}
			return printJSON(timeline)
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "ISO country code (required)")
	_ = cmd.MarkFlagRequired("country")

	return cmd
}

func newBriefCmd() *cobra.Command {
	var country string
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "brief [workbook]",
		Short: "Write the markdown intelligence brief for one country to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, data, err := loadCountry(args[0], country)
			if err != nil {
				return err
			}
			report, err := newService().BuildDashboard(cmd.Context(), code, data)
			if err != nil {
				return err
			}
			doc := brief.Build(report)
			if asHTML {
				_, err = os.Stdout.Write(brief.RenderHTML(doc))
				return err
			}
			_, err = fmt.Print(doc)
			return err
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "ISO country code (required)")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render the brief to HTML")
	_ = cmd.MarkFlagRequired("country")

	return cmd
}
