package calculate

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"airtraffic-stats/connectors/cache"
	ccfg "airtraffic-stats/connectors/config"
	ccsv "airtraffic-stats/connectors/csv"
	"airtraffic-stats/connectors/datagouv"
	"airtraffic-stats/domain/dataset"
	"airtraffic-stats/domain/traffic"
)

// Run executes the calculate subcommand: load the cached dataset (downloading
// it on a cold cache), run the preparation and aggregation pipeline for the
// selected filters and metric, and write the resulting tables under data/.
func Run(args []string) error {
	fs := flag.NewFlagSet("calculate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	metric := fs.String("metric", "", "metric column to aggregate (default from config)")
	aggName := fs.String("agg", "sum", "reduction for the seasonality matrix: sum or mean")
	yearMin := fs.Int("year-min", 0, "lower bound of the year range (use with -year-max)")
	yearMax := fs.Int("year-max", 0, "upper bound of the year range (use with -year-min)")
	countries := fs.String("countries", "", "comma-separated list of carrier countries to keep")
	nationality := fs.String("nationality", "", "carrier nationality to keep: F or E")
	baseline := fs.Int("baseline", 0, "baseline year for the recovery analysis (default from config)")
	topN := fs.Int("top", 0, "number of carriers in comparison and recovery tables (default from config)")
	lastN := fs.Int("last", 0, "limit the seasonality matrix to the last N years (0 = all)")
	outDir := fs.String("out", "data", "output directory for the CSV tables")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*yearMin == 0) != (*yearMax == 0) {
		return fmt.Errorf("calculate: -year-min and -year-max must be used together")
	}
	agg, err := traffic.ParseReduce(*aggName)
	if err != nil {
		return fmt.Errorf("calculate: %w", err)
	}

	cfg := ccfg.LoadOrDefault(ccfg.Path())
	if *metric == "" {
		*metric = cfg.Analysis.DefaultMetric
	}
	if *baseline == 0 {
		*baseline = cfg.Analysis.BaselineYear
	}
	if *topN == 0 {
		*topN = cfg.Analysis.TopCarriers
	}

	slog.Info("calculate.start", "metric", *metric, "agg", *aggName, "baseline", *baseline)

	store := cache.NewStore(cfg.Dataset.CachePath)
	client := datagouv.NewClient(cfg.Dataset.ResourceURL)
	raw, err := store.GetOrRefresh(func() (*dataset.Frame, error) {
		f, err := client.Fetch(context.Background())
		if err != nil {
			return nil, err
		}
		return f.Normalize(), nil
	})
	if err != nil {
		slog.Error("phase.load.error", "error", err)
		return err
	}

	f := traffic.EnsureYearMonth(raw.Normalize())
	f = traffic.DeriveMetric(f, *metric)
	metricCol := traffic.ResolveMetric(f, *metric)
	if metricCol == "" {
		return fmt.Errorf("calculate: no numeric metric available in dataset")
	}
	if metricCol != *metric {
		slog.Warn("calculate.metric.fallback", "requested", *metric, "using", metricCol)
	}

	filters := traffic.Filters{Nationality: *nationality}
	if *yearMin != 0 {
		filters.YearMin = yearMin
		filters.YearMax = yearMax
	}
	if *countries != "" {
		filters.Countries = lo.Map(strings.Split(*countries, ","), func(s string, _ int) string {
			return strings.TrimSpace(s)
		})
	}
	filtered := filters.Apply(f)
	slog.Info("calculate.filtered", "rows", filtered.Rows())

	series := traffic.TimeSeries(filtered, metricCol, traffic.ReduceSum)
	regions := traffic.Ranking(filtered, traffic.ColCountry, metricCol, traffic.ReduceSum,
		traffic.ColCountryEN, traffic.ColCountryISO3)
	matrix := traffic.Seasonality(filtered, metricCol, agg, *lastN)

	cohort := traffic.FrenchCohort(filtered)
	top := traffic.TopCarriers(cohort, metricCol, *topN)
	carrierSeries := traffic.CarrierYearSeries(cohort, metricCol,
		lo.Map(top, func(r traffic.RankingRow, _ int) string { return r.Label }))

	if err := ccsv.WriteTimeSeries(filepath.Join(*outDir, "timeseries.csv"), metricCol, series); err != nil {
		return fmt.Errorf("failed to write timeseries: %w", err)
	}
	if err := ccsv.WriteRanking(filepath.Join(*outDir, "by_region.csv"), traffic.ColCountry, metricCol, regions,
		traffic.ColCountryEN, traffic.ColCountryISO3); err != nil {
		return fmt.Errorf("failed to write regions: %w", err)
	}
	if err := ccsv.WriteSeasonality(filepath.Join(*outDir, "seasonality.csv"), matrix); err != nil {
		return fmt.Errorf("failed to write seasonality: %w", err)
	}
	if err := ccsv.WriteRanking(filepath.Join(*outDir, "top_carriers.csv"), "carrier", metricCol, top); err != nil {
		return fmt.Errorf("failed to write carriers: %w", err)
	}
	if err := ccsv.WriteCarrierSeries(filepath.Join(*outDir, "carrier_years.csv"), metricCol, carrierSeries); err != nil {
		return fmt.Errorf("failed to write carrier series: %w", err)
	}

	if recovery, ok := traffic.Recovery(cohort, metricCol, *baseline); ok {
		recovery.Records = recovery.Top(*topN)
		if err := ccsv.WriteRecovery(filepath.Join(*outDir, "recovery.csv"), recovery); err != nil {
			return fmt.Errorf("failed to write recovery: %w", err)
		}
		slog.Info("calculate.recovery", "baseline", recovery.BaselineYear, "latest", recovery.LatestYear, "carriers", len(recovery.Records))
	} else {
		slog.Warn("calculate.recovery.skipped", "reason", "insufficient yearly data")
	}

	slog.Info("calculate.done", "out", *outDir, "years", len(series), "regions", len(regions))
	return nil
}
