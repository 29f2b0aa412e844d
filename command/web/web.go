package web

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"airtraffic-stats/connectors/cache"
	ccfg "airtraffic-stats/connectors/config"
	"airtraffic-stats/connectors/datagouv"
	dconfig "airtraffic-stats/domain/config"
	"airtraffic-stats/domain/dataset"
	"airtraffic-stats/domain/traffic"
)

// Run starts the Echo web server exposing the dashboard JSON API. The dataset
// is loaded once at startup (downloaded on a cold cache) and every request
// recomputes its tables from that immutable snapshot, so concurrent requests
// never observe partial state.
//
// Usage:
//
//	airtraffic-stats web [-addr :8080] [-ui ./ui/dist]
//
// Endpoints (all accept year_min, year_max, countries, nationality, metric):
//
//	GET /api/meta        -> years, countries, metric options, events
//	GET /api/rows        -> filtered rows (limit=N, default 100)
//	GET /api/kpis        -> overview headline figures
//	GET /api/timeseries  -> yearly series for the metric
//	GET /api/regions     -> country ranking for the metric
//	GET /api/seasonality -> year x month matrix (agg=sum|mean, last=N)
//	GET /api/carriers    -> top-N French carriers and their yearly series
//	GET /api/recovery    -> recovery vs baseline for top-N carriers
func Run(args []string) error {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	addr := fs.String("addr", ":8080", "http listen address (host:port)")
	uiDir := fs.String("ui", "./ui/dist", "directory containing built UI (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := ccfg.LoadOrDefault(ccfg.Path())
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
		return fmt.Errorf("web: failed to load dataset: %w", err)
	}
	s := &server{
		frame: traffic.EnsureYearMonth(raw.Normalize()),
		cfg:   cfg,
	}

	e := echo.New()
	e.GET("/api/meta", s.meta)
	e.GET("/api/rows", s.rows)
	e.GET("/api/kpis", s.kpis)
	e.GET("/api/timeseries", s.timeseries)
	e.GET("/api/regions", s.regions)
	e.GET("/api/seasonality", s.seasonality)
	e.GET("/api/carriers", s.carriers)
	e.GET("/api/recovery", s.recovery)

	// Static UI (optional), with SPA fallback for non-API routes.
	indexPath := filepath.Join(*uiDir, "index.html")
	if fi, err := os.Stat(indexPath); err == nil && !fi.IsDir() {
		e.Static("/", *uiDir)
		e.GET("/", func(c echo.Context) error { return c.File(indexPath) })
		e.HTTPErrorHandler = func(err error, c echo.Context) {
			if he, ok := err.(*echo.HTTPError); ok && he.Code == http.StatusNotFound {
				if !strings.HasPrefix(c.Request().URL.Path, "/api") {
					_ = c.File(indexPath)
					return
				}
			}
			e.DefaultHTTPErrorHandler(err, c)
		}
	}

	slog.Info("web.listen", "addr", *addr, "rows", s.frame.Rows())
	return e.Start(*addr)
}

type server struct {
	frame *dataset.Frame // normalized, year/month derived; never mutated
	cfg   *dconfig.Config
}

// selection is the per-request view of the dataset: filters applied and the
// metric resolved (derived when needed).
type selection struct {
	frame  *dataset.Frame
	metric string
}

func (s *server) prepare(c echo.Context) (selection, error) {
	metric := c.QueryParam("metric")
	if metric == "" {
		metric = s.cfg.Analysis.DefaultMetric
	}
	f := traffic.DeriveMetric(s.frame, metric)

	filters := traffic.Filters{Nationality: c.QueryParam("nationality")}
	minStr, maxStr := c.QueryParam("year_min"), c.QueryParam("year_max")
	if (minStr == "") != (maxStr == "") {
		return selection{}, echo.NewHTTPError(http.StatusBadRequest, "year_min and year_max must be provided together")
	}
	if minStr != "" {
		min, err := strconv.Atoi(minStr)
		if err != nil {
			return selection{}, echo.NewHTTPError(http.StatusBadRequest, "invalid year_min")
		}
		max, err := strconv.Atoi(maxStr)
		if err != nil {
			return selection{}, echo.NewHTTPError(http.StatusBadRequest, "invalid year_max")
		}
		filters.YearMin = &min
		filters.YearMax = &max
	}
	if cs := c.QueryParam("countries"); cs != "" {
		filters.Countries = lo.Map(strings.Split(cs, ","), func(s string, _ int) string {
			return strings.TrimSpace(s)
		})
	}
	return selection{frame: filters.Apply(f), metric: traffic.ResolveMetric(f, metric)}, nil
}

func (s *server) intParam(c echo.Context, name string, def int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return n, nil
}

func (s *server) meta(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"years":          traffic.Years(s.frame),
		"countries":      traffic.Countries(s.frame),
		"metrics":        traffic.MetricOptions(s.frame),
		"nationalities":  []string{traffic.NationalityFrench, traffic.NationalityForeign},
		"default_metric": s.cfg.Analysis.DefaultMetric,
		"baseline_year":  s.cfg.Analysis.BaselineYear,
		"events":         s.cfg.Events,
	})
}

func (s *server) rows(c echo.Context) error {
	sel, err := s.prepare(c)
	if err != nil {
		return err
	}
	limit, err := s.intParam(c, "limit", 100)
	if err != nil {
		return err
	}
	n := sel.frame.Rows()
	shown := n
	if limit > 0 && shown > limit {
		shown = limit
	}
	rows := make([]map[string]any, shown)
	for i := 0; i < shown; i++ {
		rows[i] = sel.frame.RowMap(i)
	}
	return c.JSON(http.StatusOK, map[string]any{"count": n, "rows": rows})
}

func (s *server) kpis(c echo.Context) error {
	sel, err := s.prepare(c)
	if err != nil {
		return err
	}
	series := traffic.TimeSeries(sel.frame, sel.metric, traffic.ReduceSum)
	regions := traffic.Ranking(sel.frame, traffic.ColCountry, sel.metric, traffic.ReduceSum)
	return c.JSON(http.StatusOK, traffic.Overview(sel.frame, series, regions))
}

func (s *server) timeseries(c echo.Context) error {
	sel, err := s.prepare(c)
	if err != nil {
		return err
	}
	series := traffic.TimeSeries(sel.frame, sel.metric, traffic.ReduceSum)
	return c.JSON(http.StatusOK, map[string]any{"metric": sel.metric, "series": series})
}

func (s *server) regions(c echo.Context) error {
	sel, err := s.prepare(c)
	if err != nil {
		return err
	}
	ranking := traffic.Ranking(sel.frame, traffic.ColCountry, sel.metric, traffic.ReduceSum,
		traffic.ColCountryEN, traffic.ColCountryISO3)
	return c.JSON(http.StatusOK, map[string]any{"metric": sel.metric, "ranking": ranking})
}

func (s *server) seasonality(c echo.Context) error {
	sel, err := s.prepare(c)
	if err != nil {
		return err
	}
	aggName := c.QueryParam("agg")
	if aggName == "" {
		aggName = "sum"
	}
	agg, err := traffic.ParseReduce(aggName)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	last, err := s.intParam(c, "last", 0)
	if err != nil {
		return err
	}
	m := traffic.Seasonality(sel.frame, sel.metric, agg, last)

	// All 12 month columns are always present; cells without data are null.
	months := make([]int, 12)
	for i := range months {
		months[i] = i + 1
	}
	years := m.Years
	if years == nil {
		years = []int{}
	}
	cells := make([][]*float64, len(m.Years))
	for i := range m.Years {
		row := make([]*float64, 12)
		for mo := 0; mo < 12; mo++ {
			if cell := m.Cells[i][mo]; cell.Valid {
				v := cell.Value
				row[mo] = &v
			}
		}
		cells[i] = row
	}
	return c.JSON(http.StatusOK, map[string]any{
		"metric": sel.metric,
		"agg":    aggName,
		"years":  years,
		"months": months,
		"cells":  cells,
	})
}

func (s *server) carriers(c echo.Context) error {
	sel, err := s.prepare(c)
	if err != nil {
		return err
	}
	topN, err := s.intParam(c, "top", s.cfg.Analysis.TopCarriers)
	if err != nil {
		return err
	}
	cohort := traffic.FrenchCohort(sel.frame)
	top := traffic.TopCarriers(cohort, sel.metric, topN)
	series := traffic.CarrierYearSeries(cohort, sel.metric,
		lo.Map(top, func(r traffic.RankingRow, _ int) string { return r.Label }))
	return c.JSON(http.StatusOK, map[string]any{
		"metric": sel.metric,
		"top":    top,
		"series": series,
	})
}

func (s *server) recovery(c echo.Context) error {
	sel, err := s.prepare(c)
	if err != nil {
		return err
	}
	topN, err := s.intParam(c, "top", s.cfg.Analysis.TopCarriers)
	if err != nil {
		return err
	}
	baseline, err := s.intParam(c, "baseline", s.cfg.Analysis.BaselineYear)
	if err != nil {
		return err
	}
	cohort := traffic.FrenchCohort(sel.frame)
	table, ok := traffic.Recovery(cohort, sel.metric, baseline)
	if !ok {
		return c.JSON(http.StatusOK, map[string]any{"metric": sel.metric, "records": []traffic.RecoveryRecord{}})
	}
	top := table.Top(topN)
	return c.JSON(http.StatusOK, map[string]any{
		"metric":        sel.metric,
		"baseline_year": table.BaselineYear,
		"latest_year":   table.LatestYear,
		"records":       top,
		"highlights":    traffic.HighlightsOf(top, 3),
	})
}
