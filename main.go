package main

import (
	"fmt"
	"log/slog"
	"os"

	cmdcalculate "airtraffic-stats/command/calculate"
	cmdimport "airtraffic-stats/command/import"
	cmdweb "airtraffic-stats/command/web"
)

// Analytics service over the French monthly air-traffic-by-carrier dataset
// (ASP_CIE, data.gouv.fr, 2010-2024).
// Usage:
//   airtraffic-stats import [-url <resource>] [-cache <path>] [-force]
//   airtraffic-stats calculate [-metric CIE_PAX] [-agg sum] [-year-min 2019 -year-max 2024] ...
//   airtraffic-stats web [-addr :8080]
// Notes:
// - import downloads the upstream ZIP, types the columns and caches a CSV snapshot.
// - calculate writes the aggregated tables (timeseries, regions, seasonality,
//   carrier comparison, recovery vs baseline) under data/.
// - web serves the same tables as a JSON API, recomputed per request.

func main() {
	args := os.Args
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h))

	if len(args) > 1 {
		sub := args[1]
		rest := append([]string{}, args[2:]...)
		switch sub {
		case "import":
			if err := cmdimport.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		case "calculate":
			if err := cmdcalculate.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		case "web":
			if err := cmdweb.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: airtraffic-stats import [-force] | calculate [-metric <col>] [-agg sum|mean] | web [-addr :8080]\nENV: set CONFIG_PATH to point to a YAML config file (default ./config.yml)")
	os.Exit(2)
}
