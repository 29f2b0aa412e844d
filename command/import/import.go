package cmdimport

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"airtraffic-stats/connectors/cache"
	ccfg "airtraffic-stats/connectors/config"
	"airtraffic-stats/connectors/datagouv"
	"airtraffic-stats/domain/dataset"
)

// Run executes the import subcommand: download the upstream archive, decide
// the column types and store the snapshot locally. With a warm cache it does
// nothing unless -force is given.
func Run(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	url := fs.String("url", "", "dataset resource URL (default from config)")
	cachePath := fs.String("cache", "", "cache file path (default from config)")
	force := fs.Bool("force", false, "re-download even when a cached snapshot exists")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := ccfg.LoadOrDefault(ccfg.Path())
	if *url == "" {
		*url = cfg.Dataset.ResourceURL
	}
	if *cachePath == "" {
		*cachePath = cfg.Dataset.CachePath
	}

	slog.Info("import.start", "url", *url, "cache", *cachePath, "force", *force)

	store := cache.NewStore(*cachePath)
	client := datagouv.NewClient(*url)
	ctx := context.Background()

	fetch := func() (*dataset.Frame, error) {
		raw, err := client.Fetch(ctx)
		if err != nil {
			slog.Error("phase.fetch.error", "url", *url, "error", err)
			return nil, err
		}
		return raw.Normalize(), nil
	}

	var f *dataset.Frame
	var err error
	if *force {
		f, err = fetch()
		if err == nil {
			err = store.Save(f)
		}
	} else {
		f, err = store.GetOrRefresh(fetch)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		return err
	}
	f = f.Normalize()

	slog.Info("import.done", "rows", f.Rows(), "columns", len(f.Columns()), "numeric", len(f.NumericColumns()))
	return nil
}
