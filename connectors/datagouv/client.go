// Package datagouv fetches the ASP_CIE archive from data.gouv.fr and parses
// its CSV files into a raw frame. Column typing is not decided here; the
// caller normalizes the result.
package datagouv

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"airtraffic-stats/domain/dataset"
)

// Client downloads the dataset ZIP over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a client for the given resource URL.
func NewClient(url string) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Fetch downloads the archive and returns the combined raw frame.
func (c *Client) Fetch(ctx context.Context) (*dataset.Frame, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download dataset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset download failed: %d %s", resp.StatusCode, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset body: %w", err)
	}
	slog.Info("datagouv.fetch.done", "url", c.url, "bytes", len(body))
	return ParseArchive(body)
}

// ParseArchive reads every CSV inside the ZIP and concatenates them on the
// union of their columns. Files that cannot be parsed are skipped; it is an
// error only when no file could be read at all.
func ParseArchive(b []byte) (*dataset.Frame, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	var frames []*dataset.Frame
	for _, file := range zr.File {
		if file.FileInfo().IsDir() || !strings.HasSuffix(strings.ToLower(file.Name), ".csv") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			slog.Warn("datagouv.entry.open.error", "name", file.Name, "error", err)
			continue
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			slog.Warn("datagouv.entry.read.error", "name", file.Name, "error", err)
			continue
		}
		f, err := parseCSV(raw)
		if err != nil {
			slog.Warn("datagouv.entry.parse.error", "name", file.Name, "error", err)
			continue
		}
		slog.Info("datagouv.entry.parsed", "name", file.Name, "rows", f.Rows())
		frames = append(frames, f)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no csv files could be read from the archive")
	}
	return dataset.Concat(frames...), nil
}

// parseCSV decodes a semicolon-separated CSV. UTF-8 content is used as is;
// anything else is decoded as Latin-1, the other encoding seen in upstream
// files.
func parseCSV(b []byte) (*dataset.Frame, error) {
	if !utf8.Valid(b) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
		if err != nil {
			return nil, fmt.Errorf("failed to decode csv: %w", err)
		}
		b = decoded
	}
	r := csv.NewReader(bytes.NewReader(b))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv")
	}
	return dataset.FromRecords(records[0], records[1:]), nil
}
