package provider

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/quantrail/quantrail/internal/core"
)

const csvDateLayout = "2006-01-02"

// CSV reads price history from a directory of <TICKER>.csv files with
// the header: date,open,high,low,close,volume. Files are parsed once
// and cached for the lifetime of the provider.
type CSV struct {
	dir string

	mu    sync.Mutex
	cache map[string]core.Series
}

// NewCSV creates a provider over a directory of per-ticker CSV files.
func NewCSV(dir string) *CSV {
	return &CSV{
		dir:   dir,
		cache: make(map[string]core.Series),
	}
}

// FetchHistory returns the bars for a ticker inside [start, end],
// inclusive. A missing file maps to ErrNoData.
func (c *CSV) FetchHistory(_ context.Context, ticker string, _ core.AssetType, start, end time.Time) (core.Series, error) {
	bars, err := c.load(ticker)
	if err != nil {
		return nil, err
	}
	return sliceRange(bars, start, end), nil
}

func (c *CSV) load(ticker string) (core.Series, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if bars, ok := c.cache[ticker]; ok {
		return bars, nil
	}

	path := filepath.Join(c.dir, ticker+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrNoData
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	bars, err := parseBars(f)
	if err != nil {
		return nil, core.WrapError(core.ErrDataGap, fmt.Errorf("parse %s: %w", path, err))
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	c.cache[ticker] = bars
	return bars, nil
}

func parseBars(f *os.File) (core.Series, error) {
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return core.Series{}, nil
	}

	// Skip a header row if the first field is not a date.
	if strings.EqualFold(records[0][0], "date") {
		records = records[1:]
	}

	bars := make(core.Series, 0, len(records))
	for i, rec := range records {
		if len(rec) < 6 {
			return nil, fmt.Errorf("row %d: expected 6 columns, got %d", i+1, len(rec))
		}
		bar, err := parseBar(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseBar(rec []string) (core.Bar, error) {
	date, err := time.Parse(csvDateLayout, rec[0])
	if err != nil {
		return core.Bar{}, fmt.Errorf("date %q: %w", rec[0], err)
	}

	fields := make([]float64, 4)
	for i, name := range []string{"open", "high", "low", "close"} {
		v, err := strconv.ParseFloat(rec[i+1], 64)
		if err != nil {
			return core.Bar{}, fmt.Errorf("%s %q: %w", name, rec[i+1], err)
		}
		fields[i] = v
	}

	volume, err := strconv.ParseInt(rec[5], 10, 64)
	if err != nil {
		return core.Bar{}, fmt.Errorf("volume %q: %w", rec[5], err)
	}

	return core.Bar{
		Date:   date,
		Open:   fields[0],
		High:   fields[1],
		Low:    fields[2],
		Close:  fields[3],
		Volume: volume,
	}, nil
}
