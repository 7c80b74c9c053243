package recommend

import (
	"context"
	"time"

	"github.com/quantrail/quantrail/internal/core"
)

// PriceProvider supplies already-resolved, chronologically ordered,
// deduplicated price history. An empty series signals a data gap; the
// provider never retries or caches on this engine's behalf.
type PriceProvider interface {
	FetchHistory(ctx context.Context, ticker string, assetType core.AssetType, start, end time.Time) (core.Series, error)
}

// FundamentalProvider supplies fundamental metrics (e.g. "pe_ratio")
// for the value factor. Optional; a nil provider drops the value term.
type FundamentalProvider interface {
	Fundamentals(ctx context.Context, ticker string) (map[string]float64, error)
}
