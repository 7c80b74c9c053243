package volume_anomaly

import (
	"fmt"

	"github.com/quantrail/quantrail/internal/core"
	"github.com/quantrail/quantrail/internal/indicator"
	"github.com/quantrail/quantrail/internal/strategy"
)

// VolumeAnomaly signals on unusual volume relative to its recent
// baseline, a crude breakout detector.
type VolumeAnomaly struct {
	lookback int
}

// New creates a new volume anomaly strategy
func New(lookback int) *VolumeAnomaly {
	return &VolumeAnomaly{lookback: lookback}
}

func (v *VolumeAnomaly) Name() string {
	return "volume_anomaly"
}

func (v *VolumeAnomaly) Description() string {
	return fmt.Sprintf("Volume spike vs %d-period baseline", v.lookback)
}

func (v *VolumeAnomaly) RequiredBars() int {
	return v.lookback
}

func (v *VolumeAnomaly) Active() bool {
	return true
}

func (v *VolumeAnomaly) Init(cfg strategy.Config) error {
	if lookback, ok := cfg.Params["lookback"].(int); ok {
		v.lookback = lookback
	}
	if v.lookback < 3 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("volume lookback %d", v.lookback))
	}
	return nil
}

func (v *VolumeAnomaly) Signal(ctx strategy.Context) (float64, error) {
	if len(ctx.Bars) < v.lookback {
		return 0, nil
	}

	vols := ctx.Bars.Volumes()
	current := vols[len(vols)-1]
	baseline := vols[len(vols)-v.lookback : len(vols)-1]

	mean := indicator.Mean(baseline)
	if mean == 0 {
		return 0, nil
	}

	z := (current - mean) / (indicator.StdDev(baseline) + 1e-8)

	score := z / 3
	if score > 2 {
		score = 2
	}
	if score < -2 {
		score = -2
	}
	return score, nil
}
