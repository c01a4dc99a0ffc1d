package sim

import (
	"context"
	"sync"

	"github.com/san-kum/fluidsim/internal/config"
)

// Ensemble runs independent drivers over a set of configurations, one
// goroutine per configuration. Each driver stays single-threaded.
type Ensemble struct {
	configs    []*config.Config
	newMetrics func() []Metric
}

// NewEnsemble prepares a run over configs. newMetrics is called once per
// driver so no metric is shared between goroutines; it may be nil.
func NewEnsemble(configs []*config.Config, newMetrics func() []Metric) *Ensemble {
	return &Ensemble{configs: configs, newMetrics: newMetrics}
}

// Run advances every configuration by its own Frames count. Results are
// returned in configuration order; the first error wins.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, len(e.configs))
	errs := make([]error, len(e.configs))

	var wg sync.WaitGroup
	for i, cfg := range e.configs {
		wg.Add(1)
		go func(idx int, cfg *config.Config) {
			defer wg.Done()

			d, err := New(cfg)
			if err != nil {
				errs[idx] = err
				return
			}
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					d.AddMetric(m)
				}
			}
			results[idx], errs[idx] = d.Run(ctx, cfg.Frames)
		}(i, cfg)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
