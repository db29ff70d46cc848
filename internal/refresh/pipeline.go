// Package refresh runs fetch, parse and rebuild cycles against the week store.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/weekboard/internal/metrics"
	"github.com/verte-zerg/weekboard/internal/model"
	"github.com/verte-zerg/weekboard/internal/sheet"
	"github.com/verte-zerg/weekboard/internal/source"
	"github.com/verte-zerg/weekboard/internal/store"
)

// Result is the outcome of one successful load.
type Result struct {
	CycleID  string
	Weeks    []model.Week
	Reps     int
	Skipped  map[sheet.SkipReason]int
	Duration time.Duration
}

// Pipeline turns the source into weeks and publishes them to the store.
type Pipeline struct {
	src     source.Source
	st      *store.Store
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewPipeline wires a pipeline. m may be nil.
func NewPipeline(src source.Source, st *store.Store, log *zap.Logger, m *metrics.Metrics) *Pipeline {
	return &Pipeline{src: src, st: st, log: log, metrics: m}
}

// Load fetches and extracts the sheet without touching the store.
func (p *Pipeline) Load(ctx context.Context) (Result, error) {
	cycleID := uuid.NewString()
	log := p.log.With(zap.String("cycle", cycleID), zap.Stringer("source", p.src))
	started := time.Now()

	rows, err := p.src.Fetch(ctx)
	if err != nil {
		elapsed := time.Since(started)
		p.metrics.ObserveFetch(metrics.ResultError, elapsed)
		log.Warn("refresh failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return Result{CycleID: cycleID}, fmt.Errorf("failed to fetch sheet: %w", err)
	}
	extracted := sheet.ExtractDetailed(rows)
	elapsed := time.Since(started)
	p.metrics.ObserveFetch(metrics.ResultOK, elapsed)
	for reason, n := range extracted.Skipped {
		p.metrics.AddSkipped(string(reason), n)
	}

	res := Result{
		CycleID:  cycleID,
		Weeks:    extracted.Weeks,
		Reps:     extracted.Reps(),
		Skipped:  extracted.Skipped,
		Duration: elapsed,
	}
	log.Info("sheet loaded",
		zap.Int("rows", len(rows)),
		zap.Int("weeks", len(res.Weeks)),
		zap.Int("reps", res.Reps),
		zap.Int("skipped", extracted.SkippedTotal()),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}

// Apply rebuilds the store from a load result.
func (p *Pipeline) Apply(res Result) {
	p.st.Rebuild(res.Weeks)
	p.metrics.SetLoaded(len(res.Weeks), res.Reps)
}

// Run performs one full cycle: load, then apply on success. On failure the
// store keeps its previous weeks.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	res, err := p.Load(ctx)
	if err != nil {
		return res, err
	}
	p.Apply(res)
	return res, nil
}
