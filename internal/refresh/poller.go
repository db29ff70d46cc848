package refresh

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status summarises refresh activity for display.
type Status struct {
	InFlight    int       `json:"inFlight"`
	LastUpdated time.Time `json:"lastUpdated,omitzero"`
	LastError   string    `json:"lastError,omitempty"`
	LastCycle   string    `json:"lastCycle,omitempty"`
	Weeks       int       `json:"weeks"`
}

// Refreshing reports whether any cycle is running.
func (s Status) Refreshing() bool {
	return s.InFlight > 0
}

// Label is the "last updated" text: "..." while refreshing, "Error" after
// a failed cycle, otherwise the HH:MM of the last success.
func (s Status) Label() string {
	switch {
	case s.Refreshing():
		return "..."
	case s.LastError != "":
		return "Error"
	case s.LastUpdated.IsZero():
		return ""
	default:
		return s.LastUpdated.Format("15:04")
	}
}

// Runner performs one cycle.
type Runner interface {
	Run(ctx context.Context) (Result, error)
}

// Poller starts a cycle on every tick and on every Trigger. Cycles run
// concurrently; each one rebuilds the store when it completes, so the
// latest completion wins.
type Poller struct {
	runner   Runner
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time
	trigger  chan struct{}
	wg       sync.WaitGroup

	mu     sync.Mutex
	status Status
	subs   map[int]func(Status)
	nextID int
}

// NewPoller returns a poller running r every interval.
func NewPoller(r Runner, interval time.Duration, log *zap.Logger) *Poller {
	return &Poller{
		runner:   r,
		interval: interval,
		log:      log,
		now:      time.Now,
		trigger:  make(chan struct{}, 1),
		subs:     map[int]func(Status){},
	}
}

// Trigger requests a cycle. Requests made while one is already queued are
// merged.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Status returns a snapshot of the refresh status.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Subscribe registers fn for status changes and returns a function that
// removes it.
func (p *Poller) Subscribe(fn func(Status)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// Run loads immediately, then on every tick or trigger until ctx is done.
// It waits for in-flight cycles before returning.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	defer p.wg.Wait()

	p.start(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.start(ctx)
		case <-p.trigger:
			p.start(ctx)
		}
	}
}

func (p *Poller) start(ctx context.Context) {
	p.update(func(s *Status) { s.InFlight++ })
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		res, err := p.runner.Run(ctx)
		p.update(func(s *Status) {
			s.InFlight--
			s.LastCycle = res.CycleID
			if err != nil {
				s.LastError = err.Error()
				return
			}
			s.LastError = ""
			s.LastUpdated = p.now()
			s.Weeks = len(res.Weeks)
		})
		if err != nil && ctx.Err() == nil {
			p.log.Debug("keeping previous weeks after failed refresh", zap.String("cycle", res.CycleID))
		}
	}()
}

func (p *Poller) update(fn func(*Status)) {
	p.mu.Lock()
	fn(&p.status)
	snapshot := p.status
	fns := make([]func(Status), 0, len(p.subs))
	for _, sub := range p.subs {
		fns = append(fns, sub)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(snapshot)
	}
}
