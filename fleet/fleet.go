// Package fleet runs unit system detection against many controls at once.
package fleet

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-nclink/config"
	"github.com/arloliu/go-nclink/logger"
	"github.com/arloliu/go-nclink/nclink"
	"github.com/arloliu/go-nclink/units"
)

// DefaultConcurrency is the number of controls probed in parallel.
const DefaultConcurrency = 8

// SenderFactory builds the transport used to reach one machine.
type SenderFactory func(m config.Machine) (nclink.Sender, error)

// Report is the detection outcome for one machine.
type Report struct {
	Machine config.Machine
	Result  units.Result
	Elapsed time.Duration
}

// Prober detects the unit system of every machine in an inventory.
type Prober struct {
	newSender   SenderFactory
	concurrency int
	logger      logger.Logger
	onDone      func(Report)
}

// Option configures a Prober.
type Option func(*Prober)

// WithConcurrency bounds the number of parallel probes. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(p *Prober) {
		if n >= 1 {
			p.concurrency = n
		}
	}
}

// WithLogger sets the logger passed to every detector.
func WithLogger(l logger.Logger) Option {
	return func(p *Prober) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithProgress registers a callback invoked after each machine completes.
// It may be called from several goroutines at once.
func WithProgress(fn func(Report)) Option {
	return func(p *Prober) {
		p.onDone = fn
	}
}

// NewProber creates a Prober that reaches machines through newSender.
func NewProber(newSender SenderFactory, opts ...Option) *Prober {
	p := &Prober{
		newSender:   newSender,
		concurrency: DefaultConcurrency,
		logger:      logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// ClientFactory returns a SenderFactory that builds an nclink.Client per machine
// with the given connection options.
func ClientFactory(opts ...nclink.ConnOption) SenderFactory {
	return func(m config.Machine) (nclink.Sender, error) {
		cfg, err := nclink.NewConnectionConfig(m.Host, m.Port, opts...)
		if err != nil {
			return nil, err
		}

		client, err := nclink.NewClient(cfg)
		if err != nil {
			return nil, err
		}

		return client, nil
	}
}

// Probe detects every machine and returns the reports ordered by machine name.
// Each machine is probed independently; one failing machine never affects another.
func (p *Prober) Probe(ctx context.Context, machines []config.Machine) []Report {
	results := xsync.NewMapOf[string, Report]()
	sem := make(chan struct{}, p.concurrency)

	var wg sync.WaitGroup
	for _, m := range machines {
		wg.Add(1)
		go func() {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results.Store(m.Name, Report{Machine: m, Result: cancelled(ctx)})
				p.done(results, m.Name)

				return
			}
			defer func() { <-sem }()

			results.Store(m.Name, p.probeOne(ctx, m))
			p.done(results, m.Name)
		}()
	}
	wg.Wait()

	reports := make([]Report, 0, results.Size())
	results.Range(func(_ string, r Report) bool {
		reports = append(reports, r)
		return true
	})
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Machine.Name < reports[j].Machine.Name
	})

	return reports
}

func (p *Prober) probeOne(ctx context.Context, m config.Machine) Report {
	begin := time.Now()
	l := p.logger.With("machine", m.Name)

	sender, err := p.newSender(m)
	if err != nil {
		l.Error("fleet: cannot build transport", "error", err)
		res := units.Result{
			System:    units.Default,
			Defaulted: true,
			Stage:     units.StageQuery,
			Reason:    "transport setup failed",
			Err:       err,
		}

		return Report{Machine: m, Result: res, Elapsed: time.Since(begin)}
	}

	d, err := units.NewDetector(sender, units.WithLogger(l))
	if err != nil {
		return Report{Machine: m, Result: units.Result{System: units.Default, Defaulted: true, Err: err}}
	}

	res := d.Detect(ctx, m.Version())
	d.Report(m.Version(), res)

	return Report{Machine: m, Result: res, Elapsed: time.Since(begin)}
}

func (p *Prober) done(results *xsync.MapOf[string, Report], name string) {
	if p.onDone == nil {
		return
	}
	if r, ok := results.Load(name); ok {
		p.onDone(r)
	}
}

func cancelled(ctx context.Context) units.Result {
	return units.Result{
		System:    units.Default,
		Defaulted: true,
		Stage:     units.StageQuery,
		Reason:    "probe cancelled before start",
		Err:       ctx.Err(),
	}
}
