// Package scanner drives the fetch, compute and publish cycle on a fixed interval.
package scanner

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

// DefaultInterval poll interval used when none is configured.
const DefaultInterval = 10 * time.Second

type quoteSource interface {
	Name() string
	Fetch(ctx context.Context, symbols []string) []domain.MarketPrice
}

type evaluator interface {
	Evaluate(quoteA, quoteB domain.MarketPrice, tradeAmount decimal.Decimal) (domain.ArbitrageOpportunity, error)
}

// Listener receives every published scan result.
type Listener func(result domain.ScanResult)

// Config scanner settings, read-only after construction.
type Config struct {
	Markets     []domain.Market
	TradeAmount decimal.Decimal
	Interval    time.Duration
	// FetchTimeout bounds one scan's venue I/O. Defaults to Interval.
	FetchTimeout time.Duration
	// ProfitThreshold when set, opportunities with a lower EstimatedProfit are not published.
	ProfitThreshold *decimal.Decimal
}

// Scanner compares a reference venue against a second venue for every configured market.
// Scans never overlap: a tick or Trigger that arrives while a scan is running is dropped.
type Scanner struct {
	l         *zap.Logger
	reference quoteSource
	compared  quoteSource
	calc      evaluator
	cfg       Config
	symbols   []string
	listeners []Listener
	newID     func() string
	now       func() time.Time

	mu       sync.Mutex
	state    atomic.Int32
	latest   atomic.Pointer[domain.ScanResult]
	started  bool
	stopCh   chan struct{}
	loop     sync.WaitGroup
	inflight sync.WaitGroup
	running  atomic.Int32
}

// Option configures the Scanner.
type Option func(*Scanner)

// WithListener registers a consumer notified after each published result.
func WithListener(listener Listener) Option {
	return func(s *Scanner) {
		s.listeners = append(s.listeners, listener)
	}
}

// WithClock overrides the clock used for scan timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		s.now = now
	}
}

// WithIDGenerator overrides scan id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Scanner) {
		s.newID = newID
	}
}

// NewScanner creates a scanner. reference is venue A (percentages are relative to it), compared is venue B.
func NewScanner(l *zap.Logger, reference, compared quoteSource, calc evaluator, cfg Config, opts ...Option) (*Scanner, error) {
	if reference == nil || compared == nil {
		return nil, errors.Wrap(domain.ErrConfiguration, "both quote sources are required")
	}
	if calc == nil {
		return nil, errors.Wrap(domain.ErrConfiguration, "calculator is required")
	}
	if len(cfg.Markets) == 0 {
		return nil, errors.Wrap(domain.ErrConfiguration, "at least one market is required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.Wrapf(domain.ErrConfiguration, "poll interval must be positive, got %s", cfg.Interval)
	}
	if !cfg.TradeAmount.IsPositive() {
		return nil, errors.Wrapf(domain.ErrConfiguration, "trade amount must be positive, got %s", cfg.TradeAmount.String())
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = cfg.Interval
	}

	symbols := make([]string, 0, len(cfg.Markets))
	for _, m := range cfg.Markets {
		symbols = append(symbols, m.Symbol())
	}

	s := &Scanner{
		l:         l.With(zap.String("reference", reference.Name()), zap.String("compared", compared.Name())),
		reference: reference,
		compared:  compared,
		calc:      calc,
		cfg:       cfg,
		symbols:   symbols,
		newID:     uuid.NewString,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Start launches the scan loop: one scan immediately, then one per interval.
// Cancelling ctx stops the scanner.
func (s *Scanner) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentState() == StateStopped {
		return errors.New("scanner is stopped")
	}
	if s.started {
		return errors.New("scanner already started")
	}
	s.started = true

	s.loop.Add(1)
	go s.run(ctx)

	return nil
}

// Trigger requests an out-of-band scan. It returns false when the request was dropped
// because a scan is in progress or the scanner is stopped.
func (s *Scanner) Trigger(ctx context.Context) bool {
	return s.tryScan(ctx, "manual")
}

// Stop disables the ticker. A scan in flight runs to completion but its result is discarded.
// Safe to call more than once.
func (s *Scanner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentState() == StateStopped {
		return
	}
	s.state.Store(int32(StateStopped))
	close(s.stopCh)
	s.l.Info("scanner stopped")
}

// Wait blocks until the loop and any in-flight scan have returned. Call it after Stop.
func (s *Scanner) Wait() {
	s.loop.Wait()
	s.inflight.Wait()
}

// Latest returns the last published result, nil before the first scan completes.
func (s *Scanner) Latest() *domain.ScanResult {
	return s.latest.Load()
}

// Busy reports whether a scan is in progress, including one still finishing after Stop.
func (s *Scanner) Busy() bool {
	return s.running.Load() > 0
}

// State returns the current lifecycle state.
func (s *Scanner) State() State {
	return s.currentState()
}

func (s *Scanner) currentState() State {
	return State(s.state.Load())
}

func (s *Scanner) run(ctx context.Context) {
	defer s.loop.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.l.Info("starting scan loop", zap.Strings("symbols", s.symbols), zap.Duration("poll_interval", s.cfg.Interval))
	s.tryScan(ctx, "start")

	for {
		select {
		case <-ctx.Done():
			s.l.Info("context done, stopping scan loop")
			s.Stop()
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tryScan(ctx, "tick")
		}
	}
}

func (s *Scanner) tryScan(ctx context.Context, trigger string) bool {
	s.mu.Lock()
	if state := s.currentState(); state != StateIdle {
		s.mu.Unlock()
		s.l.Debug("scan trigger dropped", zap.String("trigger", trigger), zap.Stringer("state", state))
		return false
	}
	s.state.Store(int32(StateScanning))
	s.inflight.Add(1)
	s.running.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.inflight.Done()
		defer s.running.Add(-1)
		s.scan(ctx, trigger)
	}()

	return true
}

func (s *Scanner) scan(ctx context.Context, trigger string) {
	id := s.newID()
	startedAt := s.now()
	l := s.l.With(zap.String("scan_id", id))
	l.Info("scan started", zap.String("trigger", trigger))

	result := s.execute(ctx, l, id, startedAt)

	if result.IsFailure() {
		l.Warn("scan failed", zap.String("reason", result.Reason), zap.Duration("took", result.FinishedAt.Sub(startedAt)))
	} else {
		l.Info("scan finished", zap.Int("opportunities", len(result.Opportunities)), zap.Duration("took", result.FinishedAt.Sub(startedAt)))
	}

	s.publish(l, result)
}

// execute fans out to both venues, joins the quotes and evaluates every market.
func (s *Scanner) execute(ctx context.Context, l *zap.Logger, id string, startedAt time.Time) domain.ScanResult {
	// Stop must not abort venue I/O, so only the timeout bounds it
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.FetchTimeout)
	defer cancel()

	var reference, compared []domain.MarketPrice
	var g errgroup.Group
	g.Go(func() error {
		reference = s.reference.Fetch(fetchCtx, s.symbols)
		return nil
	})
	g.Go(func() error {
		compared = s.compared.Fetch(fetchCtx, s.symbols)
		return nil
	})
	_ = g.Wait()

	referenceBySymbol := indexBySymbol(reference)
	comparedBySymbol := indexBySymbol(compared)

	var missing []string
	for _, symbol := range s.symbols {
		if _, ok := referenceBySymbol[symbol]; !ok {
			missing = append(missing, s.reference.Name()+":"+symbol)
		}
		if _, ok := comparedBySymbol[symbol]; !ok {
			missing = append(missing, s.compared.Name()+":"+symbol)
		}
	}
	if len(missing) > 0 {
		l.Warn("missing quotes", zap.Strings("missing", missing))
		return domain.NewFailureResult(id, domain.ErrIncompleteQuotes.Error(), startedAt, s.now())
	}

	opportunities := make([]domain.ArbitrageOpportunity, 0, len(s.symbols))
	var invalid []string
	evaluated := 0
	for _, symbol := range s.symbols {
		opp, err := s.calc.Evaluate(referenceBySymbol[symbol], comparedBySymbol[symbol], s.cfg.TradeAmount)
		if err != nil {
			l.Warn("skipping market", zap.String("symbol", symbol), zap.Error(err))
			invalid = append(invalid, err.Error())
			continue
		}
		evaluated++
		if s.cfg.ProfitThreshold != nil && opp.EstimatedProfit.LessThan(*s.cfg.ProfitThreshold) {
			l.Debug("opportunity below profit threshold",
				zap.String("symbol", symbol),
				zap.Stringer("estimated_profit", opp.EstimatedProfit),
				zap.Stringer("threshold", s.cfg.ProfitThreshold))
			continue
		}
		opportunities = append(opportunities, opp)
	}

	if evaluated == 0 {
		return domain.NewFailureResult(id, strings.Join(invalid, "; "), startedAt, s.now())
	}

	return domain.NewOpportunitiesResult(id, opportunities, startedAt, s.now())
}

func (s *Scanner) publish(l *zap.Logger, result domain.ScanResult) {
	s.mu.Lock()
	if s.currentState() == StateStopped {
		s.mu.Unlock()
		l.Info("scanner stopped, discarding scan result")
		return
	}
	s.latest.Store(&result)
	s.mu.Unlock()

	for _, listener := range s.listeners {
		listener(result)
	}

	s.mu.Lock()
	if s.currentState() == StateScanning {
		s.state.Store(int32(StateIdle))
	}
	s.mu.Unlock()
}

func indexBySymbol(prices []domain.MarketPrice) map[string]domain.MarketPrice {
	out := make(map[string]domain.MarketPrice, len(prices))
	for _, p := range prices {
		out[p.Symbol] = p
	}

	return out
}
