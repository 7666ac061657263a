package internal

import (
	"context"
	"os"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/config"
	"github.com/vadiminshakov/arbscan/internal/domain"
	"github.com/vadiminshakov/arbscan/internal/events"
	"github.com/vadiminshakov/arbscan/internal/render"
	"github.com/vadiminshakov/arbscan/internal/services/calculator"
	"github.com/vadiminshakov/arbscan/internal/services/fees"
	"github.com/vadiminshakov/arbscan/internal/services/quotes"
	"github.com/vadiminshakov/arbscan/internal/services/scanner"
	"github.com/vadiminshakov/arbscan/internal/storage/scans"
	"github.com/vadiminshakov/arbscan/internal/web"
)

// ArbScanner wires the quote sources, the scanner and every consumer of its results.
type ArbScanner struct {
	Config      config.Config
	Scanner     *scanner.Scanner
	Journal     *scans.WALStore
	Broadcaster *events.ScanBroadcaster

	reference quotes.Source
	compared  quotes.Source
	l         *zap.Logger
}

// NewArbScanner creates the scanner and its consumers. The journal is opened under cfg.JournalDir.
func NewArbScanner(conf config.Config, reference, compared quotes.Source, logger *zap.Logger) (*ArbScanner, error) {
	feeModel, err := fees.NewModel(conf.Fees)
	if err != nil {
		return nil, err
	}

	journal, err := scans.NewWALStore(conf.JournalDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open scan journal")
	}

	a := &ArbScanner{
		Config:      conf,
		Journal:     journal,
		Broadcaster: events.NewScanBroadcaster(0),
		reference:   reference,
		compared:    compared,
		l:           logger,
	}

	a.Scanner, err = scanner.NewScanner(
		logger,
		reference,
		compared,
		calculator.NewCalculator(feeModel),
		scanner.Config{
			Markets:         conf.Markets,
			TradeAmount:     conf.TradeAmount,
			Interval:        conf.PollInterval,
			FetchTimeout:    conf.FetchTimeout,
			ProfitThreshold: conf.ProfitThreshold,
		},
		scanner.WithListener(a.journal),
		scanner.WithListener(a.Broadcaster.Publish),
	)
	if err != nil {
		_ = journal.Close()
		return nil, err
	}

	return a, nil
}

func (a *ArbScanner) journal(result domain.ScanResult) {
	if _, err := a.Journal.Save(result); err != nil {
		a.l.Error("failed to journal scan result", zap.String("scan_id", result.ID), zap.Error(err))
	}
}

// Run starts scanning and serves results until ctx is done, then stops the scanner and waits for it.
// The journal is closed only after the scanner and the web server have both finished.
func (a *ArbScanner) Run(ctx context.Context) error {
	defer func() {
		if err := a.Journal.Close(); err != nil {
			a.l.Warn("failed to close scan journal", zap.Error(err))
		}
	}()

	var serving sync.WaitGroup
	defer serving.Wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.Config.Console {
		ch := a.Broadcaster.Subscribe()
		defer a.Broadcaster.Unsubscribe(ch)
		console := render.NewConsole(os.Stdout, a.l, a.reference.Name(), a.compared.Name())
		go console.Run(ctx, ch)
	}

	if a.Config.WebAddr != "" {
		srv := web.NewServer(a.Config.WebAddr, a.Journal, a.Scanner, a.l)
		serving.Add(1)
		go func() {
			defer serving.Done()
			var err error
			if len(a.Config.TLSDomains) > 0 {
				err = srv.StartWithAutoTLS(ctx, a.Config.TLSDomains, a.Config.CertCacheDir)
			} else {
				err = srv.Start(ctx)
			}
			if err != nil {
				a.l.Error("web server failed", zap.Error(err))
			}
		}()
	}

	if err := a.Scanner.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start scanner")
	}

	<-ctx.Done()
	a.l.Info("context done, stopping scanner")
	a.Scanner.Stop()
	a.Scanner.Wait()

	return nil
}
