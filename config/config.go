// Package config loads the scanner settings from a yaml file or, for a single market, from CLI flags.
package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/arbscan/internal/domain"
	"github.com/vadiminshakov/arbscan/internal/services/calculator"
	"github.com/vadiminshakov/arbscan/internal/services/scanner"
)

const (
	defaultWebAddr      = ":8080"
	defaultJournalDir   = "./journal"
	defaultCertCacheDir = "./certs"
)

// Config scanner settings. Read-only once loaded.
type Config struct {
	CexPlatform     domain.Platform
	DexPlatform     domain.Platform
	Markets         []domain.Market
	TradeAmount     decimal.Decimal
	Fees            domain.FeeSchedule
	PollInterval    time.Duration
	FetchTimeout    time.Duration
	ProfitThreshold *decimal.Decimal
	WebAddr         string
	TLSDomains      []string
	CertCacheDir    string
	JournalDir      string
	Console         bool
}

// ConfigTmp raw yaml representation, decimals are kept as strings until parsed.
type ConfigTmp struct {
	CexPlatform     string        `yaml:"cex_platform"`
	DexPlatform     string        `yaml:"dex_platform"`
	Markets         []MarketTmp   `yaml:"markets"`
	TradeAmount     string        `yaml:"trade_amount,omitempty"`
	Fees            FeesTmp       `yaml:"fees,omitempty"`
	PollInterval    time.Duration `yaml:"poll_interval,omitempty"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout,omitempty"`
	ProfitThreshold string        `yaml:"profit_threshold,omitempty"`
	Web             WebTmp        `yaml:"web,omitempty"`
	JournalDir      string        `yaml:"journal_dir,omitempty"`
	Console         *bool         `yaml:"console,omitempty"`
}

// MarketTmp one symbol-to-venue mapping entry.
type MarketTmp struct {
	Pair      string `yaml:"pair"`
	CexSymbol string `yaml:"cex_symbol,omitempty"`
	DexMarket string `yaml:"dex_market,omitempty"`
}

// FeesTmp fee schedule overrides, empty fields fall back to the defaults.
type FeesTmp struct {
	MakerFee   string `yaml:"maker_fee,omitempty"`
	TakerFee   string `yaml:"taker_fee,omitempty"`
	DexFee     string `yaml:"dex_fee,omitempty"`
	NetworkFee string `yaml:"network_fee,omitempty"`
}

// WebTmp web UI settings.
type WebTmp struct {
	Addr         string   `yaml:"addr,omitempty"`
	TLSDomains   []string `yaml:"tls_domains,omitempty"`
	CertCacheDir string   `yaml:"cert_cache_dir,omitempty"`
}

// Options process-level switches that are not part of the scanner config.
type Options struct {
	Setup bool
}

// Get parses os.Args. Configuration problems are reported as domain.ErrConfiguration.
func Get() (Config, Options, error) {
	return parse(os.Args[1:])
}

func parse(args []string) (Config, Options, error) {
	fs := flag.NewFlagSet("arbscan", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to yaml config")
	setup := fs.Bool("setup", false, "run the interactive config wizard")
	cex := fs.String("cex", string(domain.PlatformBinance), "reference exchange: binance or bybit")
	dex := fs.String("dex", string(domain.PlatformHyperliquid), "decentralized venue: hyperliquid")
	pair := fs.String("pair", "SOL_USDC", "market pair, example: SOL_USDC")
	cexSymbol := fs.String("cexsymbol", "", "exchange ticker, defaults to the pair symbol")
	dexMarket := fs.String("dexmarket", "", "dex market id, defaults to the pair base")
	amount := fs.String("tradeamount", calculator.DefaultTradeAmount.String(), "trade amount in base units")
	interval := fs.Duration("pollinterval", scanner.DefaultInterval, "scan interval")
	threshold := fs.String("profitthreshold", "", "hide opportunities with estimated profit below this value")
	webAddr := fs.String("webaddr", defaultWebAddr, "web UI listen address, empty disables it")
	journalDir := fs.String("journaldir", defaultJournalDir, "scan journal directory")
	console := fs.Bool("console", true, "print scan results to stdout")

	if err := fs.Parse(args); err != nil {
		return Config{}, Options{}, errors.Wrap(domain.ErrConfiguration, err.Error())
	}
	opts := Options{Setup: *setup}
	if opts.Setup {
		return Config{}, opts, nil
	}

	if *configPath != "" {
		cfg, err := getYaml(*configPath)
		return cfg, opts, err
	}

	tmp := ConfigTmp{
		CexPlatform:     *cex,
		DexPlatform:     *dex,
		Markets:         []MarketTmp{{Pair: *pair, CexSymbol: *cexSymbol, DexMarket: *dexMarket}},
		TradeAmount:     *amount,
		PollInterval:    *interval,
		ProfitThreshold: *threshold,
		Web:             WebTmp{Addr: *webAddr},
		JournalDir:      *journalDir,
		Console:         console,
	}
	cfg, err := tmp.toConfig()
	if err != nil {
		return Config{}, opts, err
	}

	return cfg, opts, nil
}

// Load reads and validates a yaml config file.
func Load(path string) (Config, error) {
	return getYaml(path)
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(domain.ErrConfiguration, "read %s: %s", path, err)
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, errors.Wrapf(domain.ErrConfiguration, "parse %s: %s", path, err)
	}

	return tmp.toConfig()
}

func (c ConfigTmp) toConfig() (Config, error) {
	cfg := Config{
		CexPlatform:  domain.Platform(strings.ToLower(c.CexPlatform)),
		DexPlatform:  domain.Platform(strings.ToLower(c.DexPlatform)),
		PollInterval: c.PollInterval,
		FetchTimeout: c.FetchTimeout,
		WebAddr:      c.Web.Addr,
		TLSDomains:   c.Web.TLSDomains,
		CertCacheDir: c.Web.CertCacheDir,
		JournalDir:   c.JournalDir,
		Console:      true,
	}
	if c.Console != nil {
		cfg.Console = *c.Console
	}

	if cfg.CexPlatform == "" {
		cfg.CexPlatform = domain.PlatformBinance
	}
	if !cfg.CexPlatform.IsCex() {
		return Config{}, errors.Wrapf(domain.ErrConfiguration, "unsupported cex_platform %q", c.CexPlatform)
	}
	if cfg.DexPlatform == "" {
		cfg.DexPlatform = domain.PlatformHyperliquid
	}
	if !cfg.DexPlatform.IsDex() {
		return Config{}, errors.Wrapf(domain.ErrConfiguration, "unsupported dex_platform %q", c.DexPlatform)
	}

	markets, err := parseMarkets(c.Markets)
	if err != nil {
		return Config{}, err
	}
	cfg.Markets = markets

	amount := c.TradeAmount
	if amount == "" {
		amount = calculator.DefaultTradeAmount.String()
	}
	cfg.TradeAmount, err = parsePositive("trade_amount", amount)
	if err != nil {
		return Config{}, err
	}

	cfg.Fees, err = c.Fees.toSchedule()
	if err != nil {
		return Config{}, err
	}

	if c.ProfitThreshold != "" {
		threshold, err := decimal.NewFromString(c.ProfitThreshold)
		if err != nil {
			return Config{}, errors.Wrapf(domain.ErrConfiguration, "incorrect 'profit_threshold' %q (must be a decimal)", c.ProfitThreshold)
		}
		cfg.ProfitThreshold = &threshold
	}

	if cfg.PollInterval == 0 {
		cfg.PollInterval = scanner.DefaultInterval
	}
	if cfg.PollInterval < 0 {
		return Config{}, errors.Wrapf(domain.ErrConfiguration, "poll_interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.FetchTimeout < 0 {
		return Config{}, errors.Wrapf(domain.ErrConfiguration, "fetch_timeout must not be negative, got %s", cfg.FetchTimeout)
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = cfg.PollInterval
	}

	if cfg.JournalDir == "" {
		cfg.JournalDir = defaultJournalDir
	}
	if len(cfg.TLSDomains) > 0 && cfg.CertCacheDir == "" {
		cfg.CertCacheDir = defaultCertCacheDir
	}

	return cfg, nil
}

func parseMarkets(raw []MarketTmp) ([]domain.Market, error) {
	if len(raw) == 0 {
		return nil, errors.Wrap(domain.ErrConfiguration, "at least one market is required")
	}

	seen := make(map[string]struct{}, len(raw))
	markets := make([]domain.Market, 0, len(raw))
	for _, m := range raw {
		pair, err := domain.ParsePair(m.Pair)
		if err != nil {
			return nil, errors.Wrapf(domain.ErrConfiguration, "incorrect 'pair' param in yaml config: %s", err)
		}
		if _, ok := seen[pair.Symbol()]; ok {
			return nil, errors.Wrapf(domain.ErrConfiguration, "duplicate market %s", pair)
		}
		seen[pair.Symbol()] = struct{}{}

		market := domain.Market{
			Pair:      pair,
			CexSymbol: strings.ToUpper(m.CexSymbol),
			DexMarket: m.DexMarket,
		}
		if market.CexSymbol == "" {
			market.CexSymbol = pair.Symbol()
		}
		if market.DexMarket == "" {
			market.DexMarket = pair.From
		}
		markets = append(markets, market)
	}

	return markets, nil
}

func (f FeesTmp) toSchedule() (domain.FeeSchedule, error) {
	schedule := domain.DefaultFeeSchedule()

	fields := []struct {
		name  string
		raw   string
		value *decimal.Decimal
	}{
		{"maker_fee", f.MakerFee, &schedule.MakerFee},
		{"taker_fee", f.TakerFee, &schedule.TakerFee},
		{"dex_fee", f.DexFee, &schedule.DexFee},
		{"network_fee", f.NetworkFee, &schedule.NetworkFee},
	}
	for _, field := range fields {
		if field.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(field.raw)
		if err != nil {
			return domain.FeeSchedule{}, errors.Wrapf(domain.ErrConfiguration, "incorrect '%s' %q (must be a decimal)", field.name, field.raw)
		}
		*field.value = v
	}

	if err := schedule.Validate(); err != nil {
		return domain.FeeSchedule{}, err
	}

	return schedule, nil
}

func parsePositive(name, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(domain.ErrConfiguration, "incorrect '%s' %q (must be a decimal)", name, raw)
	}
	if !v.IsPositive() {
		return decimal.Decimal{}, errors.Wrapf(domain.ErrConfiguration, "%s must be positive, got %s", name, raw)
	}

	return v, nil
}
