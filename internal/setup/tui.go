// Package setup implements the interactive wizard that writes a scanner config file.
package setup

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/arbscan/config"
	"github.com/vadiminshakov/arbscan/internal/domain"
)

// DefaultConfigFile file the wizard writes.
const DefaultConfigFile = "config.gen.yaml"

const wizardTitle = "ARBSCAN CONFIG WIZARD"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// Answers collected by the wizard.
type Answers struct {
	CexPlatform     string
	Pairs           string
	DexMarkets      string
	TradeAmount     string
	PollInterval    string
	TakerFee        string
	DexFee          string
	NetworkFee      string
	ProfitThreshold string
	WebAddr         string
}

// DefaultAnswers values the wizard fields start with.
func DefaultAnswers() Answers {
	fees := domain.DefaultFeeSchedule()
	return Answers{
		CexPlatform:  string(domain.PlatformBinance),
		Pairs:        "SOL_USDC",
		TradeAmount:  "1000",
		PollInterval: "10s",
		TakerFee:     fees.TakerFee.String(),
		DexFee:       fees.DexFee.String(),
		NetworkFee:   fees.NetworkFee.String(),
		WebAddr:      ":8080",
	}
}

func clearScreen(step string) {
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render(wizardTitle))
	fmt.Println(stepStyle.Render(step))
}

// RunTUI launches the terminal configuration wizard and returns the path of the written file.
func RunTUI() (string, error) {
	a := DefaultAnswers()
	var confirm bool

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render(wizardTitle))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Compare a CEX against Hyperliquid mids, fees included.\n"))

	fmt.Println(stepStyle.Render("STEP 1: EXCHANGE"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Reference exchange (price A)").
				Options(
					huh.NewOption("Binance", string(domain.PlatformBinance)),
					huh.NewOption("Bybit", string(domain.PlatformBybit)),
				).
				Value(&a.CexPlatform),
		),
	).Run()
	if err != nil {
		return "", err
	}

	clearScreen("STEP 2: MARKETS")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Pairs").
				Description("Comma separated BASE_QUOTE list (e.g. SOL_USDC,ETH_USDT)").
				Value(&a.Pairs).
				Validate(validatePairs),
			huh.NewInput().
				Title("Hyperliquid markets").
				Description("Comma separated, same order as pairs; empty uses the base asset").
				Value(&a.DexMarkets),
		),
	).Run()
	if err != nil {
		return "", err
	}

	clearScreen("STEP 3: SIZING AND TIMING")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trade amount").
				Description("Base units used to size profit (e.g. 1000)").
				Value(&a.TradeAmount).
				Validate(validatePositive),
			huh.NewInput().
				Title("Poll interval").
				Description("Duration string (e.g. 10s, 1m)").
				Value(&a.PollInterval).
				Validate(validateInterval),
			huh.NewInput().
				Title("Profit threshold").
				Description("Hide opportunities below this estimated profit; empty shows all").
				Value(&a.ProfitThreshold).
				Validate(validateOptionalDecimal),
		),
	).Run()
	if err != nil {
		return "", err
	}

	clearScreen("STEP 4: FEES")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Exchange taker fee").Value(&a.TakerFee).Validate(validateFee),
			huh.NewInput().Title("DEX fee").Value(&a.DexFee).Validate(validateFee),
			huh.NewInput().Title("Network fee per unit").Value(&a.NetworkFee).Validate(validateFee),
		),
	).Run()
	if err != nil {
		return "", err
	}

	clearScreen("STEP 5: WEB UI")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Description("Empty disables the web UI").
				Value(&a.WebAddr),
		),
	).Run()
	if err != nil {
		return "", err
	}

	clearScreen("FINAL CONFIRMATION")
	summary := fmt.Sprintf(
		"Exchange: %s\nPairs: %s\nTrade amount: %s\nInterval: %s\nWeb: %s\n",
		a.CexPlatform, a.Pairs, a.TradeAmount, a.PollInterval, a.WebAddr,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return "", err
	}
	if !confirm {
		return "", errors.New("setup cancelled by user")
	}

	if err := WriteConfig(DefaultConfigFile, a); err != nil {
		return "", err
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s\nStarting scanner...", DefaultConfigFile)))
	time.Sleep(1500 * time.Millisecond)
	return DefaultConfigFile, nil
}

// BuildConfig converts wizard answers into the yaml representation.
func BuildConfig(a Answers) (config.ConfigTmp, error) {
	interval, err := time.ParseDuration(a.PollInterval)
	if err != nil {
		return config.ConfigTmp{}, errors.Wrapf(domain.ErrConfiguration, "invalid poll interval %q", a.PollInterval)
	}

	pairs := splitList(a.Pairs)
	dexMarkets := splitList(a.DexMarkets)
	if len(dexMarkets) > len(pairs) {
		return config.ConfigTmp{}, errors.Wrapf(domain.ErrConfiguration, "%d hyperliquid markets given for %d pairs", len(dexMarkets), len(pairs))
	}

	markets := make([]config.MarketTmp, 0, len(pairs))
	for i, p := range pairs {
		m := config.MarketTmp{Pair: strings.ToUpper(p)}
		if i < len(dexMarkets) {
			m.DexMarket = dexMarkets[i]
		}
		markets = append(markets, m)
	}

	return config.ConfigTmp{
		CexPlatform:  a.CexPlatform,
		DexPlatform:  string(domain.PlatformHyperliquid),
		Markets:      markets,
		TradeAmount:  a.TradeAmount,
		PollInterval: interval,
		Fees: config.FeesTmp{
			TakerFee:   a.TakerFee,
			DexFee:     a.DexFee,
			NetworkFee: a.NetworkFee,
		},
		ProfitThreshold: a.ProfitThreshold,
		Web:             config.WebTmp{Addr: a.WebAddr},
	}, nil
}

// WriteConfig writes the answers as yaml to filename.
func WriteConfig(filename string, a Answers) error {
	cfgTmp, err := BuildConfig(a)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return errors.Wrap(err, "failed to generate yaml")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to save config file")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func validatePairs(s string) error {
	pairs := splitList(s)
	if len(pairs) == 0 {
		return fmt.Errorf("at least one pair is required")
	}
	for _, p := range pairs {
		if _, err := domain.ParsePair(p); err != nil {
			return err
		}
	}
	return nil
}

func validatePositive(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if !d.IsPositive() {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

func validateFee(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.IsNegative() {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validateOptionalDecimal(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := decimal.NewFromString(s); err != nil {
		return fmt.Errorf("must be a valid number")
	}
	return nil
}

func validateInterval(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}
