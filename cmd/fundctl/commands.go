package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"FundLens/internal/di"
	"FundLens/internal/domain/models"
	"FundLens/internal/report"
	"FundLens/internal/usecase"
	"FundLens/pkg/config"
	"FundLens/pkg/util"
)

const wrapWidth = 100

type analyzeCmd struct {
	configPath *string

	code       string
	start      string
	end        string
	benchmark  string
	short      int
	long       int
	rsi        int
	indicators string
	raw        bool
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "run indicators, performance and signals for one fund" }
func (*analyzeCmd) Usage() string {
	return `analyze -code <ts_code> [-start YYYYMMDD] [-end YYYYMMDD] [-benchmark code|none]:
  Fetch a fund's NAV history and print the analysis report.
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.code, "code", "", "fund code, e.g. 510300.SH")
	f.StringVar(&c.start, "start", "", "first date (defaults to three years before end)")
	f.StringVar(&c.end, "end", "", "last date (defaults to today)")
	f.StringVar(&c.benchmark, "benchmark", "", "benchmark index code, or none")
	f.IntVar(&c.short, "short", 0, "short moving average window")
	f.IntVar(&c.long, "long", 0, "long moving average window")
	f.IntVar(&c.rsi, "rsi", 0, "RSI window")
	f.StringVar(&c.indicators, "indicators", "", "comma separated indicator subset")
	f.BoolVar(&c.raw, "raw", false, "print plain markdown")
}

func (c *analyzeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(c.code) == "" {
		fmt.Fprintln(os.Stderr, "analyze: -code is required")
		return subcommands.ExitUsageError
	}
	p := usecase.AnalysisParams{
		Code:        c.code,
		Benchmark:   c.benchmark,
		Config:      models.IndicatorConfig{ShortWindow: c.short, LongWindow: c.long, RSIWindow: c.rsi},
		WithProfile: true,
	}
	var ok bool
	if c.start != "" {
		if p.Start, ok = util.ParseDate(c.start); !ok {
			fmt.Fprintf(os.Stderr, "analyze: bad -start %q\n", c.start)
			return subcommands.ExitUsageError
		}
	}
	if c.end != "" {
		if p.End, ok = util.ParseDate(c.end); !ok {
			fmt.Fprintf(os.Stderr, "analyze: bad -end %q\n", c.end)
			return subcommands.ExitUsageError
		}
	}
	if c.indicators != "" {
		known, unknown := models.ParseIndicators(c.indicators)
		if len(unknown) > 0 {
			fmt.Fprintf(os.Stderr, "analyze: unknown indicators %v\n", unknown)
			return subcommands.ExitUsageError
		}
		p.Indicators = known
	}

	uc, cleanup, err := analyzer(*c.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	a, err := uc.Run(ctx, p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyze %s: %v\n", c.code, err)
		return subcommands.ExitFailure
	}
	return emit(report.Analysis(a), c.raw)
}

type profileCmd struct {
	configPath *string

	code string
	raw  bool
}

func (*profileCmd) Name() string     { return "profile" }
func (*profileCmd) Synopsis() string { return "show static fund information" }
func (*profileCmd) Usage() string {
	return `profile -code <ts_code>:
  Print fund type, managers, shares and dividends.
`
}

func (c *profileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.code, "code", "", "fund code, e.g. 510300.SH")
	f.BoolVar(&c.raw, "raw", false, "print plain markdown")
}

func (c *profileCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(c.code) == "" {
		fmt.Fprintln(os.Stderr, "profile: -code is required")
		return subcommands.ExitUsageError
	}
	uc, cleanup, err := analyzer(*c.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer cleanup()

	p, err := uc.Profile(ctx, c.code)
	if err != nil {
		fmt.Fprintf(os.Stderr, "profile %s: %v\n", c.code, err)
		return subcommands.ExitFailure
	}
	return emit(report.Profile(p), c.raw)
}

// analyzer loads configuration and wires the use case. Logs go to stderr so stdout carries only the report.
func analyzer(path string) (*usecase.AnalysisUseCase, func(), error) {
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, nil, fmt.Errorf("config load failed: %w", err)
	}
	cfg.Log.Output = "stderr"
	cfg.Log.Format = "console"
	uc, cleanup, err := di.InitializeAnalyzer(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init failed: %w", err)
	}
	return uc, cleanup, nil
}

func emit(md string, raw bool) subcommands.ExitStatus {
	if raw {
		fmt.Print(md)
		return subcommands.ExitSuccess
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(wrapWidth))
	if err != nil {
		fmt.Fprintf(os.Stderr, "renderer: %v\n", err)
		fmt.Print(md)
		return subcommands.ExitSuccess
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		fmt.Print(md)
		return subcommands.ExitSuccess
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}
