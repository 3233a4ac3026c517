package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cast"

	"github.com/meenmo/mocurve/cmd/curvecalc/internal/market"
	"github.com/meenmo/mocurve/config"
	"github.com/meenmo/mocurve/curve"
	"github.com/meenmo/mocurve/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("curvecalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	marketPath := fs.String("market", "", "YAML market file; - reads stdin")
	curveName := fs.String("curve", "", "Curve to evaluate; empty lists the loaded curves")
	timesFlag := fs.String("times", "", "Comma-separated times in years, e.g. 0.5,1,2")
	zero := fs.Bool("zero", false, "Also print continuously compounded zero rates (discount curves only)")
	configPath := fs.String("config", "", "YAML config file (optional)")
	logLevel := fs.String("log-level", "", "Override the configured log level")
	fs.Usage = func() { usage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if strings.TrimSpace(*marketPath) == "" {
		fmt.Fprintln(stderr, "curvecalc: -market is required")
		usage(stderr, fs)
		return 2
	}

	cfg := config.DefaultConfig
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(stderr, "curvecalc: %v\n", err)
			return 1
		}
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	config.SetConfig(cfg)
	logging.SetDefault(logging.New(cfg.Logging, stderr))

	repo, err := loadMarket(*marketPath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "curvecalc: %v\n", err)
		return 1
	}

	if *curveName == "" {
		for _, name := range repo.Names() {
			fmt.Fprintln(stdout, name)
		}
		return 0
	}

	times, err := parseTimes(*timesFlag)
	if err != nil {
		fmt.Fprintf(stderr, "curvecalc: %v\n", err)
		return 2
	}
	if err := printCurve(stdout, repo, *curveName, times, *zero); err != nil {
		fmt.Fprintf(stderr, "curvecalc: %v\n", err)
		return 1
	}
	return 0
}

func loadMarket(path string, stdin io.Reader) (*curve.Registry, error) {
	if path == "-" {
		return market.Load(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return market.Load(f)
}

func parseTimes(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("-times is required with -curve")
	}
	parts := strings.Split(s, ",")
	times := make([]float64, 0, len(parts))
	for _, p := range parts {
		t, err := cast.ToFloat64E(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid time %q", p)
		}
		times = append(times, t)
	}
	return times, nil
}

func printCurve(w io.Writer, repo *curve.Registry, name string, times []float64, zero bool) error {
	c, ok := repo.Curve(name)
	if !ok {
		return fmt.Errorf("%w: %q", curve.ErrUnresolvedCurve, name)
	}
	var dc curve.DiscountCurve
	if zero {
		if dc, ok = c.(curve.DiscountCurve); !ok {
			return fmt.Errorf("%w: %q is not a discount curve", curve.ErrInvalidArgument, name)
		}
	}

	values, err := curve.Values(repo, c, times)
	if err != nil {
		return err
	}
	if zero {
		fmt.Fprintf(w, "%-10s %-16s %s\n", "TIME", "VALUE", "ZERO")
	} else {
		fmt.Fprintf(w, "%-10s %s\n", "TIME", "VALUE")
	}
	for i, t := range times {
		if !zero {
			fmt.Fprintf(w, "%-10g %.10f\n", t, values[i])
			continue
		}
		z, err := curve.ZeroRate(repo, dc, t)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-10g %-16.10f %.10f\n", t, values[i], z)
	}
	return nil
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: curvecalc -market FILE [-curve NAME -times T1,T2,...] [-zero]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Builds the curves of a YAML market file and prints curve values.")
	fmt.Fprintln(w)
	fs.SetOutput(w)
	fs.PrintDefaults()
}
