// Command goboot inspects and serves applications assembled from modules.
//
//	goboot plan  [-modules a,b] [-env .env] [-json]
//	goboot serve [-modules a,b] [-env .env]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/km-arc/goboot/examples/audit"
	"github.com/km-arc/goboot/examples/greeter"
	"github.com/km-arc/goboot/framework/app"
	"github.com/km-arc/goboot/framework/boot"
	"github.com/km-arc/goboot/framework/config"
	"github.com/km-arc/goboot/framework/logging"
	"github.com/km-arc/goboot/framework/module"
	"github.com/km-arc/goboot/framework/providers"
)

var errUsage = errors.New("usage: goboot <plan|serve|modules> [flags]")

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type flags struct {
	modules []string
	envFile string
	json    bool
}

func parseFlags(name string, args []string, out io.Writer) (flags, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	modules := fs.String("modules", greeter.Name, "comma-separated module names")
	envFile := fs.String("env", ".env", "dotenv file loaded before configuration")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	f := flags{envFile: *envFile, json: *asJSON}
	for _, m := range strings.Split(*modules, ",") {
		if m = strings.TrimSpace(m); m != "" {
			f.modules = append(f.modules, m)
		}
	}
	return f, nil
}

func run(ctx context.Context, out io.Writer, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "plan":
		f, err := parseFlags("plan", args[1:], out)
		if err != nil {
			return err
		}
		return plan(out, f)
	case "serve":
		f, err := parseFlags("serve", args[1:], out)
		if err != nil {
			return err
		}
		return serve(ctx, f)
	case "modules":
		for _, n := range module.Default.Names() {
			fmt.Fprintln(out, n)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}

type planOutput struct {
	Modules     []string `json:"modules"`
	Scanners    int      `json:"scanners"`
	AutoPlugins bool     `json:"auto_plugins"`
	Failed      []string `json:"failed_plugins"`
}

func plan(out io.Writer, f flags) error {
	cfg, err := config.Load(f.envFile)
	if err != nil {
		return err
	}
	b := boot.Booter{Logger: logging.FromConfig(cfg.Log, os.Stderr)}
	mods := append([]string{providers.ConfigModule, providers.HTTPModule}, f.modules...)
	p, err := b.Resolve(mods)
	if err != nil {
		return err
	}

	po := planOutput{
		Modules:     module.Names(p.Modules),
		Scanners:    len(p.Scanners),
		AutoPlugins: p.AutoPlugins,
		Failed:      []string{},
	}
	for _, fl := range p.Failed {
		po.Failed = append(po.Failed, fmt.Sprintf("%s (%s): %v", fl.Entry.Name, fl.Entry.Module, fl.Err))
	}

	if f.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(po)
	}
	fmt.Fprintf(out, "auto plugins: %t\n", po.AutoPlugins)
	fmt.Fprintln(out, "modules:")
	for _, m := range po.Modules {
		fmt.Fprintf(out, "  %s\n", m)
	}
	fmt.Fprintf(out, "scanners: %d\n", po.Scanners)
	for _, fl := range po.Failed {
		fmt.Fprintf(out, "failed: %s\n", fl)
	}
	return nil
}

func serve(ctx context.Context, f flags) error {
	a, err := app.New(f.modules, app.WithEnvFiles(f.envFile))
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
